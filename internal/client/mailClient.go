package client

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/Deco-Team/efurniture-server/internal/config"
)

// Mailer sends templated notification emails. Sends are best-effort from the
// workflow's point of view; callers decide whether a failure is fatal.
type Mailer interface {
	SendTemplatedEmail(to, subject, templateName string, data any) error
}

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "order_confirmation"}}
<h2>Thank you for your purchase</h2>
<p>Order <b>{{.OrderID}}</b> has been paid successfully.</p>
<table>
{{range .Items}}<tr><td>{{.ProductName}} ({{.SKU}})</td><td>x{{.Quantity}}</td><td>{{.UnitPrice}}</td></tr>
{{end}}</table>
<p>Total: <b>{{.TotalAmount}}</b></p>
{{end}}

{{define "order_cancellation"}}
<h2>Your order has been canceled</h2>
<p>Order <b>{{.OrderID}}</b> was canceled. Reason: {{.Reason}}</p>
<table>
{{range .Items}}<tr><td>{{.ProductName}} ({{.SKU}})</td><td>x{{.Quantity}}</td><td>{{.UnitPrice}}</td></tr>
{{end}}</table>
<p>Refund amount: <b>{{.TotalAmount}}</b></p>
{{end}}

{{define "staff_invite"}}
<h2>Welcome to eFurniture</h2>
<p>An account has been created for {{.Email}} with role {{.Role}}.</p>
{{end}}
`))

type smtpMailerImpl struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	fromName  string
}

func NewSMTPMailer(smtpCfg *config.SMTP) Mailer {
	return &smtpMailerImpl{
		host:      smtpCfg.Host,
		port:      smtpCfg.Port,
		username:  smtpCfg.Username,
		password:  smtpCfg.Password,
		fromEmail: smtpCfg.FromEmail,
		fromName:  smtpCfg.FromName,
	}
}

func (m *smtpMailerImpl) SendTemplatedEmail(to, subject, templateName string, data any) error {
	var body bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("render mail template %s: %w", templateName, err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.fromName, m.fromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	// Port 465 is implicit TLS; everything else goes through STARTTLS.
	if m.port == 465 {
		return m.sendTLS(addr, auth, to, msg.Bytes())
	}
	if err := smtp.SendMail(addr, auth, m.fromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *smtpMailerImpl) sendTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("smtp tls dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("smtp new client: %w", err)
	}
	defer c.Close()

	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.fromEmail); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
