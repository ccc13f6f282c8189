package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"efurniture.db"`

	Momo    Momo    `envPrefix:"MOMO_"`
	ZaloPay ZaloPay `envPrefix:"ZALOPAY_"`
	SMTP    SMTP    `envPrefix:"SMTP_"`
	JWT     JWT     `envPrefix:"JWT_"`
}

type Momo struct {
	Endpoint    string `env:"ENDPOINT" envDefault:"https://test-payment.momo.vn"`
	PartnerCode string `env:"PARTNER_CODE"`
	AccessKey   string `env:"ACCESS_KEY"`
	SecretKey   string `env:"SECRET_KEY"`
	RedirectURL string `env:"REDIRECT_URL"`
}

type ZaloPay struct {
	Endpoint string `env:"ENDPOINT" envDefault:"https://sb-openapi.zalopay.vn"`
	AppID    string `env:"APP_ID"`
	Key1     string `env:"KEY1"`
	Key2     string `env:"KEY2"`
}

type SMTP struct {
	Host      string `env:"HOST"`
	Port      int    `env:"PORT" envDefault:"465"`
	Username  string `env:"USERNAME"`
	Password  string `env:"PASSWORD"`
	FromEmail string `env:"FROM_EMAIL"`
	FromName  string `env:"FROM_NAME" envDefault:"eFurniture"`
}

type JWT struct {
	AccessSecret string `env:"ACCESS_SECRET" envDefault:"accessSecret"`
	// Access token lifetime in seconds.
	AccessExpiration int `env:"ACCESS_EXPIRATION" envDefault:"864000"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
