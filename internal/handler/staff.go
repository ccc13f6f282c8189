package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/service"
	"github.com/labstack/echo/v4"
)

type StaffHandler struct {
	staffService service.StaffService
	taskService  service.TaskService
}

func NewStaffHandler(staffService service.StaffService, taskService service.TaskService) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
		taskService:  taskService,
	}
}

func (h *StaffHandler) CreateStaff(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateStaffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	id, err := h.staffService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

func (h *StaffHandler) ListStaff(c echo.Context) error {
	ctx := c.Request().Context()

	var roles []model.UserRole
	if raw := c.QueryParam("roles"); raw != "" {
		for _, r := range strings.Split(raw, ",") {
			roles = append(roles, model.UserRole(r))
		}
	}

	staff, err := h.staffService.List(ctx, roles)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) ListMyTasks(c echo.Context) error {
	ctx := c.Request().Context()

	tasks, err := h.taskService.ListForAssignee(ctx, actorFrom(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tasks)
}

func (h *StaffHandler) StartTask(c echo.Context) error {
	ctx := c.Request().Context()

	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	if err := h.taskService.Start(ctx, uint(taskID)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *StaffHandler) CompleteTask(c echo.Context) error {
	ctx := c.Request().Context()

	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	if err := h.taskService.Complete(ctx, uint(taskID)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
