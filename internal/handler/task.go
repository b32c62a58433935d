package handler

import (
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/task"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/service"
	"github.com/labstack/echo/v4"
)

type TaskHandler struct {
	Handler
	tasks *service.TaskService
}

func NewTaskHandler(s *server.Server, tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{
		Handler: NewHandler(s),
		tasks:   tasks,
	}
}

func (h *TaskHandler) Create(c echo.Context, payload *task.CreateTaskPayload) (*task.PopulatedTask, error) {
	return h.tasks.Create(c.Request().Context(), middleware.GetUserID(c), payload)
}

func (h *TaskHandler) Update(c echo.Context, payload *task.UpdateTaskPayload) (*task.Task, error) {
	return h.tasks.Update(c.Request().Context(), middleware.GetUserID(c), payload)
}

func (h *TaskHandler) Delete(c echo.Context, params *task.DeleteTaskParams) (*model.AffectedResult, error) {
	return h.tasks.Delete(c.Request().Context(), middleware.GetUserID(c), params.ID)
}
