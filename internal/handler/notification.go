package handler

import (
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/notification"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/service"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	Handler
	notifications *service.NotificationService
}

func NewNotificationHandler(s *server.Server, notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		Handler:       NewHandler(s),
		notifications: notifications,
	}
}

func (h *NotificationHandler) List(c echo.Context, query *notification.ListNotificationsQuery) (*model.PaginatedResponse[notification.PopulatedNotification], error) {
	return h.notifications.List(c.Request().Context(), middleware.GetUserID(c), query)
}

func (h *NotificationHandler) UnreadCount(c echo.Context, _ *model.Empty) (*notification.UnreadCount, error) {
	return h.notifications.UnreadCount(c.Request().Context(), middleware.GetUserID(c))
}

// MarkRead answers with an empty data field.
func (h *NotificationHandler) MarkRead(c echo.Context, params *notification.MarkReadParams) (any, error) {
	return nil, h.notifications.MarkRead(c.Request().Context(), middleware.GetUserID(c), params.ID)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context, _ *model.Empty) (*model.AffectedResult, error) {
	return h.notifications.MarkAllRead(c.Request().Context(), middleware.GetUserID(c))
}
