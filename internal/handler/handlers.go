package handler

import (
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
	Note         *NoteHandler
	Flow         *FlowHandler
	Task         *TaskHandler
	Notification *NotificationHandler
	Proxy        *ProxyHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
		Note:         NewNoteHandler(s, services.Note),
		Flow:         NewFlowHandler(s, services.Flow),
		Task:         NewTaskHandler(s, services.Task),
		Notification: NewNotificationHandler(s, services.Notification),
		Proxy:        NewProxyHandler(s, services.Proxy),
	}
}
