package repository

import (
	"github.com/deppfellow/go-productivity/internal/server"
)

type Repositories struct {
	User         *UserRepository
	Note         *NoteRepository
	Flow         *FlowRepository
	Task         *TaskRepository
	Notification *NotificationRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		User:         NewUserRepository(s),
		Note:         NewNoteRepository(s),
		Flow:         NewFlowRepository(s),
		Task:         NewTaskRepository(s),
		Notification: NewNotificationRepository(s),
	}
}
