package service

import (
	"github.com/deppfellow/go-productivity/internal/lib/email"
	"github.com/deppfellow/go-productivity/internal/lib/job"
	"github.com/deppfellow/go-productivity/internal/lib/upstream"
	loggerPkg "github.com/deppfellow/go-productivity/internal/logger"
	"github.com/deppfellow/go-productivity/internal/repository"
	"github.com/deppfellow/go-productivity/internal/server"
)

type Services struct {
	Auth         *AuthService
	Job          *job.JobService
	User         *UserService
	Note         *NoteService
	Flow         *FlowService
	Task         *TaskService
	Notification *NotificationService
	Proxy        *ProxyService
}

// NewServices builds the services and registers their job handlers. It must
// run before s.Job is started.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	s.Job.RegisterEmailHandlers(email.NewClient(s.Config, loggerPkg.ForModule(s.Logger, "Email")))

	users := NewUserService(repos.User, s.Job, ClerkProfile, loggerPkg.ForModule(s.Logger, "UserService"))
	notifications := NewNotificationService(repos.Notification, repos.User, s.Job, loggerPkg.ForModule(s.Logger, "NotificationService"))

	return &Services{
		Job:          s.Job,
		Auth:         NewAuthService(s, users),
		User:         users,
		Note:         NewNoteService(repos.Note, repos.User, notifications, loggerPkg.ForModule(s.Logger, "NoteService")),
		Flow:         NewFlowService(repos.Flow, repos.Task, repos.Note, notifications, loggerPkg.ForModule(s.Logger, "FlowService")),
		Task:         NewTaskService(repos.Task, loggerPkg.ForModule(s.Logger, "TaskService")),
		Notification: notifications,
		Proxy:        NewProxyService(upstream.NewClient(s.Config.Integration), s.Redis, loggerPkg.ForModule(s.Logger, "ProxyService")),
	}, nil
}
