package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcome            = "email:welcome"
	TaskNotificationCreate = "notification:create"
)

type WelcomeEmailPayload struct {
	To       string `json:"to"`
	Nickname string `json:"nickname"`
}

func NewWelcomeEmailTask(to, nickname string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{To: to, Nickname: nickname})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskWelcome, payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}

// NotificationPayload asks a worker to store a notification for UserID.
type NotificationPayload struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func NewNotificationTask(p NotificationPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskNotificationCreate, payload,
		asynq.MaxRetry(5),
		asynq.Queue(QueueCritical),
		asynq.Timeout(10*time.Second),
	), nil
}

// DecodePayload unmarshals a task payload, marking malformed payloads so
// asynq does not retry them.
func DecodePayload[T any](t *asynq.Task) (T, error) {
	var p T
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("malformed %s payload: %w", t.Type(), errors.Join(err, asynq.SkipRetry))
	}
	return p, nil
}
