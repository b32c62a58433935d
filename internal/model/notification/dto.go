package notification

import (
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/validation"
)

// ------------------------------------------------------------

type ListNotificationsQuery struct {
	model.Pagination
	Read *bool `json:"read"`
}

var listNotificationsShape = validation.NewShape("ListNotifications",
	append([]validation.Rule{
		{Field: "read", Tag: "omitempty,boolean", Message: "read must be true or false"},
	}, model.PaginationRules...)...,
)

func (ListNotificationsQuery) Shape() *validation.Shape { return listNotificationsShape }

// ------------------------------------------------------------

type MarkReadParams struct {
	ID int64 `json:"id"`
}

var notificationIDShape = validation.NewShape("NotificationID", model.IDRule("notification"))

func (MarkReadParams) Shape() *validation.Shape { return notificationIDShape }

// ------------------------------------------------------------

// CreatePayload is what a notification job carries.
type CreatePayload struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
