package notification

import "time"

// Detail is the shared body of a notification.
type Detail struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Avatar    string    `json:"avatar" db:"avatar"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Notification is one user's copy of a Detail.
type Notification struct {
	ID       int64     `json:"id" db:"id"`
	UserID   string    `json:"user_id" db:"user_id"`
	DetailID int64     `json:"detail_id" db:"detail_id"`
	Read     bool      `json:"read" db:"read"`
	SendDate time.Time `json:"send_date" db:"send_date"`
}

type PopulatedNotification struct {
	Notification
	Title   string `json:"title" db:"title"`
	Avatar  string `json:"avatar" db:"avatar"`
	Content string `json:"content" db:"content"`
}

type UnreadCount struct {
	Count int64 `json:"count"`
}
