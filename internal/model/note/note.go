package note

import (
	"github.com/deppfellow/go-productivity/internal/model"
)

type Note struct {
	model.Base
	OwnerID  string `json:"owner_id" db:"owner_id"`
	TaskID   *int64 `json:"task_id" db:"task_id"`
	Title    string `json:"title" db:"title"`
	Cover    string `json:"cover" db:"cover"`
	Overview string `json:"overview" db:"overview"`
	Content  string `json:"content" db:"content"`
}

// PopulatedNote is a note joined with its owner's public profile.
type PopulatedNote struct {
	Note
	OwnerNickname string `json:"owner_nickname" db:"owner_nickname"`
	OwnerAvatar   string `json:"owner_avatar" db:"owner_avatar"`
}
