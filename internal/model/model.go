// Package model holds the entities stored in PostgreSQL and the request
// payloads the handlers accept. Each domain lives in its own subpackage.
package model

import (
	"time"

	"github.com/deppfellow/go-productivity/internal/validation"
)

type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PaginatedResponse is the {list, total} page returned by list endpoints.
type PaginatedResponse[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Pagination is the page/size query shared by list endpoints.
type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Normalize fills unset values with the defaults.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Size < 1 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

// PaginationRules validate page and size as they arrive in a query string.
var PaginationRules = []validation.Rule{
	{Field: "page", Tag: "omitempty,num_min=1", Message: "page must be a positive number"},
	{Field: "size", Tag: "omitempty,num_min=1,num_max=100", Message: "size must be between 1 and 100"},
}

// IDParams carries a numeric :id path parameter.
type IDParams struct {
	ID int64 `json:"id"`
}

// IDRule validates a numeric :id path parameter.
func IDRule(entity string) validation.Rule {
	return validation.Rule{
		Field:   "id",
		Tag:     "required,num_min=1",
		Message: entity + " id must be a positive number",
	}
}

// SortRule validates a sort position. The column is a PostgreSQL INTEGER,
// so values outside int32 are rejected here rather than by the database.
var SortRule = validation.Rule{
	Field:   "sort",
	Tag:     "omitempty,numeric,num_min=-2147483648,num_max=2147483647",
	Message: "sort must be a number between -2147483648 and 2147483647",
}

// AffectedResult reports how many rows a delete or bulk update touched.
type AffectedResult struct {
	Affected int64 `json:"affected"`
}

// Empty is the payload of routes that take no input.
type Empty struct{}

func (Empty) Shape() *validation.Shape { return nil }
