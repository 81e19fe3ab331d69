// Package paging normalizes list requests and wraps list results in the page envelope
// shared by every listing endpoint.
package paging

import (
	"fmt"
	"strings"

	"agora/internal/models"
)

const (
	DefaultSize = 20
	MaxSize     = 100
	DefaultSort = "createdAt"

	Asc  = "asc"
	Desc = "desc"
)

// PageRequest describes a zero-based page of a sorted listing.
type PageRequest struct {
	Page      int    `query:"page" json:"page"`
	Size      int    `query:"size" json:"size"`
	Sort      string `query:"sort" json:"sort"`
	Direction string `query:"direction" json:"direction"`
}

// DefaultRequest is the request used when a caller supplies nothing.
func DefaultRequest() PageRequest {
	return PageRequest{Page: 0, Size: DefaultSize, Sort: DefaultSort, Direction: Desc}
}

// Normalize fills blank fields with defaults and folds direction to lower case.
// A blank direction means descending; otherwise only "desc" descends and any other
// value sorts ascending.
func (p PageRequest) Normalize() PageRequest {
	if p.Size == 0 {
		p.Size = DefaultSize
	}
	p.Sort = strings.TrimSpace(p.Sort)
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	switch dir := strings.TrimSpace(p.Direction); {
	case dir == "", strings.EqualFold(dir, Desc):
		p.Direction = Desc
	default:
		p.Direction = Asc
	}
	return p
}

// Validate rejects negative pages and sizes outside [1, MaxSize].
func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return models.NewValidationError("page must be zero or greater")
	}
	if p.Size < 1 || p.Size > MaxSize {
		return models.NewValidationError(fmt.Sprintf("size must be between 1 and %d", MaxSize))
	}
	return nil
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

func (p PageRequest) Descending() bool {
	return p.Direction != Asc
}

// OrderBy maps the requested sort field onto a column through allowed. Fields that are
// not in allowed are dropped and fallback is returned instead.
func (p PageRequest) OrderBy(allowed map[string]string, fallback string) string {
	column, ok := allowed[p.Sort]
	if !ok {
		return fallback
	}
	if p.Descending() {
		return column + " DESC"
	}
	return column + " ASC"
}

// Page is the list envelope. Every listing returns exactly these fields.
type Page[T any] struct {
	Content       []T    `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	First         bool   `json:"first"`
	Last          bool   `json:"last"`
	HasNext       bool   `json:"hasNext"`
	HasPrevious   bool   `json:"hasPrevious"`
	Sort          string `json:"sort"`
	Direction     string `json:"direction"`
}

// NewPage builds the envelope for one page of content out of total matching rows.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	hasNext := req.Page+1 < totalPages
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          !hasNext,
		HasNext:       hasNext,
		HasPrevious:   req.Page > 0,
		Sort:          req.Sort,
		Direction:     req.Direction,
	}
}

// Map converts the content of a page and keeps its metadata.
func Map[S, T any](p Page[S], fn func(S) T) Page[T] {
	out := make([]T, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return Page[T]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
		HasNext:       p.HasNext,
		HasPrevious:   p.HasPrevious,
		Sort:          p.Sort,
		Direction:     p.Direction,
	}
}
