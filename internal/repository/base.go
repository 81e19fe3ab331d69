// Package repository implements the data access layer on top of gorm.
package repository

import (
	"errors"
	"strings"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/paging"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	tableUsers    = "users"
	tableBoards   = "boards"
	tableComments = "comments"
)

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// translateError maps storage errors onto the error catalogue. A missing row becomes the
// not-found error of resource; unique violations become DB-400-DUPLICATE and any other
// constraint violation DB-409-INTEGRITY.
func translateError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrDuplicateValue.Wrap(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return models.ErrDataIntegrity.Wrap(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return models.ErrDuplicateValue.Wrap(err)
		}
		// class 23: integrity constraint violation
		if strings.HasPrefix(pgErr.Code, "23") {
			return models.ErrDataIntegrity.Wrap(err)
		}
	}
	return models.NewInternalError(err)
}

// likePattern builds a lower-cased "contains" pattern for LOWER(column) LIKE ?.
func likePattern(keyword string) string {
	return "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
}

// pageQuery describes one paged listing: a filter shared by the count and the page
// fetch, plus the ordering and associations of the page fetch only.
type pageQuery struct {
	scope   func(*gorm.DB) *gorm.DB
	order   []string
	preload []string
}

// findPage runs a count and a page fetch from two fresh sessions of db.
func findPage[T any](db *gorm.DB, q pageQuery, req paging.PageRequest) ([]*T, int64, error) {
	var total int64
	if err := db.Model(new(T)).Scopes(q.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := db.Model(new(T)).Scopes(q.scope)
	for _, assoc := range q.preload {
		fetch = fetch.Preload(assoc)
	}
	for _, order := range q.order {
		fetch = fetch.Order(order)
	}
	items := []*T{}
	if err := fetch.Offset(req.Offset()).Limit(req.Size).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
