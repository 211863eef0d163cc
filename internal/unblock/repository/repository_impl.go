package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesops/internal/unblock/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *domain.Request) error {
	return db.WithContext(ctx).Create(request).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Request, error) {
	var requests []domain.Request
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, nil
	}
	return &requests[0], nil
}

func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.RequestStatus, update domain.TransitionUpdate) (int64, error) {
	values := map[string]any{
		"status":           update.Status,
		"decision_comment": update.Comment,
		"updated_at":       update.At,
	}
	if update.ByColumn != "" {
		values[update.ByColumn] = update.By
	}
	if update.AtColumn != "" {
		values[update.AtColumn] = update.At
	}

	result := db.WithContext(ctx).
		Model(&domain.Request{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(values)
	return result.RowsAffected, result.Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequestsRequest, cursor *domain.ListCursor, limit int) ([]*domain.Request, error) {
	stmt := db.WithContext(ctx).Model(&domain.Request{})
	if req.CustomerSeq > 0 {
		stmt = stmt.Where("customer_seq = ?", req.CustomerSeq)
	}
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}
	if cursor != nil {
		// Tie-break on id so rows sharing a requested_at are never skipped
		// across pages.
		stmt = stmt.Where("requested_at < ? OR (requested_at = ? AND id < ?)",
			cursor.Before, cursor.Before, cursor.BeforeID)
	}

	var requests []*domain.Request
	err := stmt.
		Order("requested_at desc, id desc").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
