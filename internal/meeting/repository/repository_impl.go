package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesops/internal/meeting/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertMeeting(ctx context.Context, db *gorm.DB, meeting *domain.Meeting) error {
	return db.WithContext(ctx).Create(meeting).Error
}

func (r *repo) FindMeeting(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Meeting, error) {
	var meetings []domain.Meeting
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, nil
	}
	return &meetings[0], nil
}

func (r *repo) UpdateMeetingStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.MeetingStatus, updatedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Meeting{}).
		Where("id = ? AND meeting_status = ?", id, from).
		Updates(map[string]any{
			"meeting_status": to,
			"updated_at":     updatedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) ListMeetings(ctx context.Context, db *gorm.DB, req domain.ListMeetingsRequest) ([]*domain.Meeting, error) {
	stmt := db.WithContext(ctx).Model(&domain.Meeting{})
	if req.Status != "" {
		stmt = stmt.Where("meeting_status = ?", req.Status)
	}
	if req.FromDate != nil {
		stmt = stmt.Where("meeting_date >= ?", *req.FromDate)
	}
	if req.ToDate != nil {
		stmt = stmt.Where("meeting_date <= ?", *req.ToDate)
	}

	var meetings []*domain.Meeting
	err := stmt.
		Order("meeting_date desc, id desc").
		Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

type countRow struct {
	MeetingID snowflake.ID `gorm:"column:meeting_id"`
	RiskLevel string       `gorm:"column:risk_level"`
	Total     int64        `gorm:"column:total"`
}

func (r *repo) CountsByMeeting(ctx context.Context, db *gorm.DB, meetingIDs []snowflake.ID) (map[snowflake.ID]domain.RiskCounts, error) {
	counts := make(map[snowflake.ID]domain.RiskCounts, len(meetingIDs))
	if len(meetingIDs) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := db.WithContext(ctx).Raw(
		`SELECT meeting_id, risk_level, COUNT(*) AS total
		 FROM credit_meeting_customers
		 WHERE meeting_id IN ?
		 GROUP BY meeting_id, risk_level`,
		meetingIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		c := counts[row.MeetingID]
		c.Customers += row.Total
		switch row.RiskLevel {
		case "high":
			c.High += row.Total
		case "medium":
			c.Medium += row.Total
		case "low":
			c.Low += row.Total
		}
		counts[row.MeetingID] = c
	}
	return counts, nil
}

func (r *repo) InsertCustomer(ctx context.Context, db *gorm.DB, customer *domain.MeetingCustomer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MeetingCustomer, error) {
	var customers []domain.MeetingCustomer
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return &customers[0], nil
}

func (r *repo) DeleteCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.MeetingCustomer{})
	return result.RowsAffected, result.Error
}

func (r *repo) UpdateCustomerOpinion(ctx context.Context, db *gorm.DB, id snowflake.ID, opinion string, updatedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.MeetingCustomer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sales_opinion": opinion,
			"updated_at":    updatedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) ListCustomers(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) ([]*domain.MeetingCustomer, error) {
	var customers []*domain.MeetingCustomer
	err := db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("overdue_ar desc, customer_seq asc").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) MemberSeqs(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) (map[int64]struct{}, error) {
	var seqs []int64
	err := db.WithContext(ctx).
		Model(&domain.MeetingCustomer{}).
		Where("meeting_id = ?", meetingID).
		Pluck("customer_seq", &seqs).Error
	if err != nil {
		return nil, err
	}

	members := make(map[int64]struct{}, len(seqs))
	for _, seq := range seqs {
		members[seq] = struct{}{}
	}
	return members, nil
}
