package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	agingdomain "github.com/smallbiznis/salesops/internal/aging/domain"
	"gorm.io/gorm"
)

type CreateMeetingRequest struct {
	Name        string
	MeetingDate time.Time
	Note        string
	Actor       string
}

type AddCustomerRequest struct {
	MeetingID   snowflake.ID
	CustomerSeq int64
	Opinion     string
	Actor       string
}

type ListMeetingsRequest struct {
	Status   MeetingStatus
	FromDate *time.Time
	ToDate   *time.Time
}

type AutoAddRequest struct {
	MeetingID snowflake.ID
	RiskLevel agingdomain.RiskLevel
	Actor     string
}

// AutoAddFailure records one customer the batch could not add; the batch
// itself keeps going.
type AutoAddFailure struct {
	CustomerSeq int64  `json:"customer_seq"`
	Reason      string `json:"reason"`
}

type AutoAddResult struct {
	SnapshotDate time.Time        `json:"snapshot_date"`
	Added        []int64          `json:"added"`
	Skipped      int              `json:"skipped"`
	Failures     []AutoAddFailure `json:"failures,omitempty"`
}

type Service interface {
	CreateMeeting(ctx context.Context, req CreateMeetingRequest) (Meeting, error)
	SetStatus(ctx context.Context, meetingID snowflake.ID, status MeetingStatus, actor string) (Meeting, error)
	AddCustomer(ctx context.Context, req AddCustomerRequest) (MeetingCustomer, error)
	RemoveCustomer(ctx context.Context, meetingCustomerID snowflake.ID, actor string) error
	UpdateCustomerOpinion(ctx context.Context, meetingCustomerID snowflake.ID, opinion, actor string) (MeetingCustomer, error)
	// AutoAddByRisk scans every snapshot at the globally latest snapshot
	// date, classifies it, and adds the customers matching the requested
	// tier that are not already members. Best-effort: one customer's
	// failure does not stop the rest.
	AutoAddByRisk(ctx context.Context, req AutoAddRequest) (AutoAddResult, error)
	ListMeetings(ctx context.Context, req ListMeetingsRequest) ([]*MeetingWithCounts, error)
	GetMeetingDetail(ctx context.Context, meetingID snowflake.ID) (MeetingDetail, error)
}

type Repository interface {
	InsertMeeting(ctx context.Context, db *gorm.DB, meeting *Meeting) error
	FindMeeting(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Meeting, error)
	UpdateMeetingStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to MeetingStatus, updatedAt time.Time) (int64, error)
	ListMeetings(ctx context.Context, db *gorm.DB, req ListMeetingsRequest) ([]*Meeting, error)
	CountsByMeeting(ctx context.Context, db *gorm.DB, meetingIDs []snowflake.ID) (map[snowflake.ID]RiskCounts, error)

	InsertCustomer(ctx context.Context, db *gorm.DB, customer *MeetingCustomer) error
	FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MeetingCustomer, error)
	DeleteCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	UpdateCustomerOpinion(ctx context.Context, db *gorm.DB, id snowflake.ID, opinion string, updatedAt time.Time) (int64, error)
	ListCustomers(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) ([]*MeetingCustomer, error)
	MemberSeqs(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) (map[int64]struct{}, error)
}

var (
	ErrInvalidName      = errors.New("invalid_meeting_name")
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrInvalidRiskLevel = errors.New("invalid_risk_level")
	ErrInvalidStatus    = errors.New("invalid_meeting_status")
	ErrMeetingNotFound  = errors.New("meeting_not_found")
	ErrCustomerNotFound = errors.New("meeting_customer_not_found")
	ErrAlreadyInMeeting = errors.New("customer_already_in_meeting")
	// ErrNoARData wraps the aging sentinel so callers can match either the
	// meeting-level error or the underlying missing-snapshot condition.
	ErrNoARData         = fmt.Errorf("no_ar_data_for_customer: %w", agingdomain.ErrNoSnapshot)
	ErrStatusTransition = errors.New("invalid_status_transition")
	ErrNoSnapshotDate   = errors.New("no_snapshot_date_available")
)
