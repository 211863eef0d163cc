package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesops/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateRequestRequest struct {
	CustomerSeq            int64
	Reason                 string
	ExpectedCollectionDate time.Time
	ExpectedAmount         decimal.Decimal
	CollectionPlan         string
	RequestedBy            string
}

type DecisionRequest struct {
	RequestID  snowflake.ID
	ApproverID string
	Comment    string
}

type ListRequestsRequest struct {
	pagination.Pagination
	CustomerSeq int64
	Status      RequestStatus
}

type ListRequestsResponse struct {
	pagination.PageInfo
	Requests []Request `json:"requests"`
}

type Service interface {
	CreateRequest(ctx context.Context, req CreateRequestRequest) (Request, error)
	// ApproveStage1 is valid only from REQUESTED.
	ApproveStage1(ctx context.Context, req DecisionRequest) (Request, error)
	// ApproveFinal is valid only from APPROVED_1.
	ApproveFinal(ctx context.Context, req DecisionRequest) (Request, error)
	// Reject is valid from REQUESTED or APPROVED_1 and is terminal.
	Reject(ctx context.Context, req DecisionRequest) (Request, error)
	ListRequests(ctx context.Context, req ListRequestsRequest) (ListRequestsResponse, error)
}

// ListCursor marks where the previous page ended. The ID breaks ties
// between requests sharing a requested_at.
type ListCursor struct {
	Before   time.Time
	BeforeID snowflake.ID
}

// TransitionUpdate carries the columns a guarded status transition sets.
type TransitionUpdate struct {
	Status   RequestStatus
	By       string
	At       time.Time
	Comment  string
	ByColumn string
	AtColumn string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *Request) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Request, error)
	// TransitionStatus performs the optimistic status-guarded update and
	// reports rows affected; zero rows means the pre-state did not hold.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []RequestStatus, update TransitionUpdate) (int64, error)
	List(ctx context.Context, db *gorm.DB, req ListRequestsRequest, cursor *ListCursor, limit int) ([]*Request, error)
}

var (
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidReason    = errors.New("invalid_reason")
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrRequestNotFound  = errors.New("unblock_request_not_found")
	// ErrStatusConflict is the optimistic-guard failure: the request is no
	// longer in the state the transition requires.
	ErrStatusConflict = errors.New("unblock_status_conflict")
)
