package domain

import (
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RequestStatus string

// The request only moves forward: REQUESTED -> APPROVED_1 -> APPROVED_FINAL,
// or out to REJECTED from either non-terminal state. There is no reopen; a
// rejected or completed petition is re-entered by filing a new request.
const (
	StatusRequested     RequestStatus = "REQUESTED"
	StatusApproved1     RequestStatus = "APPROVED_1"
	StatusApprovedFinal RequestStatus = "APPROVED_FINAL"
	StatusRejected      RequestStatus = "REJECTED"
)

// Request is a formal petition to lift a credit hold on a customer,
// subject to two-stage approval.
type Request struct {
	ID                     snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerSeq            int64           `gorm:"column:customer_seq;not null;index" json:"customer_seq"`
	Reason                 string          `gorm:"column:request_reason;not null" json:"reason"`
	ExpectedCollectionDate time.Time       `gorm:"column:expected_collection_date" json:"expected_collection_date"`
	ExpectedAmount         decimal.Decimal `gorm:"column:expected_amount;type:decimal(20,4);not null" json:"expected_amount"`
	CollectionPlan         string          `gorm:"column:collection_plan" json:"collection_plan"`
	Status                 RequestStatus   `gorm:"column:status;not null;index" json:"status"`
	RequestedBy            string          `gorm:"column:requested_by;not null" json:"requested_by"`
	RequestedAt            time.Time       `gorm:"column:requested_at;not null" json:"requested_at"`
	ApprovedBy1            sql.NullString  `gorm:"column:approved_by_1" json:"approved_by_1,omitempty"`
	ApprovedAt1            sql.NullTime    `gorm:"column:approved_at_1" json:"approved_at_1,omitempty"`
	ApprovedByFinal        sql.NullString  `gorm:"column:approved_by_final" json:"approved_by_final,omitempty"`
	ApprovedAtFinal        sql.NullTime    `gorm:"column:approved_at_final" json:"approved_at_final,omitempty"`
	RejectedBy             sql.NullString  `gorm:"column:rejected_by" json:"rejected_by,omitempty"`
	RejectedAt             sql.NullTime    `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	DecisionComment        string          `gorm:"column:decision_comment" json:"decision_comment,omitempty"`
	CreatedAt              time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Request) TableName() string {
	return "credit_unblock_requests"
}
