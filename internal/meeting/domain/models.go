package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agingdomain "github.com/smallbiznis/salesops/internal/aging/domain"
)

type MeetingStatus string

const (
	// StatusPlanned is the canonical initial state. The workflow only moves
	// forward: PLANNED -> IN_PROGRESS -> CLOSED.
	StatusPlanned    MeetingStatus = "PLANNED"
	StatusInProgress MeetingStatus = "IN_PROGRESS"
	StatusClosed     MeetingStatus = "CLOSED"
)

// DecisionCode classifies a customer inside a credit meeting.
type DecisionCode string

const (
	DecisionWatch         DecisionCode = "WATCH"
	DecisionReviewUnblock DecisionCode = "REVIEW_UNBLOCK"
	DecisionKeepBlock     DecisionCode = "KEEP_BLOCK"
)

// DecisionForRisk maps the risk tier determined at add-time onto the
// initial decision code used by auto-population.
func DecisionForRisk(level agingdomain.RiskLevel) DecisionCode {
	switch level {
	case agingdomain.RiskHigh:
		return DecisionKeepBlock
	case agingdomain.RiskMedium:
		return DecisionReviewUnblock
	default:
		return DecisionWatch
	}
}

type Meeting struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"column:meeting_name;not null" json:"name"`
	MeetingDate time.Time     `gorm:"column:meeting_date;not null" json:"meeting_date"`
	Status      MeetingStatus `gorm:"column:meeting_status;not null" json:"status"`
	Note        string        `gorm:"column:note" json:"note,omitempty"`
	CreatedBy   string        `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Meeting) TableName() string {
	return "credit_meetings"
}

// MeetingCustomer pins the customer's risk basis at the moment of addition.
// The snapshot reference and the derived amounts are frozen; later snapshot
// loads do not reclassify meeting members.
type MeetingCustomer struct {
	ID           snowflake.ID         `gorm:"primaryKey" json:"id"`
	MeetingID    snowflake.ID         `gorm:"column:meeting_id;not null;uniqueIndex:ux_meeting_customer" json:"meeting_id"`
	CustomerSeq  int64                `gorm:"column:customer_seq;not null;uniqueIndex:ux_meeting_customer" json:"customer_seq"`
	CustomerName string               `gorm:"column:customer_name" json:"customer_name"`
	SnapshotID   snowflake.ID         `gorm:"column:ar_aging_id;not null" json:"ar_aging_id"`
	SnapshotDate time.Time            `gorm:"column:snapshot_date;not null" json:"snapshot_date"`
	RiskLevel    agingdomain.RiskLevel `gorm:"column:risk_level;not null" json:"risk_level"`
	TotalAR      decimal.Decimal      `gorm:"column:total_ar;type:decimal(20,4);not null" json:"total_ar"`
	OverdueAR    decimal.Decimal      `gorm:"column:overdue_ar;type:decimal(20,4);not null" json:"overdue_ar"`
	DecisionCode DecisionCode         `gorm:"column:decision_code;not null" json:"decision_code"`
	SalesOpinion string               `gorm:"column:sales_opinion" json:"sales_opinion,omitempty"`
	CreatedBy    string               `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt    time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MeetingCustomer) TableName() string {
	return "credit_meeting_customers"
}

// RiskCounts are computed on read, never stored.
type RiskCounts struct {
	Customers int64 `json:"customers"`
	High      int64 `json:"high"`
	Medium    int64 `json:"medium"`
	Low       int64 `json:"low"`
}

type MeetingWithCounts struct {
	Meeting
	Counts RiskCounts `json:"counts" gorm:"-"`
}

type MeetingDetail struct {
	Meeting   Meeting            `json:"meeting"`
	Counts    RiskCounts         `json:"counts"`
	Customers []*MeetingCustomer `json:"customers"`
}
