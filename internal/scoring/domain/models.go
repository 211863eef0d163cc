package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Rating is one external credit rating per (customer, rating date). Rows are
// maintained by an external ingestion process; only the most recent by date
// is consulted for scoring.
type Rating struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerSeq int64        `gorm:"column:customer_seq;not null;index" json:"customer_seq"`
	Agency      string       `gorm:"column:rating_agency" json:"agency"`
	Grade       string       `gorm:"column:rating_grade" json:"grade"`
	Score       int          `gorm:"column:rating_score;not null" json:"score"`
	RatingDate  time.Time    `gorm:"column:rating_date;not null" json:"rating_date"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Rating) TableName() string {
	return "credit_ratings"
}

// Assessment is a sales rep's qualitative judgement of a customer, captured
// as a 0-100 score. History is append-only; the latest by date wins.
type Assessment struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerSeq    int64        `gorm:"column:customer_seq;not null;index" json:"customer_seq"`
	AssessorID     string       `gorm:"column:assessor_id;not null" json:"assessor_id"`
	Score          int          `gorm:"column:assessment_score;not null" json:"score"`
	Comment        string       `gorm:"column:assessment_comment" json:"comment"`
	AssessmentDate time.Time    `gorm:"column:assessment_date;not null" json:"assessment_date"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Assessment) TableName() string {
	return "sales_rep_assessments"
}

// InvoiceLine is the transaction history consumed by volume scoring and
// price simulation. Written by the billing side of the back office; the
// engine only aggregates it.
type InvoiceLine struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerSeq int64           `gorm:"column:customer_seq;not null;index:ix_invoice_lines_customer_date" json:"customer_seq"`
	InvoiceDate time.Time       `gorm:"column:invoice_date;not null;index:ix_invoice_lines_customer_date" json:"invoice_date"`
	ItemSeq     int64           `gorm:"column:item_seq;not null" json:"item_seq"`
	ItemName    string          `gorm:"column:item_name" json:"item_name"`
	ItemUnit    string          `gorm:"column:item_unit" json:"item_unit"`
	Qty         decimal.Decimal `gorm:"column:qty;type:decimal(20,4);not null" json:"qty"`
	LineAmount  decimal.Decimal `gorm:"column:line_amount;type:decimal(20,4);not null" json:"line_amount"`
}

func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// SubScores are the four independent 0-100 factors feeding the composite.
type SubScores struct {
	Volume     int `json:"volume"`
	Aging      int `json:"aging"`
	Rating     int `json:"rating"`
	Assessment int `json:"assessment"`
}

type SimulationItem struct {
	ItemSeq            int64           `json:"item_seq"`
	ItemName           string          `json:"item_name"`
	ItemUnit           string          `json:"item_unit"`
	RecentUnitPrice    decimal.Decimal `json:"recent_unit_price"`
	RecentQty          decimal.Decimal `json:"recent_qty"`
	SimulatedUnitPrice decimal.Decimal `json:"simulated_unit_price"`
}

// Simulation is the full scoring and price-simulation result for one
// customer. Derived per request, never persisted.
type Simulation struct {
	CustomerSeq       int64            `json:"customer_seq"`
	CustomerName      string           `json:"customer_name,omitempty"`
	VolumeCurrent     decimal.Decimal  `json:"volume_current"`
	VolumePrior       decimal.Decimal  `json:"volume_prior"`
	VolumeGrowthPct   decimal.Decimal  `json:"volume_growth_pct"`
	TotalAR           decimal.Decimal  `json:"total_ar"`
	OverdueAR         decimal.Decimal  `json:"overdue_ar"`
	OverdueRatioPct   decimal.Decimal  `json:"overdue_ratio_pct"`
	RatingAgency      string           `json:"rating_agency,omitempty"`
	RatingGrade       string           `json:"rating_grade,omitempty"`
	AssessmentComment string           `json:"assessment_comment,omitempty"`
	SubScores         SubScores        `json:"sub_scores"`
	CompositeScore    int              `json:"composite_score"`
	SuggestedRate     decimal.Decimal  `json:"suggested_increase_rate"`
	Items             []SimulationItem `json:"items"`
}
