package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus constants
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// ApprovalAction constants
const (
	ApprovalActionApproved = "APPROVED"
	ApprovalActionRejected = "REJECTED"
)

// Request represents an expense reimbursement submission. The total is
// derived at creation time as the sum of its line amounts; the decision
// fields stay null until an approver acts.
type Request struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	RequesterID     uint            `gorm:"not null;index" json:"requester_id"`
	Requester       *User           `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	DepartmentID    uint            `gorm:"not null;index" json:"department_id"`
	Department      *Department     `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	CostCenterID    *uint           `gorm:"index" json:"cost_center_id"`
	CostCenter      *CostCenter     `gorm:"foreignKey:CostCenterID" json:"cost_center,omitempty"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	SubmittedAt     time.Time       `gorm:"not null" json:"submitted_at"`
	ApproverID      *uint           `json:"approver_id"`
	Approver        *User           `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	ApprovalComment *string         `gorm:"type:text" json:"approval_comment"`
	DecidedAt       *time.Time      `json:"decided_at"`
	Lines           []RequestLine   `gorm:"foreignKey:RequestID" json:"lines"`
	Attachments     []Attachment    `gorm:"foreignKey:RequestID" json:"attachments"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DisplayID renders the synthetic identifier shown to users, e.g. REQ-042.
func (r *Request) DisplayID() string {
	return fmt.Sprintf("REQ-%03d", r.ID)
}

// RequestLine is a single categorized expense within a request.
// Position is 1-based and dense, preserving submission order.
type RequestLine struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	RequestID   uint            `gorm:"not null;index" json:"request_id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Provider    *string         `gorm:"type:varchar(255)" json:"provider"`
	Position    int             `gorm:"not null" json:"position"`
}

// Attachment stores relayed file metadata. Rows exist only for files the
// relay accepted; they are created exclusively at request-creation time.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RequestID uint      `gorm:"not null;index" json:"request_id"`
	Filename  string    `gorm:"type:varchar(255);not null" json:"filename"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	MIMEType  string    `gorm:"type:varchar(128)" json:"mime_type"`
	Size      int64     `gorm:"not null" json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Approval is the append-style decision log. The lifecycle allows at most
// one row per request today; the shape tolerates more if resubmission is
// ever added.
type Approval struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RequestID  uint      `gorm:"not null;index" json:"request_id"`
	ApproverID uint      `gorm:"not null;index" json:"approver_id"`
	Approver   *User     `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Action     string    `gorm:"type:varchar(20);not null" json:"action"`
	Comment    string    `gorm:"type:text" json:"comment"`
	DecidedAt  time.Time `gorm:"not null" json:"decided_at"`
}

// MapExternalStatus translates the lowercase vocabulary used by API
// clients ({pending, approved, rejected}) to the stored status values.
// Unknown literals pass through unchanged so forward-compatible callers
// keep working.
func MapExternalStatus(s string) string {
	switch s {
	case "pending", "Pending", "PENDING":
		return RequestStatusPending
	case "approved", "Approved", "APPROVED":
		return RequestStatusApproved
	case "rejected", "Rejected", "REJECTED":
		return RequestStatusRejected
	default:
		return s
	}
}
