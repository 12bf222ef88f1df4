package order

import (
	"fmt"
	"strings"
	"time"
)

// Order lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment methods.
const (
	PaymentCash       = "cash"
	PaymentCreditCard = "credit_card"
	PaymentDebitCard  = "debit_card"
	PaymentPix        = "pix"
	PaymentTransfer   = "transfer"
)

const (
	maxInstallments = 12
	maxNotesLen     = 500
)

// Order is the purchase-order table model. SellerID is snapshotted from the
// vehicle at creation time so the order stays readable even if the vehicle
// changes hands later. The timestamp pointers are stamped by the matching
// transition and never cleared.
type Order struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	VehicleID         string     `gorm:"index;size:36;not null" json:"vehicleId"`
	BuyerID           string     `gorm:"index;size:36;not null" json:"buyerId"`
	SellerID          string     `gorm:"index;size:36;not null" json:"sellerId"`
	FinalPrice        float64    `gorm:"not null" json:"finalPrice"`
	PaymentMethod     string     `gorm:"size:16;not null" json:"paymentMethod"`
	Installments      int        `gorm:"not null;default:1" json:"installments"`
	InstallmentAmount float64    `gorm:"not null" json:"installmentAmount"`
	Notes             string     `gorm:"size:500" json:"notes,omitempty"`
	Status            string     `gorm:"size:16;index;not null" json:"status"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	CancelledAt       *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func validPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentTransfer:
		return true
	}
	return false
}

// CreateInput carries the fields accepted when placing an order.
type CreateInput struct {
	VehicleID     string  `json:"vehicleId"`
	FinalPrice    float64 `json:"finalPrice"`
	PaymentMethod string  `json:"paymentMethod"`
	Installments  int     `json:"installments"`
	Notes         string  `json:"notes"`
}

// Validate normalizes the input and returns field-level problems.
// Installments only make sense for credit card payments; everything else
// settles in one go.
func (in *CreateInput) Validate() []string {
	var details []string

	in.VehicleID = strings.TrimSpace(in.VehicleID)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCash
	}
	if in.Installments == 0 {
		in.Installments = 1
	}

	if in.VehicleID == "" {
		details = append(details, "vehicleId is required")
	}
	if in.FinalPrice <= 0 {
		details = append(details, "finalPrice must be greater than zero")
	}
	if !validPaymentMethod(in.PaymentMethod) {
		details = append(details, "paymentMethod is not a known payment method")
	}
	if in.Installments < 1 || in.Installments > maxInstallments {
		details = append(details, fmt.Sprintf("installments must be between 1 and %d", maxInstallments))
	}
	if in.PaymentMethod != PaymentCreditCard && in.Installments > 1 {
		details = append(details, "installments above 1 require credit card payment")
	}
	if len(in.Notes) > maxNotesLen {
		details = append(details, fmt.Sprintf("notes cannot exceed %d characters", maxNotesLen))
	}

	return details
}

// InstallmentAmount splits a price into n equal payments.
func InstallmentAmount(price float64, installments int) float64 {
	if installments < 1 {
		installments = 1
	}
	return price / float64(installments)
}
