package models

import "time"

// PaymentRecord is a customer waiting for payment approval ("paid customer"
// in the admin UI). It is consumed when the payment is approved.
type PaymentRecord struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"requestId,omitempty"`
	CustomerName  string    `json:"customerName"`
	Email         string    `json:"email"`
	PaymentStatus string    `json:"paymentStatus"`
	SlipID        string    `json:"slipId,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	SavedAt       time.Time `json:"savedAt"`
}

// ApprovedPayment is the append-only audit entry written on approval.
type ApprovedPayment struct {
	ID            string    `json:"id"`
	SlipID        string    `json:"slipId"`
	CustomerName  string    `json:"customerName"`
	Email         string    `json:"email"`
	Amount        string    `json:"amount"`
	PaymentStatus string    `json:"paymentStatus"`
	ApprovedAt    time.Time `json:"approvedAt"`
}

type ApprovePaymentRequest struct {
	Amount string `json:"amount"`
	SlipID string `json:"slipId" validate:"omitempty,numeric,max=20"`
}
