package models

import "strings"

// Payment status values seen on a service request. Anything else is kept
// verbatim as free text.
const (
	PaymentUnpaid   = "Unpaid"
	PaymentPending  = "Pending"
	PaymentApproved = "Approved"
	PaymentPaid     = "Paid"
)

const RequestStatusPending = "Pending"

/*
|--------------------------------------------------------------------------
| DATABASE MODEL
|--------------------------------------------------------------------------
| Service requests are created by the customer intake site; the admin API
| only reads, approves and deletes them.
*/
type ServiceRequest struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	ContactNo     string `json:"contactNo"`
	BusinessName  string `json:"businessName"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postalcode"`
	BugType       string `json:"bugType"`
	PaymentStatus string `json:"paymentStatus"`
	Status        string `json:"status"`
}

// FullAddress joins address, city and postal code for documents and mail.
func (r ServiceRequest) FullAddress() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Address, r.City, r.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type RequestFilter struct {
	PaymentStatus string
	Search        string
}
