package models

const (
	CustomerActive = "Active"
	CustomerBanned = "Banned"
)

type Customer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Status       string `json:"status"`
}

// EffectiveStatus treats a missing status as Active.
func (c Customer) EffectiveStatus() string {
	if c.Status == "" {
		return CustomerActive
	}
	return c.Status
}

type UpdateCustomerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Banned"`
}
