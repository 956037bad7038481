package models

type SendMailRequest struct {
	To      string `form:"to" json:"to" validate:"required,email"`
	Subject string `form:"subject" json:"subject" validate:"required,max=255"`
	Text    string `form:"text" json:"text"`
}

type QuotationRequest struct {
	CustomerName string `json:"customerName" validate:"required,max=255"`
	Address      string `json:"address" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time"`
	AmPm         string `json:"amPm" validate:"omitempty,oneof=AM PM am pm"`
	Amount       string `json:"amount" validate:"required"`
	Description  string `json:"description"`
}
