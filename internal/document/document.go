// Package document renders the quotation and dispatch confirmation PDFs.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth   = 210.0
	marginLeft  = 20.0
	bodyWidth   = 170.0
	companyName = "NO MORE BUGS"
)

type Quotation struct {
	CustomerName string
	Address      string
	Date         string
	Time         string
	AmPm         string
	Amount       string
	Currency     string
	Description  string
}

type DispatchConfirmation struct {
	JobID           string
	PIN             string
	WorkerName      string
	WorkerContact   string
	WorkerEmail     string
	CustomerName    string
	CustomerAddress string
	ServiceType     string
	IssuedAt        time.Time
}

type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// QuotationFilename is the download name used for a quotation.
func QuotationFilename(customerName string) string {
	return safeName(customerName) + "_Quotation.pdf"
}

// ConfirmationFilename is the download name used for a dispatch confirmation.
func ConfirmationFilename(jobID string) string {
	return "Dispatch_" + safeName(jobID) + ".pdf"
}

func (r *Renderer) Quotation(q Quotation) ([]byte, error) {
	pdf := r.newPage("Quotation", "OFFICIAL DOCUMENT")

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, "Customer Name: "+q.CustomerName)
	line(pdf, "Address: "+q.Address)
	line(pdf, "Date: "+q.Date)
	if when := strings.TrimSpace(q.Time + " " + q.AmPm); when != "" {
		line(pdf, "Time: "+when)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 14)
	currency := q.Currency
	if currency == "" {
		currency = "LKR"
	}
	line(pdf, fmt.Sprintf("Estimated Amount: %s %s", q.Amount, currency))

	pdf.Ln(5)
	pdf.SetFont("Helvetica", "", 12)
	line(pdf, "Description / Services:")
	pdf.SetX(marginLeft)
	pdf.MultiCell(bodyWidth, 7, q.Description, "", "L", false)

	return output(pdf)
}

func (r *Renderer) DispatchConfirmation(d DispatchConfirmation) ([]byte, error) {
	if strings.TrimSpace(d.PIN) == "" {
		return nil, fmt.Errorf("dispatch confirmation for job %s: pin is empty", d.JobID)
	}

	pdf := r.newPage("Dispatch Confirmation", "DISPATCH CONFIRMATION")

	issued := d.IssuedAt
	if issued.IsZero() {
		issued = r.now()
	}

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, "Job / Slip ID: "+d.JobID)
	line(pdf, "Issued: "+issued.Format("2006-01-02 15:04"))

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetX(marginLeft)
	pdf.CellFormat(bodyWidth, 18, "PIN: "+d.PIN, "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(marginLeft)
	pdf.CellFormat(bodyWidth, 8, "The customer will ask the technician for this PIN on arrival.", "", 1, "C", false, 0, "")

	pdf.Ln(6)
	section(pdf, "Technician")
	line(pdf, "Name: "+d.WorkerName)
	line(pdf, "Contact: "+d.WorkerContact)
	line(pdf, "Email: "+d.WorkerEmail)

	pdf.Ln(4)
	section(pdf, "Customer")
	line(pdf, "Name: "+d.CustomerName)
	line(pdf, "Address: "+d.CustomerAddress)
	line(pdf, "Service: "+d.ServiceType)

	return output(pdf)
}

func (r *Renderer) newPage(title, heading string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("No More Bugs", true)
	pdf.SetCreationDate(r.now())
	pdf.AddPage()

	pdf.SetFillColor(255, 215, 0)
	pdf.Rect(0, 0, pageWidth, 40, "F")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(0, 15)
	pdf.CellFormat(pageWidth, 10, companyName+" - "+heading, "", 1, "C", false, 0, "")

	pdf.SetXY(marginLeft, 55)
	return pdf
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	line(pdf, title)
	pdf.SetFont("Helvetica", "", 12)
}

func line(pdf *fpdf.Fpdf, text string) {
	pdf.SetX(marginLeft)
	pdf.CellFormat(bodyWidth, 9, text, "", 1, "L", false, 0, "")
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
