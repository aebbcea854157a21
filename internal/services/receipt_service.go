package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/models"
)

// ReceiptService renders booking receipts as PDF
type ReceiptService struct {
	users  UserStore
	logger *logrus.Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(users UserStore, logger *logrus.Logger) *ReceiptService {
	return &ReceiptService{users: users, logger: logger}
}

// Generate renders the receipt for a confirmed booking. Returns the PDF
// bytes and a suggested filename.
func (s *ReceiptService) Generate(booking *models.Booking) ([]byte, string, error) {
	if booking == nil {
		return nil, "", fmt.Errorf("booking cannot be nil")
	}

	holderName := booking.ContactEmail
	if user, err := s.users.GetByID(booking.UserID); err == nil && user != nil {
		holderName = user.FullName()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	receiptNo := fmt.Sprintf("RCP-%s", strings.ToUpper(booking.ID.String()[:8]))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Receipt No   : "+receiptNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued       : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Booked by    : "+holderName)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Booking details")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Type         : "+strings.ToUpper(string(booking.Vertical)))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Item         : "+booking.ItemName)
	pdf.Ln(7)
	dateLines := []struct {
		label string
		date  *time.Time
	}{
		{"Check-in     : ", booking.CheckIn},
		{"Check-out    : ", booking.CheckOut},
		{"Travel date  : ", booking.TravelDate},
	}
	for _, line := range dateLines {
		if line.date != nil {
			pdf.Cell(0, 7, line.label+line.date.Format("2006-01-02"))
			pdf.Ln(7)
		}
	}
	if len(booking.Guests) > 0 {
		names := make([]string, 0, len(booking.Guests))
		for _, g := range booking.Guests {
			names = append(names, g.Name)
		}
		pdf.Cell(0, 7, "Travellers   : "+strings.Join(names, ", "))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Amount paid  : %s %s", booking.Currency, formatMinorUnits(booking.TotalAmount)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Payment ref  : "+booking.GatewayOrderID)
	pdf.Ln(6)
	if booking.GatewayPaymentID != nil {
		pdf.Cell(0, 6, "Payment id   : "+*booking.GatewayPaymentID)
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render receipt PDF: %w", err)
	}

	filename := fmt.Sprintf("receipt_%s.pdf", booking.ID)
	return buf.Bytes(), filename, nil
}

// formatMinorUnits renders paise/cents as a decimal amount
func formatMinorUnits(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
