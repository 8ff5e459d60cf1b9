package pdf

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/signintech/gopdf"

	"boxoffice/internal/models"
)

// Generator renders a printable A4 ticket with the purchase snapshot and the
// QR verification code.
type Generator struct {
	FontPath string
}

func NewGenerator(fontPath string) *Generator {
	return &Generator{FontPath: fontPath}
}

func (g *Generator) Generate(ticket models.Ticket, qrCode []byte) ([]byte, error) {
	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	doc.AddPage()

	if err := doc.AddTTFFont("ticket", g.FontPath); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	if err := doc.SetFont("ticket", "", 14); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}

	addHeader(doc, ticket)

	doc.SetY(70)
	addTicketInfo(doc, ticket)

	if len(qrCode) > 0 {
		doc.SetY(doc.GetY() + 20)
		addQRCode(doc, qrCode)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func addHeader(doc *gopdf.GoPdf, ticket models.Ticket) {
	doc.SetX(40)
	doc.SetY(30)
	doc.Cell(nil, "EVENT TICKET - "+ticket.EventName)
}

func addTicketInfo(doc *gopdf.GoPdf, ticket models.Ticket) {
	info := []struct {
		Label string
		Value string
	}{
		{"Ticket ID", ticket.ID},
		{"Event", ticket.EventName},
		{"Event date", ticket.EventDate.Format("2006-01-02 15:04")},
		{"Purchased", ticket.PurchaseDate.Format("2006-01-02 15:04")},
		{"Price", fmt.Sprintf("%.2f EUR", ticket.Price)},
		{"Holder", ticket.UserEmail},
	}

	for _, item := range info {
		doc.SetX(40)
		doc.Cell(nil, item.Label+": "+item.Value)
		doc.Br(20)
	}
}

func addQRCode(doc *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		doc.SetX(40)
		doc.Cell(nil, "Failed to load QR code")
		return
	}

	rect := &gopdf.Rect{W: 100, H: 100}
	if err := doc.ImageFrom(img, 40, doc.GetY(), rect); err != nil {
		doc.SetX(40)
		doc.Cell(nil, "Failed to draw QR code")
	}
}
