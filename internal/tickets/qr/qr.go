package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// DefaultURLTemplate matches the external rendering service the web client
// historically pointed at. The %s verb takes the ticket ID.
const DefaultURLTemplate = "https://api.qrserver.com/v1/create-qr-code/?size=150x150&data=ticket-%s"

// Generator builds the verification artifact for a ticket: the URL persisted
// on the ticket row and, on demand, a locally rendered PNG of the same
// payload.
type Generator struct {
	urlTemplate string
}

func NewGenerator(urlTemplate string) *Generator {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &Generator{urlTemplate: urlTemplate}
}

// Payload is the string a scanner reads back from the code.
func (g *Generator) Payload(ticketID string) string {
	return "ticket-" + ticketID
}

// VerificationURL returns the scannable-code URL embedding the ticket ID.
func (g *Generator) VerificationURL(ticketID string) string {
	return fmt.Sprintf(g.urlTemplate, ticketID)
}

// RenderPNG renders the ticket payload as a QR code PNG.
func (g *Generator) RenderPNG(ticketID string) ([]byte, error) {
	png, err := qrcode.Encode(g.Payload(ticketID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode QR for ticket %s: %w", ticketID, err)
	}
	return png, nil
}
