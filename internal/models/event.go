package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is the sellable unit. TotalTickets is the hard capacity: the number
// of tickets issued against an event may never exceed it.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID           string    `bun:"id,pk" json:"id"`
	Title        string    `bun:"title,notnull" json:"title"`
	Description  string    `bun:"description,nullzero" json:"description,omitempty"`
	Date         time.Time `bun:"date,notnull" json:"date"`
	Location     string    `bun:"location,nullzero" json:"location,omitempty"`
	Image        string    `bun:"image,nullzero" json:"image,omitempty"`
	TotalTickets int       `bun:"total_tickets,notnull" json:"totalTickets"`
	TicketPrice  float64   `bun:"ticket_price,notnull" json:"ticketPrice"`
}
