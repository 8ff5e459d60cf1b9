package ticket_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"boxoffice/internal/auth"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/tickets/pdf"
	"boxoffice/internal/tickets/qr"
	tickets "boxoffice/internal/tickets/service"
	"boxoffice/internal/utils"
)

type TicketService interface {
	Purchase(ctx context.Context, eventID string, quantity int, userID, userEmail string) ([]models.Ticket, error)
	TicketsForUser(ctx context.Context, userID string) ([]models.Ticket, error)
	AllTickets(ctx context.Context) ([]models.Ticket, error)
	Ticket(ctx context.Context, ticketID string) (*models.Ticket, error)
}

type Handler struct {
	Tickets TicketService
	QR      *qr.Generator
	PDF     *pdf.Generator
	Logger  *logger.Logger
}

type purchaseRequest struct {
	EventID  string `json:"eventId"`
	Quantity int    `json:"quantity"`
}

// Register mounts the ticket routes. All of them require an authenticated
// caller, so mount inside the auth middleware group.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tickets/purchase", h.PurchaseTickets)
	r.Get("/tickets", h.ListTickets)
	r.Get("/tickets/{ticketID}/qr", h.TicketQR)
	r.Get("/tickets/{ticketID}/pdf", h.TicketPDF)
}

func (h *Handler) PurchaseTickets(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		utils.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	issued, err := h.Tickets.Purchase(r.Context(), req.EventID, req.Quantity, user.ID, user.Email)
	if err != nil {
		h.writePurchaseError(w, r, req, err)
		return
	}

	if h.Logger != nil {
		h.Logger.LogPurchase(req.EventID, user.ID, req.Quantity)
	}
	utils.WriteJSON(w, http.StatusCreated, issued)
}

func (h *Handler) writePurchaseError(w http.ResponseWriter, r *http.Request, req purchaseRequest, err error) {
	switch {
	case errors.Is(err, tickets.ErrEventNotFound):
		utils.WriteMessage(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, tickets.ErrNotEnoughTickets):
		utils.WriteMessage(w, http.StatusBadRequest, "Not enough tickets available")
	case errors.Is(err, tickets.ErrInvalidQuantity):
		utils.WriteMessage(w, http.StatusBadRequest, "Quantity must be a positive integer")
	case errors.Is(err, tickets.ErrEventBusy):
		utils.WriteMessage(w, http.StatusServiceUnavailable, "Event is busy, please retry")
	default:
		if h.Logger != nil {
			h.Logger.Error("PURCHASE", fmt.Sprintf("event=%s: %v", req.EventID, err))
		}
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to purchase tickets")
	}
}

// ListTickets returns every ticket for admins and only the caller's own
// tickets otherwise, newest purchases first.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		utils.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var (
		list []models.Ticket
		err  error
	)
	if user.IsAdmin() {
		list, err = h.Tickets.AllTickets(r.Context())
	} else {
		list, err = h.Tickets.TicketsForUser(r.Context(), user.ID)
	}
	if err != nil {
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to fetch tickets")
		return
	}

	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ticketForCaller(w http.ResponseWriter, r *http.Request) *models.Ticket {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		utils.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return nil
	}

	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.Tickets.Ticket(r.Context(), ticketID)
	if err != nil {
		utils.WriteMessage(w, http.StatusNotFound, "Ticket not found")
		return nil
	}

	if ticket.UserID != user.ID && !user.IsAdmin() {
		utils.WriteMessage(w, http.StatusForbidden, "Not your ticket")
		return nil
	}
	return ticket
}

func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	ticket := h.ticketForCaller(w, r)
	if ticket == nil {
		return
	}

	png, err := h.QR.RenderPNG(ticket.ID)
	if err != nil {
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) TicketPDF(w http.ResponseWriter, r *http.Request) {
	ticket := h.ticketForCaller(w, r)
	if ticket == nil {
		return
	}

	qrPNG, err := h.QR.RenderPNG(ticket.ID)
	if err != nil {
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}

	doc, err := h.PDF.Generate(*ticket, qrPNG)
	if err != nil {
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to generate ticket PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ticket-%s.pdf", ticket.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}
