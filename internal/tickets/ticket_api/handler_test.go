package ticket_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"boxoffice/internal/auth"
	"boxoffice/internal/models"
	ticketdb "boxoffice/internal/tickets/db"
	"boxoffice/internal/tickets/pdf"
	"boxoffice/internal/tickets/qr"
	tickets "boxoffice/internal/tickets/service"
	"boxoffice/internal/tickets/ticket_api"
)

type testEnv struct {
	db     *ticketdb.DB
	router *chi.Mux
}

// newTestEnv wires the real service over an in-memory database; asUser is
// injected into every request context, standing in for the auth middleware.
func newTestEnv(t *testing.T, asUser auth.User) *testEnv {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Ticket)(nil),
	} {
		_, err := bunDB.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	d := &ticketdb.DB{Bun: bunDB}
	qrGen := qr.NewGenerator("")
	service := tickets.NewTicketService(d, nil, nil, qrGen)
	handler := &ticket_api.Handler{
		Tickets: service,
		QR:      qrGen,
		PDF:     pdf.NewGenerator("./no-such-font.ttf"),
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), asUser)))
		})
	})
	handler.Register(router)

	return &testEnv{db: d, router: router}
}

func (e *testEnv) seedEvent(t *testing.T, totalTickets int, price float64) models.Event {
	t.Helper()
	event := models.Event{
		ID:           uuid.New().String(),
		Title:        "Community Meetup",
		Date:         time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC),
		TotalTickets: totalTickets,
		TicketPrice:  price,
	}
	_, err := e.db.Bun.NewInsert().Model(&event).Exec(context.Background())
	require.NoError(t, err)
	return event
}

func (e *testEnv) purchase(t *testing.T, eventID string, quantity int) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{"eventId": eventID, "quantity": quantity})
	req := httptest.NewRequest(http.MethodPost, "/tickets/purchase", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func buyer() auth.User {
	return auth.User{ID: "user-1", Email: "user@demo.it", Role: models.RoleUser}
}

func TestPurchaseEndpointCreatesBatch(t *testing.T) {
	env := newTestEnv(t, buyer())
	event := env.seedEvent(t, 10, 15.5)

	rec := env.purchase(t, event.ID, 2)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var issued []models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))
	require.Len(t, issued, 2)
	for _, ticket := range issued {
		assert.Equal(t, event.ID, ticket.EventID)
		assert.Equal(t, "user-1", ticket.UserID)
		assert.Equal(t, "user@demo.it", ticket.UserEmail)
		assert.Equal(t, 15.5, ticket.Price)
		assert.Equal(t, "Community Meetup", ticket.EventName)
		assert.Contains(t, ticket.QRCodeURL, ticket.ID)
	}
}

func TestPurchaseEndpointUnknownEvent(t *testing.T) {
	env := newTestEnv(t, buyer())

	rec := env.purchase(t, "no-such-event", 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Event not found")
}

func TestPurchaseEndpointCapacityExceeded(t *testing.T) {
	env := newTestEnv(t, buyer())
	event := env.seedEvent(t, 2, 10.0)

	rec := env.purchase(t, event.ID, 2)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.purchase(t, event.ID, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not enough tickets available")
}

func TestPurchaseEndpointInvalidQuantity(t *testing.T) {
	env := newTestEnv(t, buyer())
	event := env.seedEvent(t, 2, 10.0)

	rec := env.purchase(t, event.ID, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quantity must be a positive integer")
}

func TestListTicketsScopedToCaller(t *testing.T) {
	env := newTestEnv(t, buyer())
	event := env.seedEvent(t, 10, 10.0)

	require.Equal(t, http.StatusCreated, env.purchase(t, event.ID, 2).Code)

	// Another buyer's ticket, inserted directly.
	other := models.Ticket{
		ID: uuid.New().String(), EventID: event.ID, UserID: "user-2",
		PurchaseDate: time.Now().UTC(), Price: 10.0,
	}
	_, err := env.db.Bun.NewInsert().Model(&other).Exec(context.Background())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
	for _, ticket := range list {
		assert.Equal(t, "user-1", ticket.UserID)
	}
}

func TestListTicketsAdminSeesAll(t *testing.T) {
	admin := auth.User{ID: "admin-1", Email: "admin@demo.it", Role: models.RoleAdmin}
	env := newTestEnv(t, admin)
	event := env.seedEvent(t, 10, 10.0)

	for _, userID := range []string{"user-1", "user-2"} {
		ticket := models.Ticket{
			ID: uuid.New().String(), EventID: event.ID, UserID: userID,
			PurchaseDate: time.Now().UTC(), Price: 10.0,
		}
		_, err := env.db.Bun.NewInsert().Model(&ticket).Exec(context.Background())
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestTicketQREndpoint(t *testing.T) {
	env := newTestEnv(t, buyer())
	event := env.seedEvent(t, 5, 10.0)

	rec := env.purchase(t, event.ID, 1)
	require.Equal(t, http.StatusCreated, rec.Code)
	var issued []models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/tickets/%s/qr", issued[0].ID), nil)
	qrRec := httptest.NewRecorder()
	env.router.ServeHTTP(qrRec, req)

	assert.Equal(t, http.StatusOK, qrRec.Code)
	assert.Equal(t, "image/png", qrRec.Header().Get("Content-Type"))
	assert.NotEmpty(t, qrRec.Body.Bytes())
}

func TestTicketQRForbiddenForOtherUsers(t *testing.T) {
	env := newTestEnv(t, buyer())
	event := env.seedEvent(t, 5, 10.0)

	foreign := models.Ticket{
		ID: uuid.New().String(), EventID: event.ID, UserID: "someone-else",
		PurchaseDate: time.Now().UTC(), Price: 10.0,
	}
	_, err := env.db.Bun.NewInsert().Model(&foreign).Exec(context.Background())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/tickets/%s/qr", foreign.ID), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
