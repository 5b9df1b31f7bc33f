package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/queue"
	"github.com/craftlink/appointments/internal/repository"
	"github.com/craftlink/appointments/internal/schedule"
	queuepub "github.com/craftlink/appointments/internal/service"
)

// BookingHandler drives the booking lifecycle over HTTP. Every mutation
// funnels into the Coordinator; this layer only resolves identities, maps
// errors and emits events.
type BookingHandler struct {
	Engine    *schedule.Coordinator
	Craftsmen *repository.CraftsmanRepo
}

func NewBookingHandler(engine *schedule.Coordinator, craftsmen *repository.CraftsmanRepo) *BookingHandler {
	if engine == nil || craftsmen == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Craftsmen: craftsmen}
}

type createBookingReq struct {
	SlotID             uint64 `json:"slot_id"`
	ClientName         string `json:"client_name"`
	ClientPhone        string `json:"client_phone"`
	ServiceDescription string `json:"service_description"`
	Notes              string `json:"notes"`
}

type updateStatusReq struct {
	Status         string   `json:"status"`
	Notes          *string  `json:"notes"`
	EstimatedPrice *float64 `json:"estimated_price"`
}

// publishEvent fires a booking event on a short detached context so a slow
// or absent broker never stalls the response.
func publishEvent(kind string, b schedule.Booking) {
	ev := queue.BookingEvent{
		Kind:        kind,
		BookingID:   b.ID,
		CraftsmanID: b.CraftsmanID,
		ClientID:    b.ClientID,
		SlotID:      b.SlotID,
		Status:      string(b.Status),
		StartsAt:    b.Start.UTC().Format(time.RFC3339),
		EndsAt:      b.End.UTC().Format(time.RFC3339),
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queuepub.PublishBookingEvent(ctx, ev)
	}()
}

// resolveCraftsmanID maps the authenticated user to their craftsman
// profile id.
func (h *BookingHandler) resolveCraftsmanID(c echo.Context) (uint64, error) {
	userID, err := getUserID(c)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Craftsmen.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCraftsmanNotFound) {
			return 0, echo.NewHTTPError(http.StatusNotFound, "craftsman profile not found")
		}
		return 0, echo.NewHTTPError(http.StatusInternalServerError, "load profile failed")
	}
	return m.ID, nil
}

// CreateBooking handles POST /v1/craftsmen/:id/bookings (client only).
// The whole check-and-claim happens inside the engine; of N concurrent
// requests for one slot exactly one succeeds.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	craftsmanID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid craftsman id"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id required"})
	}
	name := strings.TrimSpace(req.ClientName)
	phone := strings.TrimSpace(req.ClientPhone)
	if name == "" || phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_name and client_phone required"})
	}

	contact := schedule.ClientContact{Name: name, Phone: phone, Email: getEmail(c)}
	b, err := h.Engine.BookSlot(craftsmanID, clientID, contact, req.SlotID,
		strings.TrimSpace(req.ServiceDescription), strings.TrimSpace(req.Notes))
	if err != nil {
		return scheduleError(c, err)
	}

	publishEvent(queue.EventBookingCreated, b)
	return c.JSON(http.StatusCreated, b)
}

// ListMyBookings handles GET /v1/bookings (client only).
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, h.Engine.ClientBookings(clientID))
}

// ListCraftsmanBookings handles GET /v1/craftsman/bookings (craftsman only).
func (h *BookingHandler) ListCraftsmanBookings(c echo.Context) error {
	craftsmanID, err := h.resolveCraftsmanID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Engine.CraftsmanBookings(craftsmanID))
}

// UpdateStatus handles PATCH /v1/bookings/:id/status (craftsman only).
// Entering CANCELLED or REJECTED releases the slot atomically with the
// status change.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	craftsmanID, err := h.resolveCraftsmanID(c)
	if err != nil {
		return err
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	next, ok := schedule.ParseStatus(strings.TrimSpace(req.Status))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	b, err := h.Engine.ChangeStatus(bookingID, craftsmanID, next, req.Notes, req.EstimatedPrice)
	if err != nil {
		return scheduleError(c, err)
	}

	publishEvent(queue.EventBookingStatusChanged, b)
	return c.JSON(http.StatusOK, b)
}

// GetBooking handles GET /v1/bookings/:id. Only the booking's client and
// its craftsman may read it.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	b, err := h.Engine.BookingByID(bookingID)
	if err != nil {
		return scheduleError(c, err)
	}

	switch role, _ := c.Get("role").(string); role {
	case "CRAFTSMAN":
		craftsmanID, err := h.resolveCraftsmanID(c)
		if err != nil {
			return err
		}
		if b.CraftsmanID != craftsmanID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
		}
	default:
		if b.ClientID != userID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// CancelBooking handles POST /v1/bookings/:id/cancel. Clients cancel their
// own bookings, craftsmen theirs; only PENDING and CONFIRMED bookings can
// be cancelled. The slot is released in the same critical section.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	role, _ := c.Get("role").(string)
	actorIsCraftsman := role == "CRAFTSMAN"

	var actorID uint64
	if actorIsCraftsman {
		actorID, err = h.resolveCraftsmanID(c)
		if err != nil {
			return err
		}
	} else {
		actorID, err = getUserID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
	}

	b, err := h.Engine.CancelBooking(bookingID, actorID, actorIsCraftsman)
	if err != nil {
		return scheduleError(c, err)
	}

	publishEvent(queue.EventBookingStatusChanged, b)
	return c.JSON(http.StatusOK, b)
}
