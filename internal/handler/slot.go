package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/repository"
	"github.com/craftlink/appointments/internal/schedule"
)

// SlotHandler exposes the craftsman calendar: owners manage their slots,
// everyone else browses availability.
type SlotHandler struct {
	Engine    *schedule.Coordinator
	Craftsmen *repository.CraftsmanRepo
}

func NewSlotHandler(engine *schedule.Coordinator, craftsmen *repository.CraftsmanRepo) *SlotHandler {
	if engine == nil || craftsmen == nil {
		panic("nil dependency passed to NewSlotHandler")
	}
	return &SlotHandler{Engine: engine, Craftsmen: craftsmen}
}

type createSlotReq struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
}

// craftsmanID resolves the authenticated user to their craftsman profile
// id, which is the id the calendar is keyed by.
func (h *SlotHandler) craftsmanID(c echo.Context) (uint64, error) {
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

// CreateSlot handles POST /v1/slots (craftsman only).
func (h *SlotHandler) CreateSlot(c echo.Context) error {
	craftsmanID, err := h.craftsmanID(c)
	if err != nil {
		return err
	}
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	slot, err := h.Engine.CreateSlot(craftsmanID, req.Start, req.End, strings.TrimSpace(req.Description))
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusCreated, slot)
}

// ListMySlots handles GET /v1/slots (craftsman only). Returns the full
// calendar including claimed and past slots.
func (h *SlotHandler) ListMySlots(c echo.Context) error {
	craftsmanID, err := h.craftsmanID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Engine.Slots(craftsmanID))
}

// DeleteSlot handles DELETE /v1/slots/:id (craftsman only). Claimed slots
// cannot be deleted.
func (h *SlotHandler) DeleteSlot(c echo.Context) error {
	craftsmanID, err := h.craftsmanID(c)
	if err != nil {
		return err
	}
	slotID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	if err := h.Engine.DeleteSlot(craftsmanID, slotID); err != nil {
		return scheduleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAvailable handles GET /v1/craftsmen/:id/slots (public). Optional
// start_date and end_date query parameters (RFC 3339) narrow the range.
func (h *SlotHandler) ListAvailable(c echo.Context) error {
	craftsmanID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid craftsman id"})
	}

	var from, to *time.Time
	if v := strings.TrimSpace(c.QueryParam("start_date")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
		}
		from = &t
	}
	if v := strings.TrimSpace(c.QueryParam("end_date")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
		}
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be before end_date"})
	}

	return c.JSON(http.StatusOK, h.Engine.AvailableSlots(craftsmanID, from, to))
}

// GetSlot handles GET /v1/slots/:id (public).
func (h *SlotHandler) GetSlot(c echo.Context) error {
	slotID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	slot, err := h.Engine.SlotByID(slotID)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, slot)
}
