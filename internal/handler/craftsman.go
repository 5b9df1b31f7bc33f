package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/model"
	"github.com/craftlink/appointments/internal/repository"
)

// CraftsmanHandler serves profile management for craftsmen and the public
// browse/search endpoints. The profile email always comes from the JWT
// claim, never from a request body.
type CraftsmanHandler struct {
	Craftsmen *repository.CraftsmanRepo
}

func NewCraftsmanHandler(craftsmen *repository.CraftsmanRepo) *CraftsmanHandler {
	if craftsmen == nil {
		panic("nil repository passed to NewCraftsmanHandler")
	}
	return &CraftsmanHandler{Craftsmen: craftsmen}
}

type profileReq struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Qualifications string `json:"qualifications"`
	WorkingHours   string `json:"working_hours"`
	Category       string `json:"category"`
	Location       string `json:"location"`
}

func (r *profileReq) validate() (model.ServiceCategory, string) {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Phone) == "" ||
		strings.TrimSpace(r.Qualifications) == "" || strings.TrimSpace(r.WorkingHours) == "" ||
		strings.TrimSpace(r.Location) == "" {
		return "", "name, phone, qualifications, working_hours and location are required"
	}
	cat := model.ServiceCategory(strings.TrimSpace(r.Category))
	if !cat.Valid() {
		return "", "unknown category"
	}
	return cat, ""
}

// CreateProfile handles POST /v1/craftsmen/me. The profile email is taken
// from the authenticated user, not the request body.
func (h *CraftsmanHandler) CreateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	cat, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := &model.Craftsman{
		UserID:         userID,
		Name:           strings.TrimSpace(req.Name),
		Email:          getEmail(c),
		Phone:          strings.TrimSpace(req.Phone),
		Qualifications: strings.TrimSpace(req.Qualifications),
		WorkingHours:   strings.TrimSpace(req.WorkingHours),
		Category:       cat,
		Location:       strings.TrimSpace(req.Location),
	}
	if err := h.Craftsmen.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "profile already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	created, err := h.Craftsmen.GetByID(ctx, m.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateProfile handles PUT /v1/craftsmen/me.
func (h *CraftsmanHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	cat, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := &model.Craftsman{
		Name:           strings.TrimSpace(req.Name),
		Phone:          strings.TrimSpace(req.Phone),
		Qualifications: strings.TrimSpace(req.Qualifications),
		WorkingHours:   strings.TrimSpace(req.WorkingHours),
		Category:       cat,
		Location:       strings.TrimSpace(req.Location),
	}
	updated, err := h.Craftsmen.Update(ctx, userID, m)
	if err != nil {
		if errors.Is(err, repository.ErrCraftsmanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "craftsman profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// MyProfile handles GET /v1/craftsmen/me.
func (h *CraftsmanHandler) MyProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Craftsmen.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCraftsmanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "craftsman profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// GetCraftsman handles GET /v1/craftsmen/:id (public).
func (h *CraftsmanHandler) GetCraftsman(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid craftsman id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Craftsmen.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCraftsmanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "craftsman not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load craftsman failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// ListCraftsmen handles GET /v1/craftsmen (public). Optional query
// parameters: category, location, min_rating, q.
func (h *CraftsmanHandler) ListCraftsmen(c echo.Context) error {
	var f model.SearchFilters
	if v := strings.TrimSpace(c.QueryParam("category")); v != "" {
		cat := model.ServiceCategory(v)
		if !cat.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
		}
		f.Category = cat
	}
	f.Location = c.QueryParam("location")
	f.SearchTerm = c.QueryParam("q")
	if v := strings.TrimSpace(c.QueryParam("min_rating")); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil || min < 0 || min > 5 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_rating"})
		}
		f.MinRating = &min
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Craftsmen.Search(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, out)
}
