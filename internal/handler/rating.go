package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/model"
	"github.com/craftlink/appointments/internal/repository"
)

// RatingHandler lets clients rate craftsmen and anyone read the reviews.
type RatingHandler struct {
	Ratings   *repository.RatingRepo
	Craftsmen *repository.CraftsmanRepo
}

func NewRatingHandler(ratings *repository.RatingRepo, craftsmen *repository.CraftsmanRepo) *RatingHandler {
	if ratings == nil || craftsmen == nil {
		panic("nil repository passed to NewRatingHandler")
	}
	return &RatingHandler{Ratings: ratings, Craftsmen: craftsmen}
}

type ratingReq struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

// AddRating handles POST /v1/craftsmen/:id/ratings (client only). A repeat
// submission by the same client replaces the earlier rating.
func (h *RatingHandler) AddRating(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	craftsmanID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid craftsman id"})
	}
	var req ratingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Stars < 1 || req.Stars > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stars must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Craftsmen.GetByID(ctx, craftsmanID); err != nil {
		if errors.Is(err, repository.ErrCraftsmanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "craftsman not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load craftsman failed"})
	}

	m := &model.Rating{
		CraftsmanID: craftsmanID,
		ClientID:    clientID,
		ClientEmail: getEmail(c),
		Stars:       req.Stars,
		Comment:     strings.TrimSpace(req.Comment),
	}
	stored, err := h.Ratings.Upsert(ctx, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save rating failed"})
	}
	return c.JSON(http.StatusCreated, stored)
}

// MyRating handles GET /v1/craftsmen/:id/ratings/me (client only). It
// returns the caller's existing rating of the craftsman, or 404.
func (h *RatingHandler) MyRating(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	craftsmanID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid craftsman id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Ratings.GetForClient(ctx, craftsmanID, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no rating yet"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rating failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// ListRatings handles GET /v1/craftsmen/:id/ratings (public).
func (h *RatingHandler) ListRatings(c echo.Context) error {
	craftsmanID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid craftsman id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Ratings.ListForCraftsman(ctx, craftsmanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ratings failed"})
	}
	return c.JSON(http.StatusOK, out)
}
