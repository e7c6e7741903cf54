package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	ucCollection "palmcash-backend/internal/usecase/collection"
)

type CollectionHandler struct{ uc *ucCollection.Usecase }

func NewCollectionHandler(uc *ucCollection.Usecase) *CollectionHandler {
	return &CollectionHandler{uc: uc}
}

func sheetDate(c echo.Context) (time.Time, bool) {
	raw := c.QueryParam("date")
	if raw == "" {
		return time.Now().UTC(), true
	}
	d, err := time.Parse("2006-01-02", raw)
	return d, err == nil
}

// OfficerSheet answers GET /collections/sheet?date=YYYY-MM-DD for the
// calling officer, or for ?officer_id= when a manager asks.
func (h *CollectionHandler) OfficerSheet(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	date, ok := sheetDate(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be YYYY-MM-DD"})
	}
	officerID := actor.ID
	if other := c.QueryParam("officer_id"); other != "" && actor.CanVerify() {
		officerID = other
	}
	sheet, err := h.uc.OfficerSheet(c.Request().Context(), officerID, date)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"officer_id": officerID,
		"date":       date.Format("2006-01-02"),
		"rows":       sheet,
	})
}

func (h *CollectionHandler) ScheduleCollections(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	if !actor.Staff() {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "staff only"})
	}
	date, ok := sheetDate(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be YYYY-MM-DD"})
	}
	officerID := actor.ID
	if other := c.QueryParam("officer_id"); other != "" && actor.CanVerify() {
		officerID = other
	}
	created, err := h.uc.ScheduleCollections(c.Request().Context(), officerID, date)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"created": created})
}

// SweepDefaults reconciles active/defaulted statuses against overdue
// counts. Wired for the cron caller; admins may trigger it by hand.
func (h *CollectionHandler) SweepDefaults(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	if !actor.CanVerify() {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin or manager only"})
	}
	changed, err := h.uc.SweepDefaults(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"changed": changed})
}
