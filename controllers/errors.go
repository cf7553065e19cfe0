package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/cart"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

var (
	errInvalidID   = errors.New("invalid id")
	errInvalidDays = errors.New("days must be a non-negative integer")

	errMenuItemUnavailable = errors.New("menu item is not available")
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbiddenTransition):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrTransitionConflict),
		errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrTableNumberTaken),
		errors.Is(err, services.ErrReservationCancelled),
		errors.Is(err, services.ErrCheckoutInProgress):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidDeliveryType),
		errors.Is(err, services.ErrTableInactive),
		errors.Is(err, services.ErrSessionInactive),
		errors.Is(err, services.ErrIngredientNotFound),
		errors.Is(err, services.ErrRecipeUnitMismatch),
		errors.Is(err, cart.ErrInvalidEntry),
		errors.Is(err, errMenuItemUnavailable):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	utils.RespondError(c, code, err)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidID, name, raw)
	}
	return uint(id), nil
}

// idParam reads a numeric path parameter and writes a 400 when it is not
// one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := parseUintParam(c, name)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

// parseTime accepts RFC3339 timestamps or plain dates in local time.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 or YYYY-MM-DD", raw)
	}
	return t, nil
}
