package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	resdto "salon-booking-api/internal/handler/dto/response"
	"salon-booking-api/internal/usecase/queries"
	"salon-booking-api/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	availability queries.AvailabilityQueries
	policy       shared.SalonPolicy
}

func NewAvailabilityHandler(availability queries.AvailabilityQueries, policy shared.SalonPolicy) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		policy:       policy,
	}
}

// @Summary Day availability
// @Description List bookable start times for a service on one date
// @Tags availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param service_id query string false "Service ID (defaults to a 60-minute grid)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /availability [get]
func (h *AvailabilityHandler) GetDay(c *gin.Context) {
	date, ok := h.parseDate(c, c.Query("date"))
	if !ok {
		return
	}
	serviceID, ok := h.parseServiceID(c)
	if !ok {
		return
	}

	view, err := h.availability.GetDay(c.Request.Context(), date, serviceID)
	if err != nil {
		h.writeAvailabilityError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary Multi-day availability
// @Description List bookable start times for a range of dates
// @Tags availability
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param days query int false "Number of days (default 7, max 14)"
// @Param service_id query string false "Service ID (defaults to a 60-minute grid)"
// @Success 200 {array} resdto.AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /availability/span [get]
func (h *AvailabilityHandler) GetSpan(c *gin.Context) {
	from, ok := h.parseDate(c, c.Query("from"))
	if !ok {
		return
	}
	serviceID, ok := h.parseServiceID(c)
	if !ok {
		return
	}

	days := 7
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid days value",
			})
			return
		}
		days = parsed
	}

	views, err := h.availability.GetSpan(c.Request.Context(), from, days, serviceID)
	if err != nil {
		h.writeAvailabilityError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityViews(views))
}

func (h *AvailabilityHandler) parseDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Date is required",
		})
		return time.Time{}, false
	}

	date, err := time.ParseInLocation("2006-01-02", raw, h.policy.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid date format, expected YYYY-MM-DD",
		})
		return time.Time{}, false
	}

	return date, true
}

// parseServiceID treats an absent service_id as a request for the generic
// slot grid.
func (h *AvailabilityHandler) parseServiceID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("service_id")
	if raw == "" {
		return uuid.Nil, true
	}

	serviceID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid service ID format",
		})
		return uuid.Nil, false
	}
	return serviceID, true
}

func (h *AvailabilityHandler) writeAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queries.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Service not found",
		})
	case errors.Is(err, queries.ErrServiceInactive):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Service is not bookable",
		})
	case errors.Is(err, queries.ErrInvalidDateSpan):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid date span",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
