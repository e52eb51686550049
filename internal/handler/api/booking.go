package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	reqdto "salon-booking-api/internal/handler/dto/request"
	resdto "salon-booking-api/internal/handler/dto/response"
	"salon-booking-api/internal/metrics"
	"salon-booking-api/internal/usecase/commands"
	"salon-booking-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const staffActor = "staff"

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

// @Summary Create booking
// @Description Book an appointment slot. Requires an Idempotency-Key header.
// @Tags bookings
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 200 {object} resdto.BookingResponse "Replayed from a previous identical request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.bookingCommands.CreateBooking(c.Request.Context(), req, idempotencyKey)
	if err != nil {
		h.writeCreateError(c, err)
		return
	}

	response := resdto.FromBookingView(result.Booking)
	if result.IsReplayed {
		c.JSON(http.StatusOK, response)
		return
	}

	metrics.IncBookingCreated()
	c.JSON(http.StatusCreated, response)
}

// @Summary Get booking
// @Description Customer lookup of one booking. The booking email must match.
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Param email query string true "Email used for the booking"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Email is required",
		})
		return
	}

	view, err := h.bookingQueries.GetByIDForCustomer(c.Request.Context(), id, email)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List customer bookings
// @Description Bookings made with an email, newest appointment first
// @Tags bookings
// @Produce json
// @Param email query string true "Customer email"
// @Success 200 {array} resdto.BookingListResponse
// @Failure 400 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) ListCustomerBookings(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Email is required",
		})
		return
	}

	limit := parseLimit(c)
	items, err := h.bookingQueries.ListByCustomerEmail(c.Request.Context(), email, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.BookingListResponse, len(items))
	for i, item := range items {
		response[i] = resdto.FromBookingListItem(item)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Cancel booking
// @Description Customer cancellation, allowed until 24 hours before the start
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest true "Cancellation request"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var req reqdto.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	err := h.bookingCommands.CancelBooking(c.Request.Context(), id, req.Email, req.Reason, commands.ActorCustomer)
	if err != nil {
		h.writeCancelError(c, err)
		return
	}

	view, err := h.bookingQueries.GetByIDForCustomer(c.Request.Context(), id, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Submit review
// @Description Review a completed booking, one review per booking
// @Tags bookings
// @Accept json
// @Param id path string true "Booking ID"
// @Param request body reqdto.CreateReviewRequest true "Review request"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/review [post]
func (h *BookingHandler) SubmitReview(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var req reqdto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	err := h.bookingCommands.SubmitReview(c.Request.Context(), id, req.Email, req.Rating, req.Comment)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List bookings
// @Description Staff booking list with filters and cursor pagination
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param from query string false "Earliest appointment date (YYYY-MM-DD)"
// @Param to query string false "Latest appointment date (YYYY-MM-DD)"
// @Param email query string false "Filter by customer email"
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.BookingPageResponse
// @Failure 400 {object} map[string]string
// @Router /staff/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	filters, ok := parseBookingFilters(c)
	if !ok {
		return
	}

	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}

	items, next, err := h.bookingQueries.List(c.Request.Context(), filters, cursor, parseLimit(c))
	if err != nil {
		if errors.Is(err, queries.ErrInvalidCursor) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid pagination cursor",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingPage(items, next))
}

// @Summary Get booking (staff)
// @Description Staff lookup of any booking, status history included
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /staff/bookings/{id} [get]
func (h *BookingHandler) GetBookingAsStaff(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Update booking status
// @Description Move a booking through its lifecycle (confirm, complete, no-show)
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.UpdateBookingStatusRequest true "Status request"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /staff/bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var req reqdto.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.bookingCommands.UpdateStatus(c.Request.Context(), id, req.Status, staffActor); err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
			})
		case errors.Is(err, commands.ErrIllegalStatusChange):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Illegal status transition",
			})
		case errors.Is(err, commands.ErrDomainValidation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Cancel booking (staff)
// @Description Staff cancellation, not subject to the customer window
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /staff/bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBookingAsStaff(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var req reqdto.CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	err := h.bookingCommands.CancelBooking(c.Request.Context(), id, "", req.Reason, staffActor)
	if err != nil {
		h.writeCancelError(c, err)
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

func (h *BookingHandler) writeCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Service not found",
		})
	case errors.Is(err, commands.ErrServiceUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Service is not bookable",
		})
	case errors.Is(err, commands.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid date or start time",
		})
	case errors.Is(err, commands.ErrPastSlot):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Requested slot is in the past",
		})
	case errors.Is(err, commands.ErrSlotNotOffered):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Requested start time is not offered on this date",
		})
	case errors.Is(err, commands.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Requested slot is no longer available",
		})
	case errors.Is(err, commands.ErrIdempotencyKeyReused):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Idempotency key was already used with a different request",
		})
	case errors.Is(err, commands.ErrIdempotencyInProgress):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Booking request is currently being processed",
		})
	case errors.Is(err, commands.ErrDomainValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Domain validation failed",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (h *BookingHandler) writeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queries.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, queries.ErrBookingAccess):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Email does not match this booking",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (h *BookingHandler) writeCancelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, commands.ErrBookingAccess):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Email does not match this booking",
		})
	case errors.Is(err, commands.ErrCancellationTooLate):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cancellation window has passed",
		})
	case errors.Is(err, commands.ErrBookingFinalized):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Booking is already finalized",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (h *BookingHandler) writeReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, commands.ErrBookingAccess):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Email does not match this booking",
		})
	case errors.Is(err, commands.ErrBookingFinalized):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Only completed bookings can be reviewed",
		})
	case errors.Is(err, commands.ErrDomainValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid review",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

func parseLimit(c *gin.Context) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return 0
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0
	}
	return limit
}

func parseBookingFilters(c *gin.Context) (queries.BookingFilters, bool) {
	var filters queries.BookingFilters

	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if email := c.Query("email"); email != "" {
		filters.Email = &email
	}
	for _, bound := range []struct {
		param string
		dst   **time.Time
	}{
		{"from", &filters.From},
		{"to", &filters.To},
	} {
		raw := c.Query(bound.param)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid " + bound.param + " date, expected YYYY-MM-DD",
			})
			return filters, false
		}
		*bound.dst = &t
	}

	return filters, true
}

func getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return uuid.Nil, errors.New("Idempotency-Key header is required")
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid idempotency key format")
	}

	return key, nil
}
