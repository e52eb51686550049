package api

import (
	"errors"
	"io"
	"net/http"

	reqdto "salon-booking-api/internal/handler/dto/request"
	resdto "salon-booking-api/internal/handler/dto/response"
	"salon-booking-api/internal/handler/httperr"
	"salon-booking-api/internal/usecase/commands"
	"salon-booking-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Stripe caps webhook payloads well below this; the limit only guards
// against hostile bodies.
const maxWebhookBodyBytes = 1 << 20

type PaymentHandler struct {
	paymentCommands commands.PaymentCommands
	paymentQueries  queries.PaymentQueries
}

func NewPaymentHandler(paymentCommands commands.PaymentCommands, paymentQueries queries.PaymentQueries) *PaymentHandler {
	return &PaymentHandler{
		paymentCommands: paymentCommands,
		paymentQueries:  paymentQueries,
	}
}

// @Summary Create payment intent
// @Description Start (or resume) checkout for a pending booking
// @Tags payments
// @Accept json
// @Produce json
// @Param request body reqdto.CreatePaymentIntentRequest true "Intent request"
// @Success 200 {object} resdto.PaymentIntentResponse
// @Failure 400 {object} httperr.Envelope
// @Failure 404 {object} httperr.Envelope
// @Failure 409 {object} httperr.Envelope
// @Failure 502 {object} httperr.Envelope
// @Router /payments/intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req reqdto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err, "Invalid request format")
		return
	}

	result, err := h.paymentCommands.CreateIntent(c.Request.Context(), req.BookingID, req.Email, req.AmountCents, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotFound):
			httperr.Abort(c, http.StatusNotFound, err, "Booking not found")
		case errors.Is(err, commands.ErrBookingAccess):
			httperr.Abort(c, http.StatusForbidden, err, "Email does not match this booking")
		case errors.Is(err, commands.ErrAmountMismatch):
			httperr.Abort(c, http.StatusBadRequest, err, "Amount does not match the booking total")
		case errors.Is(err, commands.ErrBookingNotPayable):
			httperr.Abort(c, http.StatusConflict, err, "Booking is not awaiting payment")
		case errors.Is(err, commands.ErrProviderFailure):
			httperr.Abort(c, http.StatusBadGateway, err, "Payment provider is unavailable")
		default:
			httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.PaymentIntentResponse{
		PaymentID:    result.PaymentID,
		ProviderRef:  result.ProviderRef,
		ClientSecret: result.ClientSecret,
		AmountCents:  result.AmountCents,
		Currency:     result.Currency,
	})
}

// @Summary Confirm payment
// @Description Client-driven settlement: fetch the intent state and apply it
// @Tags payments
// @Accept json
// @Produce json
// @Param request body reqdto.ConfirmPaymentRequest true "Confirmation request"
// @Success 200 {object} resdto.PaymentResponse
// @Failure 400 {object} httperr.Envelope
// @Failure 404 {object} httperr.Envelope
// @Failure 409 {object} httperr.Envelope
// @Failure 502 {object} httperr.Envelope
// @Router /payments/confirm [post]
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req reqdto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err, "Invalid request format")
		return
	}

	view, err := h.paymentCommands.ConfirmPayment(c.Request.Context(), req.ProviderRef)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrPaymentNotFound):
			httperr.Abort(c, http.StatusNotFound, err, "Payment not found")
		case errors.Is(err, commands.ErrPaymentNotSettled):
			httperr.Abort(c, http.StatusConflict, err, "Payment has not settled yet")
		case errors.Is(err, commands.ErrProviderFailure):
			httperr.Abort(c, http.StatusBadGateway, err, "Payment provider is unavailable")
		default:
			httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromPaymentView(view))
}

// @Summary Payment webhook
// @Description Signed provider notifications for settlement outcomes
// @Tags payments
// @Accept json
// @Success 200 "Acknowledged"
// @Failure 400 {object} httperr.Envelope
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		httperr.Abort(c, http.StatusBadRequest, err, "Failed to read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	if err := h.paymentCommands.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, commands.ErrWebhookVerification) {
			httperr.Abort(c, http.StatusBadRequest, err, "Invalid webhook signature")
			return
		}
		// Non-2xx makes the provider retry, which is what we want for
		// transient failures.
		httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error")
		return
	}

	c.Status(http.StatusOK)
}

// @Summary List payments
// @Description Staff payment history, newest first
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.PaymentPageResponse
// @Failure 400 {object} httperr.Envelope
// @Router /staff/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}

	items, next, err := h.paymentQueries.List(c.Request.Context(), cursor, parseLimit(c))
	if err != nil {
		if errors.Is(err, queries.ErrInvalidCursor) {
			httperr.Abort(c, http.StatusBadRequest, err, "Invalid pagination cursor")
			return
		}
		httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, resdto.FromPaymentPage(items, next))
}

// @Summary Get payment
// @Description Staff lookup of one payment with its refunds
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} resdto.PaymentResponse
// @Failure 400 {object} httperr.Envelope
// @Failure 404 {object} httperr.Envelope
// @Router /staff/payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	view, err := h.paymentQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrPaymentNotFound) {
			httperr.Abort(c, http.StatusNotFound, err, "Payment not found")
			return
		}
		httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, resdto.FromPaymentView(view))
}

// @Summary List booking payments
// @Description All payment attempts for one booking
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {array} resdto.PaymentResponse
// @Failure 400 {object} httperr.Envelope
// @Router /staff/bookings/{id}/payments [get]
func (h *PaymentHandler) ListBookingPayments(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}

	views, err := h.paymentQueries.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error")
		return
	}

	response := make([]*resdto.PaymentResponse, len(views))
	for i, v := range views {
		response[i] = resdto.FromPaymentView(v)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Refund payment
// @Description Refund a settled payment, fully or partially
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param request body reqdto.RefundPaymentRequest true "Refund request"
// @Success 200 {object} resdto.PaymentResponse
// @Failure 400 {object} httperr.Envelope
// @Failure 404 {object} httperr.Envelope
// @Failure 409 {object} httperr.Envelope
// @Failure 502 {object} httperr.Envelope
// @Router /staff/payments/{id}/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	var req reqdto.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, http.StatusBadRequest, err, "Invalid request format")
		return
	}

	view, err := h.paymentCommands.Refund(c.Request.Context(), id, req.AmountCents, req.Reason, staffActor)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrPaymentNotFound):
			httperr.Abort(c, http.StatusNotFound, err, "Payment not found")
		case errors.Is(err, commands.ErrPaymentNotRefundable):
			httperr.Abort(c, http.StatusConflict, err, "Payment cannot be refunded")
		case errors.Is(err, commands.ErrRefundTooLarge):
			httperr.Abort(c, http.StatusBadRequest, err, "Refund amount exceeds the remaining balance")
		case errors.Is(err, commands.ErrProviderFailure):
			httperr.Abort(c, http.StatusBadGateway, err, "Payment provider is unavailable")
		default:
			httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromPaymentView(view))
}

func parsePaymentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.Abort(c, http.StatusBadRequest, err, "Invalid payment ID format")
		return uuid.Nil, false
	}
	return id, true
}
