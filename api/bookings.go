package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID int64 `json:"flight_id"`
	Weight   int   `json:"weight"`
}

type bookingResponse struct {
	ID            int64  `json:"id"`
	Token         string `json:"token"`
	UserID        int64  `json:"user_id"`
	FlightID      int64  `json:"flight_id"`
	Weight        int    `json:"weight"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at"`
	Rate          int64  `json:"rate"`
	Total         int64  `json:"total"`
	PaymentStatus string `json:"payment_status"`
}

type sweepResponse struct {
	Expired  int               `json:"expired"`
	Bookings []bookingResponse `json:"bookings"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.POST("/sweep", h.sweep)
	router.GET("/by-token/:token", h.getByToken)
	router.GET("/:id", h.get)
	router.POST("/:id/confirm", h.confirm)
	router.POST("/:id/cancel", h.cancel)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		badRequest(c, "X-User-ID", "a positive user id header is required")
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID: req.FlightID,
		UserID:   userID,
		Weight:   req.Weight,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) getByToken(c *gin.Context) {
	b, err := h.service.GetBookingByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	var filter domain.BookingFilter
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "user_id", "must be an integer")
			return
		}
		filter.UserID = id
	}
	if raw := c.Query("flight_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "flight_id", "must be an integer")
			return
		}
		filter.FlightID = id
	}
	filter.Status = domain.BookingStatus(c.Query("status"))

	list, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.ConfirmBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) sweep(c *gin.Context) {
	expired, err := h.service.SweepExpired(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(expired))
	for i := range expired {
		out = append(out, toBookingResponse(&expired[i]))
	}
	c.JSON(http.StatusOK, sweepResponse{Expired: len(out), Bookings: out})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id", "invalid id")
		return 0, false
	}
	return id, true
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		Token:         b.Token,
		UserID:        b.UserID,
		FlightID:      b.FlightID,
		Weight:        b.Weight,
		Status:        string(b.Status),
		ExpiresAt:     b.ExpiresAt.UTC().Format(time.RFC3339),
		Rate:          b.Rate,
		Total:         b.Total,
		PaymentStatus: string(b.PaymentStatus),
	}
}
