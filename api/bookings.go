package api

import (
	"net/http"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/Domenick1991/expertbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	errs    *ErrorWriter
}

type createBookingRequest struct {
	Expert   string `json:"expert"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	Notes    string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func NewBookingHandler(service booking.BookingUseCase, errs *ErrorWriter) *BookingHandler {
	return &BookingHandler{service: service, errs: errs}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.listByEmail)
	router.PATCH("/:id/status", h.updateStatus)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.badRequest(c, "Invalid request body")
		return
	}

	b, err := h.service.Reserve(c.Request.Context(), booking.ReserveInput{
		ExpertID: req.Expert,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
		Notes:    req.Notes,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": b})
}

func (h *BookingHandler) listByEmail(c *gin.Context) {
	bookings, err := h.service.ListByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(bookings), "data": bookings})
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.badRequest(c, "Invalid request body")
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": b})
}
