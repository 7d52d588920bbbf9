package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtmix/mixing-service/internal/dto"
	"github.com/courtmix/mixing-service/internal/middleware"
	"github.com/courtmix/mixing-service/internal/models"
	"github.com/courtmix/mixing-service/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/events/:id/bookings", h.PlaceBooking)
	g.GET("/events/:id/bookings", h.ListBookings)
	g.GET("/bookings/:id", h.GetBooking)
	g.DELETE("/bookings/:id", h.CancelBooking)
}

func (h *BookingHandler) PlaceBooking(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.ParticipantNames) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "participant_names is required")
	}

	booking, err := h.svc.PlaceBooking(c.Request().Context(), uint(eventID), middleware.UserID(c), req.ParticipantNames, req.IdempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventNotActive):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrAlreadyBooked):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, promoted, err := h.svc.CancelBooking(c.Request().Context(), uint(bookingID), middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAlreadyCancelled):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	resp := dto.CancelBookingResponse{Booking: dto.ToBookingResponse(booking)}
	for i := range promoted {
		resp.Promoted = append(resp.Promoted, dto.ToBookingResponse(&promoted[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	var status *models.BookingStatus
	if s := c.QueryParam("status"); s != "" {
		bs := models.BookingStatus(s)
		status = &bs
	}

	bookings, err := h.svc.ListBookings(c.Request().Context(), uint(eventID), status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}

	return c.JSON(http.StatusOK, resp)
}
