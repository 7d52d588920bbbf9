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

type EventHandler struct {
	svc        service.EventService
	bookingSvc service.BookingService
}

func NewEventHandler(svc service.EventService, bookingSvc service.BookingService) *EventHandler {
	return &EventHandler{svc: svc, bookingSvc: bookingSvc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/events", h.CreateEvent)
	g.GET("/events", h.ListEvents)
	g.GET("/events/:id", h.GetEvent)
	g.GET("/events/:id/status", h.GetEventStatus)
	g.PATCH("/events/:id/status", h.UpdateEventStatus)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Title == "" || req.Capacity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "title and capacity (>0) are required")
	}
	if req.PeoplePerBooking <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "people_per_booking must be at least 1")
	}
	if req.ReserveSpots < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "reserve_spots must not be negative")
	}

	event := &models.Event{
		Title:            req.Title,
		OrganizerID:      middleware.UserID(c),
		Capacity:         req.Capacity,
		ReserveSpots:     req.ReserveSpots,
		PeoplePerBooking: req.PeoplePerBooking,
		Rules:            req.Rules,
		ReleaseAt:        req.ReleaseAt,
	}

	if err := h.svc.CreateEvent(c.Request().Context(), event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := h.svc.GetEvent(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.EventResponse, len(events))
	for i, e := range events {
		resp[i] = dto.ToEventResponse(&e)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) UpdateEventStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	var req dto.UpdateEventStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	event, err := h.svc.UpdateStatus(c.Request().Context(), uint(id), middleware.UserID(c), models.EventStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// GetEventStatus reports the derived counts the event page renders. They
// are recomputed from the booking set on every call, never cached.
func (h *EventHandler) GetEventStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := h.svc.GetEvent(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	ctx := c.Request().Context()
	attending, err := h.bookingSvc.AttendingCount(ctx, event.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	waiting, err := h.bookingSvc.WaitingCount(ctx, event.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	available, err := h.bookingSvc.AvailableSpots(ctx, event.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.EventStatusResponse{
		ID:               event.ID,
		Title:            event.Title,
		Status:           event.Status,
		Capacity:         event.Capacity,
		ReserveSpots:     event.ReserveSpots,
		PeoplePerBooking: event.PeoplePerBooking,
		Attending:        attending,
		Waiting:          waiting,
		AvailableSpots:   available,
	})
}
