package handler

import (
	"errors"
	"net/http"

	"github.com/courtmix/mixing-service/internal/dto"
	"github.com/courtmix/mixing-service/internal/middleware"
	"github.com/courtmix/mixing-service/internal/repository"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const notificationPageSize = 50

type NotificationHandler struct {
	repo repository.NotificationRepository
}

func NewNotificationHandler(repo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
	g.PATCH("/notifications/:id/read", h.MarkRead)
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	notifications, err := h.repo.FindByUser(c.Request().Context(), middleware.UserID(c), notificationPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = dto.ToNotificationResponse(&n)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	err := h.repo.MarkRead(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
