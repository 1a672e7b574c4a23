package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voyagent/voyagent/internal/auth"
	"github.com/voyagent/voyagent/internal/repository"
	"github.com/voyagent/voyagent/internal/service/reservation"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id", h.get)
}

func (h *ReservationHandler) get(c *gin.Context) {
	res, booking, err := h.service.GetWithBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.UserID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "reservation belongs to another user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res, "booking": booking})
}
