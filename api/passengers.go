package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/busalert/internal/domain"
	"github.com/Domenick1991/busalert/internal/service/passengers"
	"github.com/gin-gonic/gin"
)

type PassengerHandler struct {
	service passengers.PassengerUseCase
}

type passengerRequest struct {
	PassengerID     string   `json:"passenger_id" binding:"required"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone" binding:"required"`
	PickupLatitude  *float64 `json:"pickup_latitude" binding:"omitempty,gte=-90,lte=90"`
	PickupLongitude *float64 `json:"pickup_longitude" binding:"omitempty,gte=-180,lte=180"`
	PickupAddress   string   `json:"pickup_address"`
}

type createReservationRequest struct {
	BusID      string             `json:"bus_id" binding:"required"`
	PNRID      string             `json:"pnr_id" binding:"required"`
	Passengers []passengerRequest `json:"passengers" binding:"required,min=1,dive"`
}

type passengerResponse struct {
	PassengerID        string   `json:"passenger_id"`
	PNRID              string   `json:"pnr_id"`
	Name               string   `json:"name"`
	Phone              string   `json:"phone"`
	PickupLatitude     *float64 `json:"pickup_latitude,omitempty"`
	PickupLongitude    *float64 `json:"pickup_longitude,omitempty"`
	PickupAddress      string   `json:"pickup_address,omitempty"`
	Notified           bool     `json:"notified"`
	NotificationSentAt string   `json:"notification_sent_at,omitempty"`
	CallMadeAt         string   `json:"call_made_at,omitempty"`
}

type reservationResponse struct {
	BusID      string              `json:"bus_id"`
	PNRID      string              `json:"pnr_id"`
	Passengers []passengerResponse `json:"passengers"`
}

func NewPassengerHandler(service passengers.PassengerUseCase) *PassengerHandler {
	return &PassengerHandler{service: service}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.GET("/buses/:busId/passengers", h.listByBus)
	router.POST("/reservations", h.createReservation)
}

// listByBus godoc
// @Summary  List the passengers booked on a bus
// @Tags     passengers
// @Produce  json
// @Param    busId path string true "Bus id"
// @Success  200 {array}  passengerResponse
// @Failure  500 {object} errorResponse
// @Router   /buses/{busId}/passengers [get]
func (h *PassengerHandler) listByBus(c *gin.Context) {
	list, err := h.service.ByBus(c.Request.Context(), c.Param("busId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Status: "error", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toPassengerResponses(list))
}

// createReservation godoc
// @Summary  Register a reservation and its passengers
// @Tags     passengers
// @Accept   json
// @Produce  json
// @Param    reservation body createReservationRequest true "Reservation"
// @Success  201 {object} reservationResponse
// @Failure  400 {object} errorResponse
// @Failure  500 {object} errorResponse
// @Router   /reservations [post]
func (h *PassengerHandler) createReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	input := passengers.RegisterInput{BusID: req.BusID, ReservationID: req.PNRID}
	for _, p := range req.Passengers {
		input.Passengers = append(input.Passengers, domain.Passenger{
			PassengerID:     p.PassengerID,
			Name:            p.Name,
			Phone:           p.Phone,
			PickupLatitude:  p.PickupLatitude,
			PickupLongitude: p.PickupLongitude,
			PickupAddress:   p.PickupAddress,
		})
	}

	reservation, saved, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		status := http.StatusInternalServerError
		if domain.IsValidation(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, reservationResponse{
		BusID:      reservation.BusID,
		PNRID:      reservation.ReservationID,
		Passengers: toPassengerResponses(saved),
	})
}

func toPassengerResponses(list []domain.Passenger) []passengerResponse {
	out := make([]passengerResponse, 0, len(list))
	for _, p := range list {
		out = append(out, passengerResponse{
			PassengerID:        p.PassengerID,
			PNRID:              p.ReservationID,
			Name:               p.Name,
			Phone:              p.Phone,
			PickupLatitude:     p.PickupLatitude,
			PickupLongitude:    p.PickupLongitude,
			PickupAddress:      p.PickupAddress,
			Notified:           p.Notified,
			NotificationSentAt: formatTime(p.NotificationSentAt),
			CallMadeAt:         formatTime(p.CallMadeAt),
		})
	}
	return out
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
