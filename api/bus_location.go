package api

import (
	"io"
	"log"
	"net/http"

	"github.com/Domenick1991/busalert/config"
	"github.com/Domenick1991/busalert/internal/feed"
	"github.com/Domenick1991/busalert/internal/service/approach"
	"github.com/gin-gonic/gin"
)

const maxLocationBody = 1 << 20

type BusLocationHandler struct {
	pipeline    approach.PipelineUseCase
	serviceName string
}

type locationResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	BusID             string `json:"busId,omitempty"`
	NotificationsSent int    `json:"notificationsSent"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func NewBusLocationHandler(pipeline approach.PipelineUseCase, serviceName string) *BusLocationHandler {
	if serviceName == "" {
		serviceName = config.DefaultServiceName
	}
	return &BusLocationHandler{pipeline: pipeline, serviceName: serviceName}
}

func (h *BusLocationHandler) Register(router *gin.RouterGroup) {
	router.POST("/update", h.update)
	router.GET("/health", h.health)
}

// update godoc
// @Summary  Report a bus position
// @Tags     bus-location
// @Accept   json
// @Produce  json
// @Param    event body domain.LocationEvent true "Bus position"
// @Success  200 {object} locationResponse
// @Failure  400 {object} errorResponse
// @Failure  500 {object} errorResponse
// @Router   /bus-location/update [post]
func (h *BusLocationHandler) update(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLocationBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	event, err := feed.DecodeJSON(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	sent, err := h.pipeline.Handle(c.Request.Context(), event)
	if err != nil {
		log.Printf("process location failed request_id=%s bus_id=%s: %v", RequestIDFrom(c), event.BusID, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, locationResponse{
		Status:            "success",
		Message:           "Bus location processed successfully",
		BusID:             event.BusID,
		NotificationsSent: sent,
	})
}

// health godoc
// @Summary  Liveness probe
// @Tags     bus-location
// @Produce  json
// @Success  200 {object} healthResponse
// @Router   /bus-location/health [get]
func (h *BusLocationHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "UP", Service: h.serviceName})
}
