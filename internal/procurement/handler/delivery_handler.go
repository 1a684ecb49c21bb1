package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// DeliveryHandler serves receipt logging against purchase orders.
type DeliveryHandler struct {
	svc *service.DeliveryService
}

func NewDeliveryHandler(svc *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{svc: svc}
}

type logDeliveryRequest struct {
	Date     string `json:"date"` // YYYY-MM-DD, defaults to today
	Quantity int64  `json:"quantity"`
	Remarks  string `json:"remarks"`
}

// LogDelivery records one receipt against a purchase order.
// POST /api/v1/procurement/purchase-orders/:id/deliveries
func (h *DeliveryHandler) LogDelivery(c *gin.Context) {
	var req logDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			BadRequest(c, "invalid date, want YYYY-MM-DD: "+err.Error())
			return
		}
		date = parsed
	}

	rec, err := h.svc.LogDelivery(c.Request.Context(), c.Param("id"), GetActor(c), date, req.Quantity, req.Remarks)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, rec)
}

// GetDelivery returns the delivery record with its logs.
// GET /api/v1/procurement/purchase-orders/:id/deliveries
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, rec)
}
