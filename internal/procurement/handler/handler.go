package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/sse"
)

// Handlers is the procurement handler set.
type Handlers struct {
	Indent    *IndentHandler
	Approval  *ApprovalHandler
	Sourcing  *SourcingHandler
	Delivery  *DeliveryHandler
	Vendor    *VendorHandler
	Dashboard *DashboardHandler
	Events    *EventsHandler
}

// NewHandlers builds the handler set over the service set.
func NewHandlers(svcs *service.Services, hub *sse.Hub) *Handlers {
	return &Handlers{
		Indent:    NewIndentHandler(svcs.Indent),
		Approval:  NewApprovalHandler(svcs.Approval),
		Sourcing:  NewSourcingHandler(svcs.Sourcing),
		Delivery:  NewDeliveryHandler(svcs.Delivery),
		Vendor:    NewVendorHandler(svcs.Vendor),
		Dashboard: NewDashboardHandler(svcs.Dashboard),
		Events:    NewEventsHandler(hub),
	}
}

// === response helpers ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// fail maps a service error onto the response envelope by its kind.
func fail(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		Error(c, 40001, err.Error())
	case apperr.KindPermission:
		Error(c, 40301, err.Error())
	case apperr.KindNotFound:
		Error(c, 40401, err.Error())
	case apperr.KindState:
		Error(c, 40901, err.Error())
	case apperr.KindConflict:
		Error(c, 40902, err.Error())
	default:
		Error(c, 50000, err.Error())
	}
}

// GetActor reads the acting principal set by the auth middleware.
func GetActor(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if v, ok := c.Get("user_id"); ok {
		actor.UserID, _ = v.(string)
	}
	if v, ok := c.Get("user_name"); ok {
		actor.Name, _ = v.(string)
	}
	if v, ok := c.Get("role"); ok {
		actor.Role, _ = v.(string)
	}
	return actor
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func listOut(items interface{}, page, pageSize int, total int64) ListResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	}
}
