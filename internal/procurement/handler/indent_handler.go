package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// IndentHandler serves indent creation, submission and lookup.
type IndentHandler struct {
	svc *service.IndentService
}

func NewIndentHandler(svc *service.IndentService) *IndentHandler {
	return &IndentHandler{svc: svc}
}

// CreateIndent creates a draft indent.
// POST /api/v1/procurement/indents
func (h *IndentHandler) CreateIndent(c *gin.Context) {
	var req service.CreateIndentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ind, err := h.svc.Create(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, ind)
}

// SubmitIndent moves a draft into the first approval stage.
// POST /api/v1/procurement/indents/:id/submit
func (h *IndentHandler) SubmitIndent(c *gin.Context) {
	ind, err := h.svc.Submit(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, ind)
}

// GetIndent
// GET /api/v1/procurement/indents/:id
func (h *IndentHandler) GetIndent(c *gin.Context) {
	ind, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, ind)
}

// ListIndents
// GET /api/v1/procurement/indents?status=xxx&department=xxx
func (h *IndentHandler) ListIndents(c *gin.Context) {
	page, pageSize := GetPagination(c)
	f := service.IndentFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		Page:       page,
		PageSize:   pageSize,
	}

	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, listOut(items, page, pageSize, total))
}

// GetIndentActivity returns the audit trail of one indent.
// GET /api/v1/procurement/indents/:id/activity
func (h *IndentHandler) GetIndentActivity(c *gin.Context) {
	logs, err := h.svc.Activity(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, logs)
}
