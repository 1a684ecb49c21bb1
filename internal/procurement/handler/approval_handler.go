package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// ApprovalHandler serves the approval pipeline actions. All three actions go
// through the command dispatcher so the role and state checks live in one
// place.
type ApprovalHandler struct {
	svc *service.ApprovalService
}

func NewApprovalHandler(svc *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{svc: svc}
}

// Approve advances an indent past the caller's stage.
// POST /api/v1/procurement/indents/:id/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.dispatch(c, service.Command{
		Kind:     service.CmdApprove,
		IndentID: c.Param("id"),
	})
}

type rejectRequest struct {
	Remarks string `json:"remarks"`
}

// Reject terminates an indent with mandatory remarks.
// POST /api/v1/procurement/indents/:id/reject
func (h *ApprovalHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.dispatch(c, service.Command{
		Kind:     service.CmdReject,
		IndentID: c.Param("id"),
		Remarks:  req.Remarks,
	})
}

type editItemRequest struct {
	ItemIndex   int   `json:"item_index"`
	NewQuantity int64 `json:"new_quantity"`
}

// EditItemQuantity adjusts one line's quantity during HOD review.
// POST /api/v1/procurement/indents/:id/items/quantity
func (h *ApprovalHandler) EditItemQuantity(c *gin.Context) {
	var req editItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.dispatch(c, service.Command{
		Kind:        service.CmdEditItemQuantity,
		IndentID:    c.Param("id"),
		ItemIndex:   req.ItemIndex,
		NewQuantity: req.NewQuantity,
	})
}

func (h *ApprovalHandler) dispatch(c *gin.Context, cmd service.Command) {
	cmd.Actor = GetActor(c)
	res, err := h.svc.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, res.Indent)
}
