package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// SourcingHandler serves the post-approval flow: enquiries, quotations,
// comparison, vendor finalization and PO issuance.
type SourcingHandler struct {
	svc *service.SourcingService
}

func NewSourcingHandler(svc *service.SourcingService) *SourcingHandler {
	return &SourcingHandler{svc: svc}
}

// GetSourcing
// GET /api/v1/procurement/indents/:id/sourcing
func (h *SourcingHandler) GetSourcing(c *gin.Context) {
	src, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, src)
}

type sendEnquiryRequest struct {
	VendorIDs []string             `json:"vendor_ids" binding:"required"`
	Terms     service.EnquiryTerms `json:"terms"`
}

// SendEnquiry invites vendors to quote for an approved indent.
// POST /api/v1/procurement/indents/:id/enquiry
func (h *SourcingHandler) SendEnquiry(c *gin.Context) {
	var req sendEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	enq, err := h.svc.SendEnquiry(c.Request.Context(), c.Param("id"), GetActor(c), req.VendorIDs, req.Terms)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, enq)
}

type recordQuotationRequest struct {
	VendorID     string                       `json:"vendor_id" binding:"required"`
	Items        []service.QuotationItemInput `json:"items" binding:"required"`
	DeliveryDays int                          `json:"delivery_days"`
	Terms        service.QuotationTerms       `json:"terms"`
}

// RecordQuotation stores a vendor quotation against an enquiry.
// POST /api/v1/procurement/enquiries/:id/quotations
func (h *SourcingHandler) RecordQuotation(c *gin.Context) {
	var req recordQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	q, err := h.svc.RecordQuotation(c.Request.Context(), c.Param("id"), req.VendorID, req.Items, req.DeliveryDays, req.Terms)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, q)
}

// CompareQuotations ranks the latest quotation per vendor.
// GET /api/v1/procurement/enquiries/:id/comparison
func (h *SourcingHandler) CompareQuotations(c *gin.Context) {
	rows, err := h.svc.CompareQuotations(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, rows)
}

// ExportComparison streams the comparison sheet as an xlsx download.
// GET /api/v1/procurement/enquiries/:id/comparison/export
func (h *SourcingHandler) ExportComparison(c *gin.Context) {
	f, filename, err := h.svc.ExportComparison(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		Error(c, 50000, "failed to write export: "+err.Error())
	}
}

type finalizeVendorRequest struct {
	VendorID string `json:"vendor_id" binding:"required"`
}

// FinalizeVendor selects the winning vendor for an indent.
// POST /api/v1/procurement/indents/:id/finalize-vendor
func (h *SourcingHandler) FinalizeVendor(c *gin.Context) {
	var req finalizeVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	src, err := h.svc.FinalizeVendor(c.Request.Context(), c.Param("id"), GetActor(c), req.VendorID)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, src)
}

type issuePORequest struct {
	GSTPercent float64 `json:"gst_percent"`
}

// IssuePurchaseOrder issues the PO for a finalized indent. Safe to repeat:
// a second call returns the already-issued order.
// POST /api/v1/procurement/indents/:id/purchase-order
func (h *SourcingHandler) IssuePurchaseOrder(c *gin.Context) {
	var req issuePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	po, err := h.svc.IssuePurchaseOrder(c.Request.Context(), c.Param("id"), GetActor(c), req.GSTPercent)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, po)
}

// GetPurchaseOrder
// GET /api/v1/procurement/indents/:id/purchase-order
func (h *SourcingHandler) GetPurchaseOrder(c *gin.Context) {
	po, err := h.svc.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, po)
}
