package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// VendorHandler serves the vendor directory.
type VendorHandler struct {
	svc *service.VendorService
}

func NewVendorHandler(svc *service.VendorService) *VendorHandler {
	return &VendorHandler{svc: svc}
}

// RegisterVendor
// POST /api/v1/procurement/vendors
func (h *VendorHandler) RegisterVendor(c *gin.Context) {
	var req service.RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	v, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, v)
}

// UpdateVendor
// PUT /api/v1/procurement/vendors/:id
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	var req service.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, v)
}

// DeactivateVendor
// POST /api/v1/procurement/vendors/:id/deactivate
func (h *VendorHandler) DeactivateVendor(c *gin.Context) {
	v, err := h.svc.Deactivate(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, v)
}

// GetVendor
// GET /api/v1/procurement/vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, v)
}

// ListVendors
// GET /api/v1/procurement/vendors?category=xxx&status=xxx
func (h *VendorHandler) ListVendors(c *gin.Context) {
	page, pageSize := GetPagination(c)
	f := service.VendorFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}

	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, listOut(items, page, pageSize, total))
}
