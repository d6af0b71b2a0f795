package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcheque "github.com/propman/backend/internal/application/cheque"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

// PDCHandler handles post-dated cheque API endpoints
type PDCHandler struct {
	BaseHandler
	pdcService *appcheque.PDCService
}

// NewPDCHandler creates a new PDCHandler
func NewPDCHandler(pdcService *appcheque.PDCService) *PDCHandler {
	return &PDCHandler{pdcService: pdcService}
}

// Register registers a single post-dated cheque
// POST /api/v1/cheques
func (h *PDCHandler) Register(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Valid X-Tenant-ID header is required")
		return
	}

	var req appcheque.RegisterPDCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.pdcService.Register(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// RegisterBulk registers a batch of cheques atomically
// POST /api/v1/cheques/bulk
func (h *PDCHandler) RegisterBulk(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Valid X-Tenant-ID header is required")
		return
	}

	var req appcheque.BulkRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.pdcService.RegisterBulk(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List lists cheques with filtering and pagination. With an X-Tenant-ID
// header the page is scoped to that tenant; without one it spans all tenants.
// GET /api/v1/cheques
func (h *PDCHandler) List(c *gin.Context) {
	tenantID, err := getOptionalTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid X-Tenant-ID header")
		return
	}

	var filter appcheque.PDCListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.pdcService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID returns one cheque. The X-Tenant-ID header is optional; when set,
// cheques outside that tenant read as not found.
// GET /api/v1/cheques/:id
func (h *PDCHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cheque ID")
		return
	}
	tenantID, err := getOptionalTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid X-Tenant-ID header")
		return
	}

	resp, err := h.pdcService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetChain returns the replacement chain containing the cheque
// GET /api/v1/cheques/:id/chain
func (h *PDCHandler) GetChain(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	links, err := h.pdcService.GetChain(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, links)
}

// CheckDuplicate reports whether a cheque number is already registered
// GET /api/v1/cheques/check-duplicate?cheque_number=...
func (h *PDCHandler) CheckDuplicate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Valid X-Tenant-ID header is required")
		return
	}

	chequeNumber := strings.TrimSpace(c.Query("cheque_number"))
	exists, err := h.pdcService.CheckDuplicate(c.Request.Context(), tenantID, chequeNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"cheque_number": chequeNumber, "exists": exists})
}

// ListByInvoice lists the cheques linked to an invoice
// GET /api/v1/invoices/:id/cheques
func (h *PDCHandler) ListByInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.pdcService.ListByInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Deposit records handing the cheque to the bank
// POST /api/v1/cheques/:id/deposit
func (h *PDCHandler) Deposit(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	var req appcheque.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.pdcService.Deposit(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Clear records bank clearance and reconciles the linked invoice
// POST /api/v1/cheques/:id/clear
func (h *PDCHandler) Clear(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	var req appcheque.ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.pdcService.Clear(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Bounce records that the bank returned the cheque unpaid
// POST /api/v1/cheques/:id/bounce
func (h *PDCHandler) Bounce(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	var req appcheque.BounceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.pdcService.Bounce(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Replace registers a replacement for a bounced cheque
// POST /api/v1/cheques/:id/replace
func (h *PDCHandler) Replace(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	var req appcheque.ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.pdcService.Replace(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Withdraw takes the cheque out of circulation
// POST /api/v1/cheques/:id/withdraw
func (h *PDCHandler) Withdraw(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	var req appcheque.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.pdcService.Withdraw(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel voids a cheque that was never presented
// POST /api/v1/cheques/:id/cancel
func (h *PDCHandler) Cancel(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	resp, err := h.pdcService.Cancel(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers all cheque lifecycle routes
func (h *PDCHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cheques := rg.Group("/cheques")
	{
		cheques.POST("", h.Register)
		cheques.POST("/bulk", h.RegisterBulk)
		cheques.GET("", h.List)
		cheques.GET("/check-duplicate", h.CheckDuplicate)
		cheques.GET("/:id", h.GetByID)
		cheques.GET("/:id/chain", h.GetChain)
		cheques.POST("/:id/deposit", h.Deposit)
		cheques.POST("/:id/clear", h.Clear)
		cheques.POST("/:id/bounce", h.Bounce)
		cheques.POST("/:id/replace", h.Replace)
		cheques.POST("/:id/withdraw", h.Withdraw)
		cheques.POST("/:id/cancel", h.Cancel)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.GET("/:id/cheques", h.ListByInvoice)
	}
}

// tenantAndID extracts the tenant and the :id path parameter, writing the
// error response itself when either is missing
func (h *PDCHandler) tenantAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Valid X-Tenant-ID header is required")
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cheque ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, id, true
}
