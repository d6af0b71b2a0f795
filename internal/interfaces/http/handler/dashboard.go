package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcheque "github.com/propman/backend/internal/application/cheque"
)

// DashboardHandler handles dashboard API endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *appcheque.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *appcheque.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary returns the cheque dashboard snapshot. Without an X-Tenant-ID
// header the snapshot covers all tenants.
// GET /api/v1/dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	tenantID, err := getOptionalTenantID(c)
	if err != nil {
		h.BadRequest(c, "X-Tenant-ID header must be a valid UUID")
		return
	}

	resp, err := h.dashboardService.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// TenantHistory returns one tenant's cheque track record
// GET /api/v1/dashboard/tenants/:id/history
func (h *DashboardHandler) TenantHistory(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	resp, err := h.dashboardService.TenantHistory(c.Request.Context(), tenantID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// WithdrawalHistory pages through withdrawn cheques
// GET /api/v1/dashboard/withdrawals
func (h *DashboardHandler) WithdrawalHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.dashboardService.WithdrawalHistory(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Banks lists the bank names seen on registered cheques
// GET /api/v1/dashboard/banks
func (h *DashboardHandler) Banks(c *gin.Context) {
	tenantID, err := getOptionalTenantID(c)
	if err != nil {
		h.BadRequest(c, "X-Tenant-ID header must be a valid UUID")
		return
	}

	banks, err := h.dashboardService.Banks(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"banks": banks})
}

// Holder returns the configured cheque holder company name
// GET /api/v1/dashboard/holder
func (h *DashboardHandler) Holder(c *gin.Context) {
	h.Success(c, gin.H{"holder_name": h.dashboardService.HolderName()})
}

// RegisterRoutes registers all dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/summary", h.Summary)
		dashboard.GET("/banks", h.Banks)
		dashboard.GET("/holder", h.Holder)
		dashboard.GET("/withdrawals", h.WithdrawalHistory)
		dashboard.GET("/tenants/:id/history", h.TenantHistory)
	}
}
