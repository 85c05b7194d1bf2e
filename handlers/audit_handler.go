package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"doc-governance/helper"
	"doc-governance/middleware"
	"doc-governance/models"
	"doc-governance/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AuditHandler struct {
	auditService services.AuditService
	Helper       *helper.HTTPHelper
}

func NewAuditHandler(auditService services.AuditService, h *helper.HTTPHelper) *AuditHandler {
	return &AuditHandler{auditService: auditService, Helper: h}
}

func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	projectID, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	var params models.AuditListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}

	entries, total, err := h.auditService.GetAuditLogs(c.Request.Context(), projectID, params, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Audit logs loaded", map[string]interface{}{
		"entries":    entries,
		"pagination": h.Helper.GeneratePaging(c, 0, 0, params.Limit, params.Page, int(total)),
	})
}

func (h *AuditHandler) ExportAuditLogs(c *gin.Context) {
	projectID, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	raw, err := h.auditService.ExportXLSX(c.Request.Context(), projectID, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("audit-project-%d-%s.xlsx", projectID, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, raw)
}
