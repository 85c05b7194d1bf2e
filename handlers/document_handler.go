package handlers

import (
	"github.com/gin-gonic/gin"

	"doc-governance/helper"
	"doc-governance/middleware"
	"doc-governance/models"
	"doc-governance/services"
)

type DocumentHandler struct {
	documentService services.DocumentService
	Helper          *helper.HTTPHelper
}

func NewDocumentHandler(documentService services.DocumentService, h *helper.HTTPHelper) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, Helper: h}
}

func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	projectID, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	var req models.CreateDocumentRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	document, err := h.documentService.CreateDocument(c.Request.Context(), projectID, req, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Document created", document)
}

func (h *DocumentHandler) GetDocuments(c *gin.Context) {
	projectID, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	var params models.DocumentListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}

	documents, err := h.documentService.GetDocuments(c.Request.Context(), projectID, params, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Documents loaded", documents)
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	document, err := h.documentService.GetDocument(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Document loaded", document)
}

func (h *DocumentHandler) CreateVersion(c *gin.Context) {
	id, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	var req models.CreateVersionRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	version, err := h.documentService.CreateVersion(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Version created", version)
}

func (h *DocumentHandler) GetVersions(c *gin.Context) {
	id, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	versions, err := h.documentService.GetVersions(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Versions loaded", versions)
}

func (h *DocumentHandler) GetVersion(c *gin.Context) {
	versionID, ok := h.Helper.ParamUint(c, "version_id")
	if !ok {
		return
	}
	version, err := h.documentService.GetVersion(c.Request.Context(), versionID, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Version loaded", version)
}

func (h *DocumentHandler) UpdateVersion(c *gin.Context) {
	versionID, ok := h.Helper.ParamUint(c, "version_id")
	if !ok {
		return
	}
	var req models.UpdateVersionRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	version, err := h.documentService.UpdateVersionContent(c.Request.Context(), versionID, req, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Version updated", version)
}
