package handlers

import (
	"github.com/gin-gonic/gin"

	"doc-governance/helper"
	"doc-governance/models"
	"doc-governance/services"
)

type DocumentTypeHandler struct {
	docTypeService services.DocumentTypeService
	Helper         *helper.HTTPHelper
}

func NewDocumentTypeHandler(docTypeService services.DocumentTypeService, h *helper.HTTPHelper) *DocumentTypeHandler {
	return &DocumentTypeHandler{docTypeService: docTypeService, Helper: h}
}

func (h *DocumentTypeHandler) CreateDocumentType(c *gin.Context) {
	var req models.CreateDocumentTypeRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	docType, err := h.docTypeService.CreateDocumentType(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Document type created", docType)
}

func (h *DocumentTypeHandler) GetDocumentTypes(c *gin.Context) {
	docTypes, err := h.docTypeService.GetDocumentTypes(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Document types loaded", docTypes)
}

func (h *DocumentTypeHandler) GetDocumentType(c *gin.Context) {
	docType, err := h.docTypeService.GetDocumentType(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Document type loaded", docType)
}
