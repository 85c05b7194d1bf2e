package handlers

import (
	"github.com/gin-gonic/gin"

	"doc-governance/helper"
	"doc-governance/middleware"
	"doc-governance/models"
	"doc-governance/services"
)

type ReviewHandler struct {
	reviewService services.ReviewService
	Helper        *helper.HTTPHelper
}

func NewReviewHandler(reviewService services.ReviewService, h *helper.HTTPHelper) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, Helper: h}
}

func (h *ReviewHandler) Submit(c *gin.Context) {
	versionID, ok := h.Helper.ParamUint(c, "version_id")
	if !ok {
		return
	}
	result, err := h.reviewService.Submit(c.Request.Context(), versionID, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Version submitted for review", result)
}

func (h *ReviewHandler) Approve(c *gin.Context) {
	versionID, ok := h.Helper.ParamUint(c, "version_id")
	if !ok {
		return
	}
	var req models.ApproveRequest
	if !h.Helper.BindOptionalJSON(c, &req) {
		return
	}

	result, err := h.reviewService.Approve(c.Request.Context(), versionID, middleware.UserID(c), req.Comment)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	message := "Approval recorded"
	if result.Completed {
		message = "Version approved"
	}
	h.Helper.SendSuccess(c, message, result)
}

func (h *ReviewHandler) Reject(c *gin.Context) {
	versionID, ok := h.Helper.ParamUint(c, "version_id")
	if !ok {
		return
	}
	var req models.RejectRequest
	if !h.Helper.BindOptionalJSON(c, &req) {
		return
	}

	result, err := h.reviewService.Reject(c.Request.Context(), versionID, middleware.UserID(c), req.Comment)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Version rejected", result)
}

func (h *ReviewHandler) AddComment(c *gin.Context) {
	versionID, ok := h.Helper.ParamUint(c, "version_id")
	if !ok {
		return
	}
	var req models.CommentRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	comment, err := h.reviewService.AddComment(c.Request.Context(), versionID, middleware.UserID(c), req.Text, req.ReviewerRole)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Comment added", comment)
}

func (h *ReviewHandler) GetComments(c *gin.Context) {
	versionID, ok := h.Helper.ParamUint(c, "version_id")
	if !ok {
		return
	}
	comments, err := h.reviewService.GetComments(c.Request.Context(), versionID, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Comments loaded", comments)
}
