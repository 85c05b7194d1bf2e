package handlers

import (
	"github.com/gin-gonic/gin"

	"doc-governance/helper"
	"doc-governance/middleware"
	"doc-governance/models"
	"doc-governance/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
	Helper         *helper.HTTPHelper
}

func NewProjectHandler(projectService services.ProjectService, h *helper.HTTPHelper) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, Helper: h}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Project created", project)
}

func (h *ProjectHandler) GetProjects(c *gin.Context) {
	projects, err := h.projectService.GetProjects(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Projects loaded", projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	project, err := h.projectService.GetProject(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Project loaded", project)
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	id, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	var req models.AddMemberRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	member, err := h.projectService.AddMember(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Member added", member)
}

func (h *ProjectHandler) GetMembers(c *gin.Context) {
	id, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	members, err := h.projectService.GetMembers(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Members loaded", members)
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	id, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.Helper.ParamUint(c, "member_id")
	if !ok {
		return
	}
	if err := h.projectService.RemoveMember(c.Request.Context(), id, memberID, middleware.UserID(c)); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Member removed", h.Helper.EmptyJsonMap())
}
