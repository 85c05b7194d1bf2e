package handlers

import (
	"github.com/gin-gonic/gin"

	"doc-governance/helper"
	"doc-governance/middleware"
	"doc-governance/models"
	"doc-governance/services"
)

type TaskHandler struct {
	taskService services.TaskService
	Helper      *helper.HTTPHelper
}

func NewTaskHandler(taskService services.TaskService, h *helper.HTTPHelper) *TaskHandler {
	return &TaskHandler{taskService: taskService, Helper: h}
}

func (h *TaskHandler) GetProjectTasks(c *gin.Context) {
	projectID, ok := h.Helper.ParamUint(c, "id")
	if !ok {
		return
	}
	status := models.TaskStatus(c.Query("status"))
	tasks, err := h.taskService.GetProjectTasks(c.Request.Context(), projectID, status, middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Tasks loaded", tasks)
}

func (h *TaskHandler) GetMyTasks(c *gin.Context) {
	tasks, err := h.taskService.GetMyTasks(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Tasks loaded", tasks)
}
