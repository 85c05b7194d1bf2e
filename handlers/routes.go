package handlers

import (
	"github.com/gin-gonic/gin"

	"doc-governance/middleware"
	"doc-governance/models"
)

type Handlers struct {
	Auth         *AuthHandler
	Project      *ProjectHandler
	DocumentType *DocumentTypeHandler
	Document     *DocumentHandler
	Review       *ReviewHandler
	Task         *TaskHandler
	Audit        *AuditHandler
}

// Register mounts every API route on v1. Everything except register and
// login sits behind authMW.
func (h *Handlers) Register(v1 *gin.RouterGroup, authMW gin.HandlerFunc) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	protected := v1.Group("/")
	protected.Use(authMW)
	{
		protected.GET("/profile", h.Auth.GetProfile)

		projects := protected.Group("/projects")
		{
			projects.POST("", h.Project.CreateProject)
			projects.GET("", h.Project.GetProjects)
			projects.GET("/:id", h.Project.GetProject)
			projects.POST("/:id/members", h.Project.AddMember)
			projects.GET("/:id/members", h.Project.GetMembers)
			projects.DELETE("/:id/members/:member_id", h.Project.RemoveMember)
			projects.POST("/:id/documents", h.Document.CreateDocument)
			projects.GET("/:id/documents", h.Document.GetDocuments)
			projects.GET("/:id/tasks", h.Task.GetProjectTasks)
			projects.GET("/:id/audit", h.Audit.GetAuditLogs)
			projects.GET("/:id/audit/export", h.Audit.ExportAuditLogs)
		}

		docTypes := protected.Group("/document-types")
		{
			docTypes.GET("", h.DocumentType.GetDocumentTypes)
			docTypes.GET("/:code", h.DocumentType.GetDocumentType)
			docTypes.POST("", middleware.RequireRole(models.RoleOrgAdmin), h.DocumentType.CreateDocumentType)
		}

		documents := protected.Group("/documents")
		{
			documents.GET("/:id", h.Document.GetDocument)
			documents.POST("/:id/versions", h.Document.CreateVersion)
			documents.GET("/:id/versions", h.Document.GetVersions)
		}

		versions := protected.Group("/versions")
		{
			versions.GET("/:version_id", h.Document.GetVersion)
			versions.PUT("/:version_id", h.Document.UpdateVersion)
			versions.POST("/:version_id/submit", h.Review.Submit)
			versions.POST("/:version_id/approve", h.Review.Approve)
			versions.POST("/:version_id/reject", h.Review.Reject)
			versions.POST("/:version_id/comments", h.Review.AddComment)
			versions.GET("/:version_id/comments", h.Review.GetComments)
		}

		protected.GET("/tasks/mine", h.Task.GetMyTasks)
	}
}
