package models

import "encoding/json"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description"`
	// OwnerRole is the project role granted to the creator.
	OwnerRole string `json:"owner_role"`
}

type AddMemberRequest struct {
	UserID      uint   `json:"user_id" validate:"required"`
	RoleCode    string `json:"role_code" validate:"required,max=100"`
	IsTemporary bool   `json:"is_temporary"`
}

type CreateDocumentTypeRequest struct {
	Code        string               `json:"code" validate:"required,min=2,max=50"`
	Name        string               `json:"name" validate:"required,max=255"`
	Description string               `json:"description"`
	Compliance  []ComplianceStandard `json:"compliance"`
}

type CreateDocumentRequest struct {
	DocType string `json:"doc_type" validate:"required"`
	Title   string `json:"title" validate:"required,min=1,max=255"`
}

type CreateVersionRequest struct {
	ContentJSON json.RawMessage `json:"content_json"`
}

type UpdateVersionRequest struct {
	ContentJSON json.RawMessage `json:"content_json" validate:"required"`
}

type ApproveRequest struct {
	Comment string `json:"comment" validate:"max=4000"`
}

type RejectRequest struct {
	Comment string `json:"comment" validate:"max=4000"`
}

type CommentRequest struct {
	Text         string `json:"text" validate:"required,max=4000"`
	ReviewerRole string `json:"reviewer_role"`
}

type DocumentListParams struct {
	DocType string `form:"doc_type"`
}

type AuditListParams struct {
	Action string `form:"action"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
}

// ReviewResult is returned by the workflow endpoints.
type ReviewResult struct {
	Version   DocumentVersion `json:"version"`
	Approvals []Approval      `json:"approvals"`
	Completed bool            `json:"completed"`
}
