package workflow

import (
	"time"

	"doc-governance/models"
)

// Membership is what the project knows about an actor: the active roles they
// hold and whether the membership is temporary (SME, auditor).
type Membership struct {
	Roles     []string
	Temporary bool
}

func (m Membership) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Actor struct {
	UserID     uint
	Membership Membership
}

// Snapshot is the state a transition is computed from. Approvals holds only
// the rows of the version's current review round.
type Snapshot struct {
	Document  models.Document
	Version   models.DocumentVersion
	Approvals []models.Approval
	Comments  []models.ReviewComment
}

type Operation string

const (
	OpSubmit  Operation = "SUBMIT"
	OpApprove Operation = "APPROVE"
	OpReject  Operation = "REJECT"
	OpComment Operation = "COMMENT"
)

// Decision is a status change on one existing approval row.
type Decision struct {
	ApprovalID     uint
	StepNo         int
	Status         models.ApprovalStatus
	ApproverUserID *uint
	Comment        string
	DecidedAt      time.Time
	// Voided marks approvals rejected as a side effect of someone else's
	// rejection.
	Voided bool
}

// Transition is the outcome of a workflow operation: the rows to write
// inside the transaction and the effects to run once it commits.
type Transition struct {
	Op        Operation
	FromState models.DocumentState
	ToState   models.DocumentState
	// Version is the version as it must look after the write.
	Version      models.DocumentVersion
	NewApprovals []models.Approval
	Decisions    []Decision
	Comment      *models.ReviewComment
	Completed    bool
	Effects      []Effect
}

// Effect is a command emitted by a transition.
type Effect interface {
	effect()
}

// CreateReviewTask asks for a task addressed to members holding Role.
// AuthorID is never an eligible assignee.
type CreateReviewTask struct {
	ProjectID  uint
	DocumentID uint
	VersionID  uint
	AuthorID   uint
	Title      string
	StepNo     int
	Role       string
	IsOptional bool
}

type CloseReviewTasks struct {
	VersionID uint
}

type UpdateDocumentPointer struct {
	DocumentID uint
	VersionID  uint
}

type RecordAudit struct {
	ProjectID  uint
	ActorID    uint
	Action     string
	EntityType string
	EntityID   uint
	Before     map[string]interface{}
	After      map[string]interface{}
}

func (CreateReviewTask) effect()      {}
func (CloseReviewTasks) effect()      {}
func (UpdateDocumentPointer) effect() {}
func (RecordAudit) effect()           {}
