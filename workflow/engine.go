// Package workflow is the document approval state machine. It computes
// transitions from a snapshot and never touches storage; see
// services.ReviewService for the transactional side.
package workflow

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"doc-governance/models"
	"doc-governance/policy"
)

const (
	AuditActionSubmit  = "SUBMIT"
	AuditActionApprove = "APPROVE"
	AuditActionReject  = "REJECT"
	AuditActionComment = "COMMENT"

	EntityDocumentVersion = "DocumentVersion"
	EntityApproval        = "Approval"
	EntityReviewComment   = "ReviewComment"
)

// StepSource is the policy lookup the engine needs.
type StepSource interface {
	StepsFor(docType string) ([]policy.Step, error)
}

type Engine struct {
	policies StepSource
	now      func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(policies StepSource, opts ...Option) *Engine {
	e := &Engine{
		policies: policies,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit moves a DRAFT version into review and opens a new approval round
// with one PENDING approval per policy step.
func (e *Engine) Submit(s Snapshot, actor Actor) (*Transition, error) {
	v := s.Version
	if v.IsLocked() {
		return nil, ErrVersionLocked
	}
	if v.State != models.StateDraft {
		return nil, fmt.Errorf("%w: cannot submit version in state %s", ErrInvalidStateTransition, v.State)
	}

	steps, err := e.policies.StepsFor(s.Document.DocType)
	if err != nil {
		return nil, err
	}

	now := e.now()
	round := v.ReviewRound + 1

	t := &Transition{
		Op:        OpSubmit,
		FromState: v.State,
		ToState:   models.StateInReview,
	}
	for _, step := range steps {
		t.NewApprovals = append(t.NewApprovals, models.Approval{
			VersionID:   v.ID,
			ReviewRound: round,
			StepNo:      step.StepNo,
			Role:        step.Role,
			IsFinal:     step.IsFinal,
			IsOptional:  step.IsOptional,
			Status:      models.ApprovalPending,
		})
		t.Effects = append(t.Effects, CreateReviewTask{
			ProjectID:  s.Document.ProjectID,
			DocumentID: s.Document.ID,
			VersionID:  v.ID,
			AuthorID:   v.AuthorID,
			Title:      fmt.Sprintf("Approve %s - %s (%s) step %d", s.Document.DocType, s.Document.Title, v.VersionString, step.StepNo),
			StepNo:     step.StepNo,
			Role:       step.Role,
			IsOptional: step.IsOptional,
		})
	}

	v.State = models.StateInReview
	v.ReviewRound = round
	v.SubmittedAt = &now
	t.Version = v

	t.Effects = append(t.Effects, RecordAudit{
		ProjectID:  s.Document.ProjectID,
		ActorID:    actor.UserID,
		Action:     AuditActionSubmit,
		EntityType: EntityDocumentVersion,
		EntityID:   v.ID,
		Before:     map[string]interface{}{"state": models.StateDraft},
		After: map[string]interface{}{
			"state":             models.StateInReview,
			"review_round":      round,
			"approvals_created": len(steps),
		},
	})
	return t, nil
}

// Approve records the actor's approval on the lowest actionable step they
// can decide and locks the version once every required step is approved.
func (e *Engine) Approve(s Snapshot, actor Actor, comment string) (*Transition, error) {
	v := s.Version
	if v.IsLocked() {
		return nil, ErrVersionLocked
	}
	if v.State != models.StateInReview {
		return nil, fmt.Errorf("%w: cannot approve version in state %s", ErrInvalidStateTransition, v.State)
	}
	if err := CheckAuthorCannotApprove(v, actor); err != nil {
		return nil, err
	}
	if err := CheckTemporaryCannotApprove(actor); err != nil {
		return nil, err
	}

	target, ok := actionableApproval(s.Approvals, actor)
	if !ok {
		return nil, ErrNoPendingApprovalForActor
	}
	if err := CheckReviewerCannotApprove(target, actor, s.Approvals, s.Comments); err != nil {
		return nil, err
	}

	now := e.now()
	approver := actor.UserID
	t := &Transition{
		Op:        OpApprove,
		FromState: v.State,
		ToState:   v.State,
		Decisions: []Decision{{
			ApprovalID:     target.ID,
			StepNo:         target.StepNo,
			Status:         models.ApprovalApproved,
			ApproverUserID: &approver,
			Comment:        comment,
			DecidedAt:      now,
		}},
	}

	after := make([]models.Approval, len(s.Approvals))
	copy(after, s.Approvals)
	for i := range after {
		if after[i].ID == target.ID {
			after[i].Status = models.ApprovalApproved
		}
	}

	if RoundComplete(after) {
		v.State = models.StateApproved
		v.LockedAt = &now
		t.ToState = models.StateApproved
		t.Completed = true
		t.Effects = append(t.Effects,
			UpdateDocumentPointer{DocumentID: s.Document.ID, VersionID: v.ID},
			CloseReviewTasks{VersionID: v.ID},
		)
	}
	t.Version = v

	t.Effects = append(t.Effects, RecordAudit{
		ProjectID:  s.Document.ProjectID,
		ActorID:    actor.UserID,
		Action:     AuditActionApprove,
		EntityType: EntityApproval,
		EntityID:   target.ID,
		Before: map[string]interface{}{
			"status":        models.ApprovalPending,
			"step_no":       target.StepNo,
			"version_state": t.FromState,
		},
		After: map[string]interface{}{
			"status":        models.ApprovalApproved,
			"step_no":       target.StepNo,
			"version_state": t.ToState,
			"is_final":      target.IsFinal,
		},
	})
	return t, nil
}

// Reject voids the whole review round: the actor's approval and every other
// PENDING approval become REJECTED and the version returns to DRAFT.
// Approvals already APPROVED are left as they are.
func (e *Engine) Reject(s Snapshot, actor Actor, comment string) (*Transition, error) {
	v := s.Version
	if v.IsLocked() {
		return nil, ErrVersionLocked
	}
	if v.State != models.StateInReview {
		return nil, fmt.Errorf("%w: cannot reject version in state %s", ErrInvalidStateTransition, v.State)
	}

	target, ok := pendingApprovalFor(s.Approvals, actor)
	if !ok {
		return nil, ErrNoPendingApprovalForActor
	}

	now := e.now()
	approver := actor.UserID
	t := &Transition{
		Op:        OpReject,
		FromState: v.State,
		ToState:   models.StateDraft,
		Decisions: []Decision{{
			ApprovalID:     target.ID,
			StepNo:         target.StepNo,
			Status:         models.ApprovalRejected,
			ApproverUserID: &approver,
			Comment:        comment,
			DecidedAt:      now,
		}},
	}
	voided := 0
	for _, a := range sortedByStep(s.Approvals) {
		if a.ID == target.ID || a.Status != models.ApprovalPending {
			continue
		}
		t.Decisions = append(t.Decisions, Decision{
			ApprovalID: a.ID,
			StepNo:     a.StepNo,
			Status:     models.ApprovalRejected,
			Comment:    fmt.Sprintf("Rejected due to rejection at step %d", target.StepNo),
			DecidedAt:  now,
			Voided:     true,
		})
		voided++
	}

	v.State = models.StateDraft
	t.Version = v
	t.Effects = append(t.Effects,
		CloseReviewTasks{VersionID: v.ID},
		RecordAudit{
			ProjectID:  s.Document.ProjectID,
			ActorID:    actor.UserID,
			Action:     AuditActionReject,
			EntityType: EntityApproval,
			EntityID:   target.ID,
			Before: map[string]interface{}{
				"status":        models.ApprovalPending,
				"step_no":       target.StepNo,
				"version_state": models.StateInReview,
			},
			After: map[string]interface{}{
				"status":           models.ApprovalRejected,
				"version_state":    models.StateDraft,
				"voided_approvals": voided,
				"reason":           comment,
			},
		},
	)
	return t, nil
}

// AddComment appends a review comment. It has no state precondition. A
// reviewerRole, when given, must be a role the actor holds; it is what
// CheckReviewerCannotApprove later looks at.
func (e *Engine) AddComment(s Snapshot, actor Actor, text, reviewerRole string) (*Transition, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	reviewerRole = strings.TrimSpace(reviewerRole)
	if reviewerRole != "" && !actor.Membership.HasRole(reviewerRole) {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotHeld, reviewerRole)
	}

	t := &Transition{
		Op:        OpComment,
		FromState: s.Version.State,
		ToState:   s.Version.State,
		Version:   s.Version,
		Comment: &models.ReviewComment{
			VersionID:    s.Version.ID,
			AuthorID:     actor.UserID,
			ReviewerRole: reviewerRole,
			Text:         text,
			CreatedAt:    e.now(),
		},
	}
	t.Effects = append(t.Effects, RecordAudit{
		ProjectID:  s.Document.ProjectID,
		ActorID:    actor.UserID,
		Action:     AuditActionComment,
		EntityType: EntityDocumentVersion,
		EntityID:   s.Version.ID,
		After: map[string]interface{}{
			"reviewer_role": reviewerRole,
			"length":        len(text),
		},
	})
	return t, nil
}

// RoundComplete reports whether every required approval of a round is
// APPROVED. A round without required approvals is never complete.
func RoundComplete(approvals []models.Approval) bool {
	required := 0
	for _, a := range approvals {
		if a.IsOptional {
			continue
		}
		required++
		if a.Status != models.ApprovalApproved {
			return false
		}
	}
	return required > 0
}

// actionableApproval picks the lowest-numbered PENDING approval the actor
// holds the role for. Required steps are sequential: one becomes actionable
// only after every lower required step is APPROVED. Optional steps are
// actionable at any time.
func actionableApproval(approvals []models.Approval, actor Actor) (models.Approval, bool) {
	earlierDone := true
	for _, a := range sortedByStep(approvals) {
		if a.Status == models.ApprovalPending && actor.Membership.HasRole(a.Role) && (a.IsOptional || earlierDone) {
			return a, true
		}
		if !a.IsOptional && a.Status != models.ApprovalApproved {
			earlierDone = false
		}
	}
	return models.Approval{}, false
}

func pendingApprovalFor(approvals []models.Approval, actor Actor) (models.Approval, bool) {
	for _, a := range sortedByStep(approvals) {
		if a.Status == models.ApprovalPending && actor.Membership.HasRole(a.Role) {
			return a, true
		}
	}
	return models.Approval{}, false
}

func sortedByStep(approvals []models.Approval) []models.Approval {
	out := make([]models.Approval, len(approvals))
	copy(out, approvals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StepNo < out[j].StepNo })
	return out
}
