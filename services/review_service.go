package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/logger"
	"doc-governance/models"
	"doc-governance/repositories"
	"doc-governance/tracing"
	"doc-governance/workflow"
)

// ReviewService runs workflow operations against storage. Each operation is
// one transaction: the version row is locked, the engine computes the
// transition from a fresh snapshot, and the rows are written with guarded
// updates. Task and audit effects run after commit.
type ReviewService interface {
	Submit(ctx context.Context, versionID, userID uint) (*models.ReviewResult, error)
	Approve(ctx context.Context, versionID, userID uint, comment string) (*models.ReviewResult, error)
	Reject(ctx context.Context, versionID, userID uint, comment string) (*models.ReviewResult, error)
	AddComment(ctx context.Context, versionID, userID uint, text, reviewerRole string) (*models.ReviewComment, error)
	GetComments(ctx context.Context, versionID, userID uint) ([]models.ReviewComment, error)
}

type reviewService struct {
	db           *gorm.DB
	engine       *workflow.Engine
	documentRepo repositories.DocumentRepository
	versionRepo  repositories.DocumentVersionRepository
	approvalRepo repositories.ApprovalRepository
	commentRepo  repositories.ReviewCommentRepository
	membership   ProjectMembership
	tasks        TaskSink
	audit        AuditSink
	projects     ProjectService
	log          *logger.Logger
}

type ReviewServiceDeps struct {
	DB           *gorm.DB
	Engine       *workflow.Engine
	DocumentRepo repositories.DocumentRepository
	VersionRepo  repositories.DocumentVersionRepository
	ApprovalRepo repositories.ApprovalRepository
	CommentRepo  repositories.ReviewCommentRepository
	Membership   ProjectMembership
	Tasks        TaskSink
	Audit        AuditSink
	Projects     ProjectService
	Log          *logger.Logger
}

func NewReviewService(deps ReviewServiceDeps) ReviewService {
	return &reviewService{
		db:           deps.DB,
		engine:       deps.Engine,
		documentRepo: deps.DocumentRepo,
		versionRepo:  deps.VersionRepo,
		approvalRepo: deps.ApprovalRepo,
		commentRepo:  deps.CommentRepo,
		membership:   deps.Membership,
		tasks:        deps.Tasks,
		audit:        deps.Audit,
		projects:     deps.Projects,
		log:          deps.Log.With("service", "ReviewService"),
	}
}

type transitionFunc func(s workflow.Snapshot, actor workflow.Actor) (*workflow.Transition, error)

func (s *reviewService) Submit(ctx context.Context, versionID, userID uint) (*models.ReviewResult, error) {
	return s.run(ctx, workflow.OpSubmit, versionID, userID, func(snap workflow.Snapshot, actor workflow.Actor) (*workflow.Transition, error) {
		if actor.UserID != snap.Version.AuthorID && len(actor.Membership.Roles) == 0 {
			return nil, ErrForbidden
		}
		return s.engine.Submit(snap, actor)
	})
}

func (s *reviewService) Approve(ctx context.Context, versionID, userID uint, comment string) (*models.ReviewResult, error) {
	return s.run(ctx, workflow.OpApprove, versionID, userID, func(snap workflow.Snapshot, actor workflow.Actor) (*workflow.Transition, error) {
		return s.engine.Approve(snap, actor, comment)
	})
}

func (s *reviewService) Reject(ctx context.Context, versionID, userID uint, comment string) (*models.ReviewResult, error) {
	return s.run(ctx, workflow.OpReject, versionID, userID, func(snap workflow.Snapshot, actor workflow.Actor) (*workflow.Transition, error) {
		return s.engine.Reject(snap, actor, comment)
	})
}

func (s *reviewService) AddComment(ctx context.Context, versionID, userID uint, text, reviewerRole string) (*models.ReviewComment, error) {
	var comment *models.ReviewComment
	_, err := s.run(ctx, workflow.OpComment, versionID, userID, func(snap workflow.Snapshot, actor workflow.Actor) (*workflow.Transition, error) {
		if actor.UserID != snap.Version.AuthorID && len(actor.Membership.Roles) == 0 {
			return nil, ErrForbidden
		}
		t, err := s.engine.AddComment(snap, actor, text, reviewerRole)
		if err == nil {
			comment = t.Comment
		}
		return t, err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *reviewService) GetComments(ctx context.Context, versionID, userID uint) ([]models.ReviewComment, error) {
	dbc := dbctx.New(ctx)
	version, err := s.versionRepo.GetByID(dbc, versionID)
	if err != nil {
		return nil, notFound(err, workflow.ErrVersionNotFound)
	}
	document, err := s.documentRepo.GetByID(dbc, version.DocumentID)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	if err := s.projects.EnsureAccess(ctx, document.ProjectID, userID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByVersion(dbc, versionID)
}

func (s *reviewService) run(ctx context.Context, op workflow.Operation, versionID, userID uint, fn transitionFunc) (_ *models.ReviewResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "review."+string(op),
		attribute.Int64("version.id", int64(versionID)),
		attribute.Int64("actor.id", int64(userID)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	log := s.log.With("op", op, "version_id", versionID, "actor_id", userID)

	var (
		t         *workflow.Transition
		approvals []models.Approval
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		snap, actor, err := s.snapshot(dbc, versionID, userID)
		if err != nil {
			return err
		}
		t, err = fn(snap, actor)
		if err != nil {
			return err
		}
		if err := s.apply(dbc, snap, t); err != nil {
			return err
		}
		approvals, err = s.approvalRepo.GetByRound(dbc, versionID, t.Version.ReviewRound)
		return err
	})
	if err != nil {
		if isWorkflowRefusal(err) {
			log.Info("review operation refused", "error", err)
		} else {
			log.Error("review operation failed", "error", err)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("version.from_state", string(t.FromState)),
		attribute.String("version.to_state", string(t.ToState)),
		attribute.Bool("review.completed", t.Completed),
	)
	log.Info("review operation applied", "from", t.FromState, "to", t.ToState, "completed", t.Completed)

	s.dispatch(ctx, log, t)
	return &models.ReviewResult{Version: t.Version, Approvals: approvals, Completed: t.Completed}, nil
}

// snapshot locks the version and loads what the engine needs. Everything is
// read through the transaction.
func (s *reviewService) snapshot(dbc dbctx.Context, versionID, userID uint) (workflow.Snapshot, workflow.Actor, error) {
	var snap workflow.Snapshot
	version, err := s.versionRepo.LockByID(dbc, versionID)
	if err != nil {
		return snap, workflow.Actor{}, notFound(err, workflow.ErrVersionNotFound)
	}
	document, err := s.documentRepo.GetByID(dbc, version.DocumentID)
	if err != nil {
		return snap, workflow.Actor{}, notFound(err, workflow.ErrVersionNotFound)
	}
	approvals, err := s.approvalRepo.GetByRound(dbc, version.ID, version.ReviewRound)
	if err != nil {
		return snap, workflow.Actor{}, err
	}
	comments, err := s.commentRepo.GetByVersion(dbc, version.ID)
	if err != nil {
		return snap, workflow.Actor{}, err
	}
	membership, err := s.membership.MembershipOf(dbc, document.ProjectID, userID)
	if err != nil {
		return snap, workflow.Actor{}, err
	}

	document.CurrentVersion = nil
	snap = workflow.Snapshot{
		Document:  *document,
		Version:   *version,
		Approvals: approvals,
		Comments:  comments,
	}
	return snap, workflow.Actor{UserID: userID, Membership: membership}, nil
}

// apply writes the transition's rows. A lost race on the approval row fails
// the operation with ErrAlreadyDecided. A lost race on the version lock keeps
// the approval but drops completion, so the version locks exactly once.
func (s *reviewService) apply(dbc dbctx.Context, snap workflow.Snapshot, t *workflow.Transition) error {
	if len(t.NewApprovals) > 0 {
		if err := s.approvalRepo.CreateBatch(dbc, t.NewApprovals); err != nil {
			return err
		}
	}
	for _, d := range t.Decisions {
		n, err := s.approvalRepo.Decide(dbc, d.ApprovalID, d.Status, d.ApproverUserID, d.Comment, d.DecidedAt)
		if err != nil {
			return err
		}
		if n == 0 && !d.Voided {
			return fmt.Errorf("%w: approval %d", workflow.ErrAlreadyDecided, d.ApprovalID)
		}
	}
	if t.Comment != nil {
		if err := s.commentRepo.Create(dbc, t.Comment); err != nil {
			return err
		}
	}

	if t.Op == workflow.OpComment || (t.FromState == t.ToState && !t.Completed) {
		return nil
	}
	n, err := s.versionRepo.ApplyState(dbc, &t.Version, t.FromState)
	if err != nil {
		return err
	}
	if n == 0 {
		if t.Completed {
			t.Completed = false
			t.Version = snap.Version
			t.ToState = t.FromState
			t.Effects = withoutCompletion(t.Effects, t.FromState)
			return nil
		}
		return fmt.Errorf("%w: version %d changed concurrently", workflow.ErrInvalidStateTransition, t.Version.ID)
	}

	for _, eff := range t.Effects {
		if ptr, ok := eff.(workflow.UpdateDocumentPointer); ok {
			if err := s.documentRepo.SetCurrentVersion(dbc, ptr.DocumentID, ptr.VersionID); err != nil {
				return err
			}
		}
	}
	return nil
}

// dispatch runs the post-commit effects. Failures are logged and never undo
// the committed transition.
func (s *reviewService) dispatch(ctx context.Context, log *logger.Logger, t *workflow.Transition) {
	for _, eff := range t.Effects {
		var err error
		switch e := eff.(type) {
		case workflow.CreateReviewTask:
			_, err = s.tasks.CreateReviewTask(ctx, e)
		case workflow.CloseReviewTasks:
			err = s.tasks.CloseTasksFor(ctx, e.VersionID)
		case workflow.RecordAudit:
			err = s.audit.Record(ctx, e)
		case workflow.UpdateDocumentPointer:
			// applied inside the transaction
		}
		if err != nil {
			log.Error("review effect failed", "effect", fmt.Sprintf("%T", eff), "error", err)
		}
	}
}

func withoutCompletion(effects []workflow.Effect, state models.DocumentState) []workflow.Effect {
	out := effects[:0:0]
	for _, eff := range effects {
		switch e := eff.(type) {
		case workflow.UpdateDocumentPointer, workflow.CloseReviewTasks:
			continue
		case workflow.RecordAudit:
			after := make(map[string]interface{}, len(e.After))
			for k, v := range e.After {
				after[k] = v
			}
			after["version_state"] = state
			e.After = after
			eff = e
		}
		out = append(out, eff)
	}
	return out
}

func isWorkflowRefusal(err error) bool {
	for _, target := range []error{
		workflow.ErrInvalidStateTransition,
		workflow.ErrNoPendingApprovalForActor,
		workflow.ErrAuthorCannotApprove,
		workflow.ErrReviewerCannotApproveSameVersion,
		workflow.ErrTemporaryUserCannotApprove,
		workflow.ErrAlreadyDecided,
		workflow.ErrUnknownDocumentType,
		workflow.ErrVersionNotFound,
		workflow.ErrRoleNotHeld,
		workflow.ErrEmptyComment,
		ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
