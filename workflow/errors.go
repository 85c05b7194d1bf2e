package workflow

import (
	"errors"
	"fmt"

	"doc-governance/policy"
)

// Errors returned by the workflow. Callers match them with errors.Is and
// surface them verbatim.
var (
	ErrInvalidStateTransition           = errors.New("invalid state transition")
	ErrNoPendingApprovalForActor        = errors.New("no pending approval for actor")
	ErrAuthorCannotApprove              = errors.New("author cannot approve own version")
	ErrReviewerCannotApproveSameVersion = errors.New("reviewer cannot approve the same version")
	ErrTemporaryUserCannotApprove       = errors.New("temporary project member cannot approve")
	ErrAlreadyDecided                   = errors.New("approval already decided")
	ErrVersionNotFound                  = errors.New("document version not found")
	ErrRoleNotHeld                      = errors.New("actor does not hold the requested role")
	ErrEmptyComment                     = errors.New("comment text is empty")

	ErrUnknownDocumentType = policy.ErrUnknownDocumentType

	// ErrVersionLocked is also an ErrInvalidStateTransition.
	ErrVersionLocked = fmt.Errorf("%w: version is locked", ErrInvalidStateTransition)
)
