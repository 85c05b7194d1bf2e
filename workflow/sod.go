package workflow

import (
	"doc-governance/models"
)

// Segregation-of-duties rules. Each check is independent of the others and
// of persistence.

// CheckAuthorCannotApprove: the author of a version never approves it.
func CheckAuthorCannotApprove(version models.DocumentVersion, actor Actor) error {
	if actor.UserID == version.AuthorID {
		return ErrAuthorCannotApprove
	}
	return nil
}

// CheckReviewerCannotApprove: an actor who already acted on the
// version as a reviewer in some other role (a decided approval of the current
// round, or a review comment recorded under a reviewer role) cannot approve
// target.
func CheckReviewerCannotApprove(target models.Approval, actor Actor, approvals []models.Approval, comments []models.ReviewComment) error {
	for _, a := range approvals {
		if a.ID == target.ID || a.ApproverUserID == nil || *a.ApproverUserID != actor.UserID {
			continue
		}
		if a.Status != models.ApprovalPending && a.Role != target.Role {
			return ErrReviewerCannotApproveSameVersion
		}
	}
	for _, c := range comments {
		if c.AuthorID != actor.UserID || c.ReviewerRole == "" {
			continue
		}
		if c.ReviewerRole != target.Role {
			return ErrReviewerCannotApproveSameVersion
		}
	}
	return nil
}

// CheckTemporaryCannotApprove: temporary members comment but never approve.
func CheckTemporaryCannotApprove(actor Actor) error {
	if actor.Membership.Temporary {
		return ErrTemporaryUserCannotApprove
	}
	return nil
}
