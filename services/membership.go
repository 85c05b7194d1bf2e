package services

import (
	"doc-governance/dbctx"
	"doc-governance/repositories"
	"doc-governance/workflow"
)

// ProjectMembership resolves what an actor is within a project.
type ProjectMembership interface {
	MembershipOf(dbc dbctx.Context, projectID, userID uint) (workflow.Membership, error)
}

type projectMembership struct {
	memberRepo repositories.ProjectMemberRepository
}

func NewProjectMembership(memberRepo repositories.ProjectMemberRepository) ProjectMembership {
	return &projectMembership{memberRepo: memberRepo}
}

// MembershipOf collects the active roles of the user. Any temporary row marks
// the whole membership temporary.
func (m *projectMembership) MembershipOf(dbc dbctx.Context, projectID, userID uint) (workflow.Membership, error) {
	rows, err := m.memberRepo.ListActiveForUser(dbc, projectID, userID)
	if err != nil {
		return workflow.Membership{}, err
	}
	var out workflow.Membership
	for _, row := range rows {
		out.Roles = append(out.Roles, row.RoleCode)
		if row.IsTemporary {
			out.Temporary = true
		}
	}
	return out, nil
}
