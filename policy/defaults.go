package policy

import "doc-governance/models"

// DefaultPolicies is the stock SDLC approval matrix.
func DefaultPolicies() []Policy {
	return []Policy{
		{DocType: "PDD", Steps: []Step{
			{StepNo: 1, Role: models.ProjectRoleBusinessOwner},
			{StepNo: 2, Role: models.ProjectRoleQA, IsFinal: true},
		}},
		{DocType: "SDD", Steps: []Step{
			{StepNo: 1, Role: models.ProjectRoleArchitect},
			{StepNo: 2, Role: models.ProjectRoleQA},
			{StepNo: 3, Role: models.ProjectRoleArchitect, IsFinal: true},
		}},
		{DocType: "TSS", Steps: []Step{
			{StepNo: 1, Role: models.ProjectRoleArchitect},
			{StepNo: 2, Role: models.ProjectRoleQA, IsFinal: true},
		}},
		{DocType: "TEST_PLAN", Steps: []Step{
			{StepNo: 1, Role: models.ProjectRoleQA, IsFinal: true},
		}},
		{DocType: "TEST_REPORT", Steps: []Step{
			{StepNo: 1, Role: models.ProjectRoleQA},
			{StepNo: 2, Role: models.ProjectRoleReleaseManager, IsFinal: true},
		}},
		{DocType: "RELEASE_NOTES", Steps: []Step{
			{StepNo: 1, Role: models.ProjectRoleReleaseManager, IsFinal: true},
			{StepNo: 2, Role: models.ProjectRoleBusinessOwner, IsOptional: true},
		}},
		{DocType: "OTHER", Steps: []Step{
			{StepNo: 1, Role: models.ProjectRoleBusinessOwner, IsFinal: true},
		}},
	}
}

func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultPolicies()...)
	if err != nil {
		panic(err)
	}
	return r
}
