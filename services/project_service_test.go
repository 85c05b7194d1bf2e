package services

import "doc-governance/models"

func (s *ServiceTestSuite) TestCreateProjectMakesCreatorMember() {
	p, err := s.projects.CreateProject(s.ctx, models.CreateProjectRequest{Name: "  Billing  "}, s.qa.ID)
	s.Require().NoError(err)
	s.Equal("Billing", p.Name)
	s.Require().Len(p.Members, 1)
	s.Equal(models.ProjectRoleBusinessOwner, p.Members[0].RoleCode)

	mine, err := s.projects.GetProjects(s.ctx, s.qa.ID)
	s.NoError(err)
	s.Len(mine, 2, "own project plus the seeded one qa is a member of")

	_, err = s.projects.GetProject(s.ctx, p.ID, s.architect.ID)
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) TestMemberManagement() {
	newcomer := s.seedUser("newcomer")

	_, err := s.projects.AddMember(s.ctx, s.project.ID, models.AddMemberRequest{UserID: newcomer.ID, RoleCode: models.ProjectRoleSME, IsTemporary: true}, s.qa.ID)
	s.ErrorIs(err, ErrForbidden, "only the owner manages members")

	m, err := s.projects.AddMember(s.ctx, s.project.ID, models.AddMemberRequest{UserID: newcomer.ID, RoleCode: models.ProjectRoleSME, IsTemporary: true}, s.author.ID)
	s.Require().NoError(err)
	s.True(m.IsTemporary)

	_, err = s.projects.AddMember(s.ctx, s.project.ID, models.AddMemberRequest{UserID: 9999, RoleCode: models.ProjectRoleQA}, s.author.ID)
	s.ErrorIs(err, ErrNotFound)

	members, err := s.projects.GetMembers(s.ctx, s.project.ID, newcomer.ID)
	s.Require().NoError(err)
	s.Len(members, 5)

	s.NoError(s.projects.RemoveMember(s.ctx, s.project.ID, m.ID, s.author.ID))
	s.ErrorIs(s.projects.RemoveMember(s.ctx, s.project.ID, m.ID, s.author.ID), ErrNotFound)
	s.ErrorIs(s.projects.EnsureAccess(s.ctx, s.project.ID, newcomer.ID), ErrForbidden)
}

func (s *ServiceTestSuite) TestOrgAdminSeesEverything() {
	admin := s.seedUser("admin")
	s.Require().NoError(s.db.Model(admin).Update("role", models.RoleOrgAdmin).Error)

	s.NoError(s.projects.EnsureAccess(s.ctx, s.project.ID, admin.ID))
	all, err := s.projects.GetProjects(s.ctx, admin.ID)
	s.NoError(err)
	s.Len(all, 1)
}
