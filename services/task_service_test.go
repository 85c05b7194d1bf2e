package services

import (
	"doc-governance/models"
	"doc-governance/notify"
	"doc-governance/testutil"
)

func (s *ServiceTestSuite) TestSubmitCreatesAssignedTasks() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "RELEASE_NOTES")
	rm := s.seedUser("rm")
	s.addMember(rm.ID, models.ProjectRoleReleaseManager, false)

	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)

	tasks, err := s.tasks.GetProjectTasks(s.ctx, s.project.ID, models.TaskOpen, s.author.ID)
	s.Require().NoError(err)
	s.Require().Len(tasks, 2)

	byRole := map[string]models.Task{}
	for _, t := range tasks {
		byRole[t.RequiredRole] = t
	}
	release := byRole[models.ProjectRoleReleaseManager]
	s.Require().NotNil(release.AssignedUserID)
	s.Equal(rm.ID, *release.AssignedUserID)
	s.Equal(priorityRequired, release.Priority)

	optional := byRole[models.ProjectRoleBusinessOwner]
	s.Nil(optional.AssignedUserID, "nobody holds Business Owner")
	s.Equal(priorityOptional, optional.Priority)

	mine, err := s.tasks.GetMyTasks(s.ctx, rm.ID)
	s.NoError(err)
	s.Len(mine, 1)
	s.Equal(2, s.publisher.count(notify.EventTaskCreated))
}

func (s *ServiceTestSuite) TestAuthorIsNeverAssigned() {
	_, v := testutil.SeedDraft(s.T(), s.db, s.project.ID, s.author.ID, "TSS")
	_, err := s.review.Submit(s.ctx, v.ID, s.author.ID)
	s.Require().NoError(err)

	tasks, err := s.tasks.GetProjectTasks(s.ctx, s.project.ID, "", s.author.ID)
	s.Require().NoError(err)
	for _, t := range tasks {
		if t.AssignedUserID != nil {
			s.NotEqual(s.author.ID, *t.AssignedUserID)
		}
	}
}
