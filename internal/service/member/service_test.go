package member

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
	"github.com/ashwinyue/next-label/internal/testutil"
)

func TestService_Members(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	s := NewService(repository.NewRepositories(db), nil)

	alice, bob := fx.User("alice"), fx.User("bob")
	p := fx.Project(alice, model.ProjectSeq2seq)

	_, err := s.AddMember(ctx, p.ID, &AddMemberRequest{UserID: bob.ID, Role: "owner"})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	_, err = s.AddMember(ctx, p.ID, &AddMemberRequest{UserID: 9999, Role: model.RoleAnnotator})
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	m, err := s.AddMember(ctx, p.ID, &AddMemberRequest{UserID: bob.ID, Role: model.RoleAnnotator})
	require.NoError(t, err)
	assert.Equal(t, "bob", m.Username)
	_, err = s.AddMember(ctx, p.ID, &AddMemberRequest{UserID: bob.ID, Role: model.RoleAnnotationApprover})
	assert.True(t, errors.Is(err, errs.ErrConflict))

	got, err := s.Authorize(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAnnotator, got.Role)
	_, err = s.Authorize(ctx, p.ID, 9999)
	assert.True(t, errors.Is(err, errs.ErrForbidden))
	_, err = s.Authorize(ctx, 9999, bob.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	updated, err := s.UpdateMember(ctx, p.ID, m.ID, &UpdateMemberRequest{Role: model.RoleAnnotationApprover})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAnnotationApprover, updated.Role)

	members, err := s.ListMembers(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)

	admin := members[0]
	_, err = s.UpdateMember(ctx, p.ID, admin.ID, &UpdateMemberRequest{Role: model.RoleAnnotator})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument), "the last admin keeps the role")
	assert.True(t, errors.Is(s.RemoveMember(ctx, p.ID, admin.ID), errs.ErrInvalidArgument))

	require.NoError(t, s.RemoveMember(ctx, p.ID, m.ID))
	assert.True(t, errors.Is(s.RemoveMember(ctx, p.ID, m.ID), errs.ErrNotFound))
}
