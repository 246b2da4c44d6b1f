package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/next-label/internal/cache"
	"github.com/ashwinyue/next-label/internal/config"
	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/logger"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
	"github.com/ashwinyue/next-label/internal/telemetry"
	"github.com/ashwinyue/next-label/internal/testutil"
)

func TestService_ScenarioFromDatabase(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewRepositories(db)
	svc := NewService(repo, cache.NewMemory(time.Minute, time.Minute), telemetry.Nop(), logger.Discard(),
		config.MetricsConfig{CacheTTL: 60, Completion: config.CompletionConfirmed})

	a, b := fx.User("alice"), fx.User("bob")
	p := fx.Project(a, model.ProjectDocumentClassification)
	fx.Member(p, b, model.RoleAnnotator)
	labelA := fx.Label(p, model.LabelTypeCategory, "A")
	fx.Label(p, model.LabelTypeCategory, "B")
	ex1 := fx.Example(p, "one")
	fx.Example(p, "two")
	require.NoError(t, repo.Annotation.Create(ctx, &model.AnnotationRecord{
		ProjectID: p.ID, ExampleID: ex1.ID, Kind: ShapeCategory, UserID: a.ID, LabelID: labelA.ID, Payload: []byte(`{}`),
	}))
	fx.Confirm(ex1, a)

	dist, err := svc.Distribution(ctx, p.ID, ShapeCategory)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]int{"alice": {"A": 1, "B": 0}}, dist.ByUser)

	report, err := svc.MemberProgress(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, report.Members, 2)
	assert.Equal(t, Progress{UserID: a.ID, Username: "alice", Role: model.RoleProjectAdmin, Done: 1, Total: 2, Remaining: 1}, report.Members[0])
	assert.Equal(t, Progress{UserID: b.ID, Username: "bob", Role: model.RoleAnnotator, Done: 0, Total: 2, Remaining: 2}, report.Members[1])

	mine, err := svc.MyProgress(ctx, p.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Remaining)
}

func TestService_CachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := NewService(repository.NewRepositories(db), cache.NewMemory(time.Minute, time.Minute), telemetry.Nop(),
		logger.Discard(), config.MetricsConfig{CacheTTL: 60})

	a := fx.User("alice")
	p := fx.Project(a, model.ProjectDocumentClassification)
	ex := fx.Example(p, "one")

	before, err := svc.MyProgress(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, before.Done)

	fx.Confirm(ex, a)
	cached, err := svc.MyProgress(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.Done, "snapshot is served from cache")

	svc.Invalidate(ctx, p.ID)
	after, err := svc.MyProgress(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Done)
}

type failingCache struct{ cache.Nop }

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc := NewService(repository.NewRepositories(db), failingCache{}, telemetry.Nop(), logger.Discard(), config.MetricsConfig{})

	_, err := svc.Distribution(ctx, 1, "bbox")
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = svc.MemberProgress(ctx, 9999)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	p := fx.Project(fx.User("alice"), model.ProjectSequenceLabeling)
	report, err := svc.MemberProgress(ctx, p.ID)
	require.NoError(t, err, "a failing cache falls back to computing")
	assert.Len(t, report.Members, 1)
}
