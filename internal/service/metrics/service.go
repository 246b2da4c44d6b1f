package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashwinyue/next-label/internal/cache"
	"github.com/ashwinyue/next-label/internal/config"
	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
	"github.com/ashwinyue/next-label/internal/telemetry"
)

// Service 带缓存的统计服务
type Service struct {
	repo    *repository.Repositories
	cache   cache.Cache
	metrics *telemetry.Metrics
	log     *slog.Logger
	opts    Options
	ttl     time.Duration
}

// NewService 创建统计服务
func NewService(repo *repository.Repositories, c cache.Cache, metrics *telemetry.Metrics, log *slog.Logger, cfg config.MetricsConfig) *Service {
	return &Service{
		repo:    repo,
		cache:   c,
		metrics: metrics,
		log:     log,
		opts:    Options{Completion: cfg.Completion, RequiredKinds: cfg.RequiredShapes},
		ttl:     cfg.TTL(),
	}
}

func cacheKey(projectID int64) string {
	return fmt.Sprintf("metrics:project:%d", projectID)
}

// Snapshot 读取缓存，未命中时重新聚合
func (s *Service) Snapshot(ctx context.Context, projectID int64) (*Snapshot, error) {
	key := cacheKey(projectID)
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("metrics cache read failed", "project_id", projectID, "error", err)
	}
	if ok {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			s.metrics.CacheLookup(true)
			return &snap, nil
		}
		s.log.Warn("discarding corrupt metrics snapshot", "project_id", projectID)
	}
	s.metrics.CacheLookup(false)

	start := time.Now()
	snap, err := s.compute(ctx, projectID)
	s.metrics.Aggregation(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn("metrics cache write failed", "project_id", projectID, "error", err)
		}
	}
	return snap, nil
}

// compute 并发读取项目数据后聚合
func (s *Service) compute(ctx context.Context, projectID int64) (*Snapshot, error) {
	var (
		project *model.Project
		in      Input
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		project, err = s.repo.Project.GetByID(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		in.Members, err = s.repo.Member.List(gctx, projectID)
		return wrap(err, "members")
	})
	g.Go(func() (err error) {
		in.Labels, err = s.repo.Label.List(gctx, projectID, "")
		return wrap(err, "labels")
	})
	g.Go(func() (err error) {
		in.ExampleIDs, err = s.repo.Example.ListIDs(gctx, projectID)
		return wrap(err, "examples")
	})
	g.Go(func() (err error) {
		in.Confirmations, err = s.repo.Example.ListStates(gctx, projectID)
		return wrap(err, "example states")
	})
	g.Go(func() (err error) {
		in.Tallies, err = s.repo.Annotation.ListTallies(gctx, projectID, nil)
		return wrap(err, "annotations")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in.Shared = project.SharedAnnotation
	return Aggregate(projectID, in, s.opts), nil
}

func wrap(err error, what string) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

// Distribution 指定形态的标签分布
func (s *Service) Distribution(ctx context.Context, projectID int64, shape string) (*Distribution, error) {
	if _, ok := labelTypes[shape]; !ok {
		return nil, errs.InvalidArgument("no distribution for shape %q", shape)
	}
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return snap.Distributions[shape], nil
}

// MemberProgress 全部成员的进度
func (s *Service) MemberProgress(ctx context.Context, projectID int64) (*ProgressReport, error) {
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &snap.Progress, nil
}

// MyProgress 会话用户的进度
func (s *Service) MyProgress(ctx context.Context, projectID, userID int64) (*Progress, error) {
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p := snap.Mine(userID)
	return &p, nil
}

// Invalidate 删除项目的统计快照
func (s *Service) Invalidate(ctx context.Context, projectID int64) {
	if err := s.cache.Delete(ctx, cacheKey(projectID)); err != nil {
		s.log.Warn("metrics cache invalidation failed", "project_id", projectID, "error", err)
	}
}
