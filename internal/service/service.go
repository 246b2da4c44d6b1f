package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	jwtauth "github.com/ashwinyue/next-label/internal/auth"
	"github.com/ashwinyue/next-label/internal/cache"
	"github.com/ashwinyue/next-label/internal/config"
	"github.com/ashwinyue/next-label/internal/repository"
	"github.com/ashwinyue/next-label/internal/service/annotation"
	"github.com/ashwinyue/next-label/internal/service/auth"
	"github.com/ashwinyue/next-label/internal/service/example"
	"github.com/ashwinyue/next-label/internal/service/label"
	"github.com/ashwinyue/next-label/internal/service/member"
	"github.com/ashwinyue/next-label/internal/service/metrics"
	"github.com/ashwinyue/next-label/internal/service/project"
	"github.com/ashwinyue/next-label/internal/telemetry"
)

// Services 服务集合
type Services struct {
	Auth       *auth.Service
	Project    *project.Service
	Label      *label.Service
	Member     *member.Service
	Example    *example.Service
	Annotation *annotation.Service
	Metrics    *metrics.Service

	Users  *repository.UserRepository
	Signer *jwtauth.Signer
}

// NewServices 创建所有服务；写操作统一通过 Metrics 使统计缓存失效
func NewServices(repo *repository.Repositories, cfg *config.Config, c cache.Cache, tel *telemetry.Metrics, log *slog.Logger) (*Services, error) {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		generated, err := randomSecret()
		if err != nil {
			return nil, err
		}
		log.Warn("auth.jwtSecret is empty, using a random secret; tokens will not survive a restart")
		secret = generated
	}
	signer := jwtauth.NewSigner(secret, cfg.Auth.TTL())

	stats := metrics.NewService(repo, c, tel, log, cfg.Metrics)
	return &Services{
		Auth:       auth.NewService(repo, signer),
		Project:    project.NewService(repo, stats),
		Label:      label.NewService(repo, stats),
		Member:     member.NewService(repo, stats),
		Example:    example.NewService(repo, stats),
		Annotation: annotation.NewService(repo, stats, tel, log),
		Metrics:    stats,
		Users:      repo.User,
		Signer:     signer,
	}, nil
}

// randomSecret 生成调试模式下的临时 JWT 密钥
func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
