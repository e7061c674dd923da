package setup

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openreview/openreview-web/frontend/internal/apiclient"
	"github.com/openreview/openreview-web/frontend/internal/handler"
	"github.com/openreview/openreview-web/frontend/internal/markdown"
	"github.com/openreview/openreview-web/frontend/internal/render"
	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/frontend/static"
	"github.com/openreview/openreview-web/frontend/templates"
	"github.com/openreview/openreview-web/shared/config"
	"github.com/openreview/openreview-web/shared/institution"
	"github.com/openreview/openreview-web/shared/jwt"
	"github.com/openreview/openreview-web/shared/logger"
	mw "github.com/openreview/openreview-web/shared/middleware"
	"github.com/openreview/openreview-web/shared/middleware/ratelimiter"
)

const (
	templateReloadInterval = 5 * time.Second
	redisPingTimeout       = 3 * time.Second
	// only decoded here, the API issues the tokens
	accessTokenTTL = 24 * time.Hour
)

type Dependencies struct {
	Handler *handler.Handler
	Public  config.Public
	// nil without a JWT secret; signed-in visitors are then not redirected
	Auth *mw.Auth
	// per email, taken only by the calls that make the API send mail
	EmailLimiter ratelimiter.Limiter
	Sessions     *signup.SessionStore

	redis      *redis.Client
	memLimiter *ratelimiter.UserRateLimiter
	cancel     context.CancelFunc
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	// Create cancellable context for background tasks
	ctx, cancel := context.WithCancel(context.Background())
	deps := &Dependencies{Public: cfg.Public, cancel: cancel}

	renderer, err := loadTemplates(ctx, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	client := apiclient.New(cfg.Public.APIBaseURL, apiclient.Config{
		ReadTimeout:  cfg.Public.APIReadTimeout,
		WriteTimeout: cfg.Public.APIWriteTimeout,
	})

	// Institution domains with background updates
	institutions := institution.New(client)
	institutions.StartBackgroundUpdate(ctx, cfg.Public.InstitutionDomainsRefresh)

	if err := deps.setupLimiter(ctx, cfg); err != nil {
		deps.Close()
		return nil, err
	}

	lookup := signup.LookupConfig{
		UsernameDelay:      cfg.Public.UsernameDelay,
		ProfileSearchDelay: cfg.Public.ProfileSearchDelay,
		SearchLimit:        cfg.Public.ProfileSearchLimit,
	}
	deps.Sessions = signup.NewSessionStore(cfg.Public.SessionTTL, func(sessionCtx context.Context) *signup.Orchestrator {
		return signup.NewOrchestrator(sessionCtx, signup.Deps{
			Finder:             client,
			Accounts:           client,
			Notes:              client,
			Lookup:             lookup,
			EmailLimiter:       deps.EmailLimiter,
			InstitutionDomains: institutions.Domains(),
		})
	})

	if cfg.Private.JwtSecret != "" {
		deps.Auth = mw.NewAuth(jwt.New(cfg.Private.JwtSecret, accessTokenTTL))
	} else {
		logger.Log.Warn().Msg("JWT_SECRET is not set, signed-in visitors will not be redirected")
	}

	deps.Handler = handler.New(renderer, cfg.Public, markdown.New(), client, deps.Sessions, institutions, deps.EmailLimiter, static.FS)
	return deps, nil
}

// setupLimiter picks Redis when configured so limits hold across replicas.
func (d *Dependencies) setupLimiter(ctx context.Context, cfg *config.Config) error {
	p := cfg.Public
	if p.RedisAddr == "" {
		d.memLimiter = ratelimiter.PerWindow(p.EmailRateLimit, p.EmailRateWindow)
		d.EmailLimiter = d.memLimiter
		logger.Log.Info().Msg("using in-memory email rate limiter")
		return nil
	}

	d.redis = redis.NewClient(&redis.Options{Addr: p.RedisAddr, Password: cfg.Private.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := d.redis.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", p.RedisAddr, err)
	}
	d.EmailLimiter = ratelimiter.NewRedis(d.redis, "email", p.EmailRateLimit, p.EmailRateWindow)
	logger.Log.Info().Str("addr", p.RedisAddr).Msg("using redis email rate limiter")
	return nil
}

func loadTemplates(ctx context.Context, cfg *config.Config) (*render.Templates, error) {
	var fsys fs.FS = templates.FS
	reload := cfg.IsDevelopment() && cfg.Public.TemplatesDir != ""
	if reload {
		fsys = os.DirFS(cfg.Public.TemplatesDir)
	}

	tmpl, err := render.Load(fsys, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if reload {
		tmpl.StartReloader(ctx, templateReloadInterval)
		logger.Log.Info().Str("dir", cfg.Public.TemplatesDir).Msg("reloading templates from disk")
	}
	return tmpl, nil
}

// Close stops background work and ends every signup session.
func (d *Dependencies) Close() {
	d.cancel()
	if d.Sessions != nil {
		d.Sessions.Close()
	}
	if d.memLimiter != nil {
		d.memLimiter.Stop()
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}
