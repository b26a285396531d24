package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/account"
	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/config"
	infraauth "github.com/amirhosseinghanipour/accountd/internal/infrastructure/auth"
	httprouter "github.com/amirhosseinghanipour/accountd/internal/infrastructure/http"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/middleware"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/notify"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/persistence/memory"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/persistence/migrations"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/persistence/postgres"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/queue"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()

	var (
		pool     *pgxpool.Pool
		accounts ports.AccountRepository
		projects ports.ProjectRepository
		uow      ports.UnitOfWork
	)
	if cfg.Database.URL != "" {
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse DATABASE_URL")
		}
		poolCfg.MaxConns = cfg.Database.MaxConns
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping database")
		}
		if cfg.Database.AutoMigrate {
			if err := migrations.RunWithPool(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("run migrations")
			}
		}
		accounts = postgres.NewAccountRepository(pool)
		projects = postgres.NewProjectRepository(pool)
		uow = postgres.NewUnitOfWork(pool)
	} else {
		log.Warn().Msg("DATABASE_URL not set; using in-memory store")
		store := memory.NewStore()
		accounts = store.Accounts()
		projects = store.Projects()
		uow = store
	}

	var mailer ports.Mailer
	if cfg.Mail.RelayURL != "" {
		var opts []notify.HTTPMailerOption
		if cfg.Mail.AuthToken != "" {
			opts = append(opts, notify.WithHeader("Authorization", "Bearer "+cfg.Mail.AuthToken))
		}
		mailer = notify.NewHTTPMailer(cfg.Mail.RelayURL, cfg.Mail.From, opts...)
	} else {
		log.Warn().Msg("MAIL_RELAY_URL not set; activation mail is logged only")
		mailer = notify.NewLogMailer(log)
	}

	links, err := queue.NewActivationLinks(cfg.Activation.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse ACTIVATION_BASE_URL")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; delivering activation mail inline")
			redisClient = nil
		}
	}

	var notifier ports.ActivationNotifier
	var worker *queue.Worker
	var inline *queue.InlineNotifier
	if redisClient != nil {
		opt := redisClient.Options()
		asynqOpt := asynq.RedisClientOpt{Addr: opt.Addr, Username: opt.Username, Password: opt.Password, DB: opt.DB}
		enqueuer := queue.NewAsynqEnqueuer(asynqOpt, links, log)
		defer enqueuer.Close()
		notifier = enqueuer
		worker = queue.NewWorker(asynqOpt, cfg.Worker.Concurrency, mailer, log)
		go func() {
			if err := worker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		inline = queue.NewInlineNotifier(mailer, links, log)
		notifier = inline
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})
	digester := security.NewSHA256Digester()

	privateKey, ephemeral, err := infraauth.LoadSigningKey(cfg.JWT.PrivateKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	if ephemeral {
		log.Warn().Msg("JWT_PRIVATE_KEY_PATH not set; access tokens will not survive a restart")
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	activation := account.NewActivationWorkflow(accounts, digester, notifier, log)
	accountsHandler := handlers.NewAccountsHandler(handlers.AccountUseCases{
		Register:   account.NewRegistrar(accounts, hasher, activation),
		Activation: activation,
		List:       account.NewListAccounts(accounts),
		Get:        account.NewGetAccount(accounts, projects),
		Edit:       account.NewEditAccount(accounts),
		Update:     account.NewUpdateAccount(accounts, hasher),
		Delete:     account.NewDeleteAccount(uow),
	}, log)
	sessionsHandler := handlers.NewSessionsHandler(account.NewSignIn(accounts, hasher, issuer, cfg.AccessTTL()), log)

	var oauthHandler *handlers.OAuthHandler
	if handlers.InitOAuthProviders(handlers.OAuthConfig{
		CallbackBaseURL:    cfg.OAuth.CallbackBaseURL,
		SessionSecret:      cfg.OAuth.SessionSecret,
		SecureCookies:      !cfg.Secure.IsDevelopment,
		GitHubClientID:     cfg.OAuth.GitHubClientID,
		GitHubClientSecret: cfg.OAuth.GitHubClientSecret,
	}) {
		federated := account.NewFederatedSignIn(accounts, hasher, digester, issuer, cfg.AccessTTL())
		oauthHandler = handlers.NewOAuthHandler(federated, cfg.OAuth.RedirectURL, log)
	}

	router := httprouter.NewRouter(httprouter.RouterConfig{
		Accounts:      accountsHandler,
		Sessions:      sessionsHandler,
		OAuth:         oauthHandler,
		HealthHandler: handlers.NewHealthHandler(pool, redisClient),
		Actor:         middleware.NewActorResolver(issuer, accounts, log).Handler,
		Log:           log,
		Secure:        middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment)),
		CORSOrigins:   cfg.CORS.AllowedOrigins,
		APIVersion:    cfg.APIVersion,
		Metrics:       true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if worker != nil {
		worker.Shutdown()
	}
	if inline != nil {
		inline.Wait()
	}
	log.Info().Msg("server stopped")
}
