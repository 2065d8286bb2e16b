// cmd/partner-dashboard/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"partner-dashboard/internal/common/auth"
	"partner-dashboard/internal/common/aws"
	"partner-dashboard/internal/common/config"
	"partner-dashboard/internal/common/database"
	"partner-dashboard/internal/common/logger"
	"partner-dashboard/internal/common/observability"
	"partner-dashboard/internal/dashboard/derive"
	"partner-dashboard/internal/dashboard/session"
	"partner-dashboard/internal/dashboard/webhook"
	"partner-dashboard/internal/notify"
	"partner-dashboard/internal/server"

	smc "partner-dashboard/internal/endpoints/auth/send-mfa-code"
	vp "partner-dashboard/internal/endpoints/auth/validate-password"
	pv "partner-dashboard/internal/endpoints/dashboard/partner-views"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting partner dashboard...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Notifications ---
	notifier := notify.Multi{notify.NewLogNotifier(log)}
	if sns := cfg.Integrations.AWS.SNS; sns.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		notifier = append(notifier, notify.NewSNSNotifier(client, sns.TopicARN))
		zapLog.Info("SNS notifications enabled", zap.String("topicArn", sns.TopicARN))
	}

	// --- Partner data ---
	deriveOpts := derive.Options{TopN: cfg.Dashboard.TopN, DormantDays: cfg.Dashboard.DormantDays}
	fetcher := webhook.NewClient(
		cfg.Dashboard.WebhookURL,
		config.GetDuration(cfg.Dashboard.RequestTimeout),
		deriveOpts,
		log,
	)
	store := session.NewStore(fetcher, notifier, obs, log)

	if cfg.Dashboard.SeedFile != "" {
		if err := store.LoadSeedFile(cfg.Dashboard.SeedFile, deriveOpts); err != nil {
			zapLog.Warn("seed file not loaded", zap.Error(err), zap.String("path", cfg.Dashboard.SeedFile))
		}
	}

	if cfg.Dashboard.RefreshOnStart {
		go func() {
			if _, err := store.Refresh(ctx); err != nil {
				zapLog.Warn("initial refresh failed", zap.Error(err))
			}
		}()
	}

	// --- Handlers ---
	partners, err := pv.NewHandler(pv.HandlerOptions{AppConfig: cfg, Logger: log, Store: store})
	if err != nil {
		zapLog.Fatal("failed to create partner-views handler", zap.Error(err))
	}

	mailer, err := smc.NewMailerFromConfig(ctx, cfg)
	if err != nil {
		zapLog.Fatal("failed to create mailer", zap.Error(err))
	}
	if mailer == nil {
		zapLog.Warn("no mail transport configured, MFA codes will be stored but not sent")
	}

	keycloak := auth.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		config.GetDuration(cfg.Auth.Keycloak.Timeout),
	)

	mfa, err := smc.NewHandler(smc.HandlerOptions{
		AppConfig: cfg,
		Logger:    log,
		Identity:  keycloak,
		Store:     smc.NewPostgresCodeStore(pg, log),
		Cooldown:  smc.NewRedisCooldown(redis),
		Mailer:    mailer,
	})
	if err != nil {
		zapLog.Fatal("failed to create send-mfa-code handler", zap.Error(err))
	}

	srv := server.New(server.Options{
		Addr:             cfg.Server.Addr(),
		ReadTimeout:      config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:     config.GetDuration(cfg.Server.WriteTimeout),
		Logger:           log,
		Partners:         partners,
		PasswordValidate: vp.NewHandler(log),
		SendMFACode:      mfa,
		Checks: map[string]server.Check{
			"postgres": pg.Ping,
			"redis":    redis.Ping,
		},
	})

	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("http server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("error during HTTP shutdown", zap.Error(err))
	}

	zapLog.Info("Partner dashboard stopped")
}
