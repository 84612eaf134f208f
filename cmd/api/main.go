package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "ownbank-account-service/internal/adapter/http"
	mwadp "ownbank-account-service/internal/adapter/middleware"
	"ownbank-account-service/internal/adapter/repository/mysql"
	"ownbank-account-service/internal/adapter/repository/redisstore"
	"ownbank-account-service/internal/config"
	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/auth"
	"ownbank-account-service/internal/infrastructure/broker"
	"ownbank-account-service/internal/infrastructure/cache"
	"ownbank-account-service/internal/infrastructure/db"
	"ownbank-account-service/internal/infrastructure/security"
	accountuc "ownbank-account-service/internal/usecase/account"
	"ownbank-account-service/internal/usecase/approval"
	"ownbank-account-service/internal/usecase/credential"
	"ownbank-account-service/internal/usecase/linking"
	"ownbank-account-service/internal/usecase/session"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), db.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	var (
		sessions auth.SessionStore
		limiter  *redisstore.AttemptLimiter
	)
	if rdb != nil {
		defer rdb.Close()
		sessions = redisstore.NewSessionStore(rdb)
		limiter = redisstore.NewAttemptLimiter(rdb, "login:attempts", cfg.LoginMaxAttempts, cfg.LoginWindow())
	} else {
		log.Printf("redis disabled: no idempotency, logout revocation or login throttling")
	}

	var publisher account.EventPublisher = broker.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := broker.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	}

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens, err := security.NewJWTService(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	accounts := mysql.NewAccountRepository(gdb)
	tx := mysql.NewGormUoW(gdb)
	resolver := credential.NewResolver(accounts, hasher)
	links := linking.NewMaintainer(accounts)

	accountUC := accountuc.NewUsecase(accounts, tx, hasher, resolver, links, publisher)
	approvalUC := approval.NewUsecase(accounts, tx, links, publisher)
	sessionSvc := session.NewService(accounts, resolver, links, tokens, sessions)

	if b := cfg.BootstrapAdmin; b.Number != "" {
		created, err := accountUC.Bootstrap(ctx, accountuc.CreateInput{
			AccountNumber: b.Number,
			AccountName:   b.Name,
			Email:         b.Email,
			Password:      b.Password,
		})
		if err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		if created {
			log.Printf("bootstrap admin %s created", b.Number)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			mwadp.HeaderRequestID, mwadp.HeaderRequestAt,
		},
	}))

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	checks := map[string]httpadp.HealthCheck{"db": sqlDB.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	httpadp.Register(e, httpadp.Routes{
		Health:         httpadp.NewHealthHandler(checks),
		Accounts:       httpadp.NewAccountHandler(accountUC),
		Sessions:       httpadp.NewSessionHandler(sessionSvc, cfg.CookieSecure),
		Approvals:      httpadp.NewApprovalHandler(approvalUC),
		Gate:           session.NewGate(accounts, tokens, sessions),
		LoginLimiter:   limiter,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
