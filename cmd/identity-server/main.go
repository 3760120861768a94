package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	identity "github.com/goliatone/go-identity"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg, err := identity.NewEnvConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if _, err := db.NewCreateTable().
		Model((*identity.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		log.Fatalf("create users table: %v", err)
	}

	repos := identity.NewRepositoryManager(db)
	repos.MustValidate()

	directory := repos.Users()
	codec := identity.NewTokenCodec(cfg)
	notifier := identity.StdoutNotifier{}

	audit := identity.ActivitySinkFunc(func(_ context.Context, event identity.ActivityEvent) error {
		log.Printf("activity: %s email=%s user=%s", event.EventType, event.Email, event.UserID)
		return nil
	})

	registrar := identity.NewRegisterUserHandler(directory, codec, notifier).
		WithTokenTTL(cfg.GetActivationTTL()).
		WithActivitySink(audit)
	activator := identity.NewActivateUserHandler(directory, codec).
		WithActivitySink(audit)
	sessions := identity.NewSessionIssuer(directory, codec, cfg).
		WithActivitySink(audit)

	controller := identity.NewController(
		identity.WithHandlers(registrar, activator, sessions, directory),
	)

	gate := identity.Protected(identity.GateConfig{
		Codec:       codec,
		Directory:   directory,
		TokenLookup: cfg.GetTokenLookup(),
		AuthScheme:  cfg.GetAuthScheme(),
	})

	app := fiber.New(fiber.Config{
		AppName: "identity-server",
	})

	identity.RegisterRoutes(app, controller, gate)

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
