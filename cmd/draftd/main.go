// draftd runs the draft coordination service: the draft state machine and
// finalizer behind a JSON API, the outbox relay into NATS JetStream, and
// the websocket gateway fanning committed events out to draft rooms.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cdurbin34/draftroom/internal/config"
	"github.com/cdurbin34/draftroom/internal/draft/draft"
	"github.com/cdurbin34/draftroom/internal/draft/finalize"
	"github.com/cdurbin34/draftroom/internal/draft/gateway"
	"github.com/cdurbin34/draftroom/internal/draft/outbox"
	"github.com/cdurbin34/draftroom/internal/draft/pick"
	"github.com/cdurbin34/draftroom/internal/notify"
	"github.com/cdurbin34/draftroom/internal/roster"
	storepg "github.com/cdurbin34/draftroom/internal/store/postgres"
	"github.com/cdurbin34/draftroom/internal/warroom"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	if err := applySchemas(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schemas")
	}

	log.Info().
		Str("database", cfg.DB.Database).
		Str("nats_url", cfg.NATS.URL).
		Str("port", cfg.HTTP.Port).
		Msg("starting draftd")

	// Document store and repositories.
	docs := storepg.New(pool, cfg.DB.DSN())
	draftRepo := draft.NewRepository(docs)
	pickRepo := pick.NewRepository(docs)
	warRoomRepo := warroom.NewRepository(docs)

	// Outbox and notifications.
	outboxRepo := outbox.NewRepository(pool)
	nc, err := nats.Connect(cfg.NATS.URL, nats.MaxReconnects(-1))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer nc.Close()
	notifier := notify.NewNATSNotifier(nc, "notifications.intent")

	// Domain apps.
	draftApp := draft.NewApp(draftRepo, pickRepo, outboxRepo, notifier)
	rosterSvc := roster.NewPostgresService(pool)
	finalizeApp := finalize.NewApp(draftRepo, pickRepo, rosterSvc, outboxRepo, notifier)
	warRoomApp := warroom.NewApp(warRoomRepo)

	// Outbox relay: Postgres LISTEN/NOTIFY into JetStream.
	jsCfg := outbox.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATS.URL
	publisher, err := outbox.NewJetStreamPublisher(jsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create JetStream publisher")
	}
	defer publisher.Close()

	relayCfg := outbox.DefaultListenerConfig()
	relayCfg.DatabaseURL = cfg.DB.DSN()
	relay, err := outbox.NewListener(outboxRepo, publisher, relayCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create outbox relay")
	}

	// Websocket gateway fed by the JetStream consumer.
	manager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	consumerCfg := gateway.DefaultConsumerConfig()
	consumerCfg.URL = cfg.NATS.URL
	consumer, err := gateway.NewEventConsumer(manager, consumerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway consumer")
	}
	defer consumer.Stop()

	server := setupServer(cfg, &handlers{
		drafts:           draftApp,
		finalize:         finalizeApp,
		warRooms:         warRoomApp,
		pickTimerDefault: cfg.Draft.DefaultPickTimerSec,
	}, manager)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return relay.Start(gctx)
	})
	g.Go(func() error {
		manager.Start(gctx)
		return nil
	})
	g.Go(func() error {
		if err := consumer.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("draftd exited with error")
		os.Exit(1)
	}
	log.Info().Msg("draftd shut down cleanly")
}

// applySchemas creates the service tables if they do not exist yet.
func applySchemas(ctx context.Context, pool *pgxpool.Pool) error {
	for _, schema := range []string{storepg.Schema, outbox.Schema, roster.Schema} {
		if _, err := pool.Exec(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}
