package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpupo63/project-showcase-backend/api"
	"github.com/rpupo63/project-showcase-backend/auth"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Runs the HTTP API until SIGINT or SIGTERM.

Sessions are revoked in Redis when REDIS_URL is set and in process memory
otherwise. Screenshot uploads are enabled when S3_BUCKET is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "How long to wait for in-flight requests on shutdown")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("error migrating database: %w", err)
		}
	}

	revoker, closeRevoker, err := newRevoker(ctx)
	if err != nil {
		return err
	}
	defer closeRevoker()
	issuer := auth.NewIssuer(cfg.Session.Secret, cfg.Session.TTL, revoker)

	var uploader storage.Uploader
	if cfg.Storage.Bucket != "" {
		s3Uploader, err := storage.NewS3Uploader(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("error configuring screenshot storage: %w", err)
		}
		uploader = s3Uploader
	} else {
		log.Warn().Msg("S3_BUCKET not set, screenshot uploads are disabled")
	}

	server := api.NewServer(cfg, db, issuer, uploader)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		return server.ShutdownGracefully(shutdownTimeout)
	})
	return g.Wait()
}

func openDatabase(ctx context.Context) (database.Database, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return database.Database{}, fmt.Errorf("error connecting to database: %w", err)
	}
	return db, nil
}

// newRevoker picks the session revocation store and returns its closer.
func newRevoker(ctx context.Context) (auth.Revoker, func(), error) {
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, revoked sessions are kept in memory")
		return auth.NewMemoryRevoker(), func() {}, nil
	}

	client, err := auth.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	return auth.NewRedisRevoker(client), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}, nil
}
