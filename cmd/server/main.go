package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"medical-booking/internal/appointments"
	"medical-booking/internal/auth"
	"medical-booking/internal/config"
	"medical-booking/internal/directory"
	"medical-booking/internal/logging"
	"medical-booking/internal/middleware"
	"medical-booking/internal/model"
	"medical-booking/internal/store"
	"medical-booking/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "directory-server",
		Short: "Doctor directory gRPC service and HTTP API",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC and HTTP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			migration, _ := cmd.Flags().GetString("migration")
			return runServer(migration)
		},
	}
	cmd.Flags().String("migration", "db/migrations/001_init.sql", "SQL applied on startup")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample doctor accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			st := store.New(pool)
			for _, a := range sampleDoctors() {
				if err := st.UpsertAccount(ctx, &a); err != nil {
					return fmt.Errorf("seed %s: %w", a.Email, err)
				}
				logger.Info().Str("id", a.ID).Str("name", a.Name).Msg("doctor seeded")
			}
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an access token for a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			uid, _ := cmd.Flags().GetString("user-id")
			name, _ := cmd.Flags().GetString("name")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if uid == "" {
				uid = uuid.NewString()
			}
			tok, err := auth.MakeToken(uid, name, cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("user-id", "", "patient id (random when empty)")
	cmd.Flags().String("name", "", "patient display name")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.IsDev())
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

func connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}

func runServer(migrationPath string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	if migration, err := os.ReadFile(migrationPath); err != nil {
		logger.Warn().Err(err).Msg("migration file not found, skipping")
	} else if _, err := pool.Exec(ctx, string(migration)); err != nil {
		logger.Warn().Err(err).Msg("migration failed")
	} else {
		logger.Info().Msg("migration applied")
	}

	st := store.New(pool)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Close()

	srv, hs := newGRPCServer(cfg.JWTSecret, rl, st, logger)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		logger.Info().Str("port", cfg.GRPCPort).Msg("grpc listening")
		if err := srv.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc stopped")
		}
	}()

	httpSrv := &http.Server{
		Addr: ":" + cfg.WebPort,
		Handler: web.New(web.Config{
			Logger:       logger,
			DB:           pool,
			Doctors:      st,
			Appointments: appointments.NewRepository(st),
			Gatherer:     reg,
			Limiter:      rl,
			JWTSecret:    cfg.JWTSecret,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("port", cfg.WebPort).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	hs.Shutdown()
	srv.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// sampleDoctors derives ids from the email so reseeding updates in place.
// newGRPCServer serves the directory behind auth and rate limiting, plus the
// standard health service, which the auth interceptor leaves open.
func newGRPCServer(secret string, rl *middleware.RateLimiter, src directory.AccountSource, logger zerolog.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl),
			middleware.Auth(secret),
		),
	)
	directory.NewServer(src, logger).Register(srv)

	hs := health.NewServer()
	hs.SetServingStatus(directory.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

func sampleDoctors() []model.Account {
	doctor := func(name, email, specialty string) model.Account {
		a := model.Account{
			ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
			Name:  name,
			Email: email,
			Role:  model.RoleDoctor,
		}
		if specialty != "" {
			a.Specialty = &specialty
		}
		return a
	}
	return []model.Account{
		doctor("Dra. Ana Souza", "ana.souza@medicalapp.dev", "Cardiologia"),
		doctor("Dr. Bruno Lima", "bruno.lima@medicalapp.dev", "Dermatologia"),
		doctor("Dra. Carla Mendes", "carla.mendes@medicalapp.dev", "Pediatria"),
		doctor("Dr. Diego Rocha", "diego.rocha@medicalapp.dev", ""),
	}
}
