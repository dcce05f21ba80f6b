package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"medical-booking/internal/appointments"
	"medical-booking/internal/auth"
	"medical-booking/internal/config"
	"medical-booking/internal/console"
	"medical-booking/internal/directory"
	"medical-booking/internal/kv"
	"medical-booking/internal/logging"
	"medical-booking/internal/metrics"
	"medical-booking/internal/model"
	"medical-booking/internal/store"
	"medical-booking/internal/workflow"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "booking",
		Short: "Book medical appointments from the terminal",
	}
	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(listCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs: settings, logger, the signed-in
// patient and the key-value backend.
type env struct {
	cfg     *config.Config
	logger  zerolog.Logger
	claims  *auth.Claims
	backend appointments.KV
	close   func()
}

// setup logs to logOut so diagnostics never interleave with the wizard on
// stdout.
func setup(ctx context.Context, logOut io.Writer) (*env, error) {
	cfg := config.Load()
	logger := logging.NewWithWriter(logOut, cfg.LogLevel, cfg.IsDev())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("ACCESS_TOKEN is required")
	}
	claims, err := auth.ParseToken(cfg.AccessToken, cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	backend, closeFn, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("backend", cfg.StoreBackend).Str("patient_id", claims.UserID).Msg("session ready")
	return &env{cfg: cfg, logger: logger, claims: claims, backend: backend, close: closeFn}, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (appointments.KV, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return kv.NewRedis(client, ""), func() { client.Close() }, nil
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		return store.New(pool), pool.Close, nil
	default:
		return kv.NewMemory(), func() {}, nil
	}
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start the booking wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := setup(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
				srv := &http.Server{
					Addr:              addr,
					Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						e.logger.Warn().Err(err).Msg("metrics server stopped")
					}
				}()
				defer srv.Close()
			}

			client, err := directory.Dial(e.cfg.DirectoryAddr, e.cfg.AccessToken)
			if err != nil {
				return err
			}
			defer client.Close()

			cached := directory.NewCached(client, e.backend, e.cfg.DirectoryCacheKey, e.logger)
			loader := directory.NewLoader(cached, e.logger).
				WithDelay(e.cfg.DirectoryRetryDelay).
				WithMetrics(m)

			wf := workflow.New(workflow.Config{
				Loader:   loader,
				Repo:     appointments.NewRepository(e.backend),
				Identity: e.claims,
				Logger:   e.logger,
				Metrics:  m,
				OnComplete: func(a model.Appointment) {
					e.logger.Debug().Str("appointment_id", a.ID).Msg("returning to appointment list")
				},
			})
			wf.Start()

			out, err := console.New(wf, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
			if err != nil {
				return err
			}
			if !out.Booked {
				fmt.Fprintln(cmd.OutOrStdout(), "nenhuma consulta agendada")
			}
			return nil
		},
	}
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the signed-in patient's appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			list, err := appointments.NewRepository(e.backend).ListForPatient(cmd.Context(), e.claims.UserID)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nenhuma consulta encontrada")
				return nil
			}
			for _, a := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s  %s (%s)  %s\n",
					a.ID, a.Date, a.Time, a.DoctorName, a.Specialty, a.Status)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print as JSON")
	return cmd
}
