package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/casedash/casedash/internal/config"
	"github.com/casedash/casedash/internal/dataset"
	"github.com/casedash/casedash/internal/domain/cases"
	"github.com/casedash/casedash/internal/domain/cohort"
	"github.com/casedash/casedash/internal/domain/explore"
	"github.com/casedash/casedash/internal/platform/auth"
	"github.com/casedash/casedash/internal/platform/db"
	"github.com/casedash/casedash/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "casedash-server",
		Short: "Surgical case analytics API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(datasetCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the analytics API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func datasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect and load the case dataset",
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse a dataset CSV and report decode issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			recs, st, err := dataset.DecodeFile(file)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d columns, %d rows, %d cases decoded, %d rows skipped\n",
				file, st.Columns, st.Rows, st.Decoded, st.SkippedRow)
			missingAge := 0
			for _, sc := range recs {
				if sc.Age == nil {
					missingAge++
				}
			}
			fmt.Printf("records missing age: %d\n", missingAge)
			return nil
		},
	}
	validateCmd.Flags().String("file", "./data/cases.csv", "Path to the dataset CSV")
	cmd.AddCommand(validateCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print summary statistics per numeric field",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			recs, _, err := dataset.DecodeFile(file)
			if err != nil {
				return err
			}
			fields := []string{"age", "height", "weight", "bmi", "asa", "icu_days", "intraop_ebl"}
			fmt.Printf("%-12s %8s %10s %10s %10s %10s\n", "FIELD", "COUNT", "MEAN", "MEDIAN", "MIN", "MAX")
			for _, field := range fields {
				var vals []float64
				for _, sc := range recs {
					if v, ok := sc.Num(field); ok {
						vals = append(vals, v)
					}
				}
				if len(vals) == 0 {
					fmt.Printf("%-12s %8d\n", field, 0)
					continue
				}
				mean, _ := stats.Mean(vals)
				median, _ := stats.Median(vals)
				min, _ := stats.Min(vals)
				max, _ := stats.Max(vals)
				fmt.Printf("%-12s %8d %10.2f %10.2f %10.2f %10.2f\n", field, len(vals), mean, median, min, max)
			}
			return nil
		},
	}
	statsCmd.Flags().String("file", "./data/cases.csv", "Path to the dataset CSV")
	cmd.AddCommand(statsCmd)

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Bulk-load a dataset CSV into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for dataset load")
			}

			recs, st, err := dataset.DecodeFile(file)
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			n, err := cases.BulkInsert(ctx, pool, recs)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d of %d decoded cases into surgery_case.\n", n, st.Decoded)
			return nil
		},
	}
	loadCmd.Flags().String("file", "./data/cases.csv", "Path to the dataset CSV")
	cmd.AddCommand(loadCmd)

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool()
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(context.Background(), pool); err != nil {
				return err
			}
			fmt.Println("Schema applied.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show schema status",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool()
			if err != nil {
				return err
			}
			defer pool.Close()
			st, err := db.Inspect(context.Background(), pool)
			if err != nil {
				return err
			}
			if !st.TableExists {
				fmt.Println("surgery_case: missing (run migrate up)")
				return nil
			}
			fmt.Printf("surgery_case: present, %d rows\n", st.Rows)
			return nil
		},
	})

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AuthSecret == "" {
				return fmt.Errorf("AUTH_SECRET is not configured")
			}
			token, err := auth.Sign(cfg.AuthSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("subject", "ops", "Token subject")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func openPool() (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Dataset
	store := dataset.NewStore(cfg.DatasetPath, logger)
	if err := store.Load(); err != nil {
		logger.Fatal().Err(err).Msg("failed to load dataset")
	}

	// Optional Postgres-backed case browsing
	var caseRepo cases.Repository = cases.NewMemRepo(store)
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		caseRepo = cases.NewPGRepo(pool)
		logger.Info().Msg("case browsing backed by postgres")
	}

	e := buildServer(cfg, logger, store, caseRepo)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// buildServer wires the echo instance: middleware, routes, health check.
func buildServer(cfg *config.Config, logger zerolog.Logger, store *dataset.Store, caseRepo cases.Repository) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API groups; admin carries auth when a secret is configured.
	apiV1 := e.Group("/api/v1")
	admin := e.Group("/api/v1", auth.Middleware(cfg.AuthSecret))

	tol := cohort.Tolerances{
		Age:    cfg.AgeTolerance,
		BMI:    cfg.BMITolerance,
		Height: cfg.HeightTolerance,
		ASA:    cfg.ASATolerance,
	}
	cohortHandler := cohort.NewHandler(cohort.NewService(store, tol))
	cohortHandler.RegisterRoutes(apiV1)

	exploreHandler := explore.NewHandler(explore.NewService(store))
	exploreHandler.RegisterRoutes(apiV1)

	casesHandler := cases.NewHandler(cases.NewService(caseRepo), store)
	casesHandler.RegisterRoutes(apiV1, admin)

	e.GET("/health", func(c echo.Context) error {
		id, at := store.Snapshot()
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"cases":     store.Len(),
			"snapshot":  id,
			"loaded_at": at,
		})
	})

	return e
}
