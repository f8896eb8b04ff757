package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/renovation-advisor/internal/config"
	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
	httpapi "github.com/denisok6893-rgb/renovation-advisor/internal/http"
	"github.com/denisok6893-rgb/renovation-advisor/internal/leads"
	"github.com/denisok6893-rgb/renovation-advisor/internal/logging"
	"github.com/denisok6893-rgb/renovation-advisor/internal/propertydata"
	"github.com/denisok6893-rgb/renovation-advisor/internal/recommend"
	"github.com/denisok6893-rgb/renovation-advisor/internal/storage"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "renovation-advisor",
		Short:         "Renovation recommendations for property leads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", getEnv("RENO_CONFIG", "configs/config.toml"), "path to TOML config file")

	root.AddCommand(newServeCmd(), newRecommendCmd())
	return root
}

// loadConfig falls back to defaults plus environment when the file is absent.
func loadConfig() (*config.Config, bool, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Load("")
		return cfg, false, err
	}
	return cfg, true, err
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, fromFile, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if !fromFile {
				logger.Info("config file not found, using defaults", zap.String("path", configPath))
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	engine := recommend.NewEngine(recommend.WithLimits(cfg.Recommend))

	var deps []func(*httpapi.Server)
	var lookup propertydata.Lookuper
	if cfg.PropertyData.BaseURL != "" {
		lookup = propertydata.NewClient(cfg.PropertyData)
		switch cfg.Cache.Backend {
		case "redis":
			rc := propertydata.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
			defer rc.Close()
			lookup = propertydata.NewCachedLookup(lookup, rc, config.Duration(cfg.Cache.TTL), logger)
			deps = append(deps, func(s *httpapi.Server) { s.AddDependency("cache", rc) })
		case "memory":
			lookup = propertydata.NewCachedLookup(lookup, propertydata.NewMemoryCache(), config.Duration(cfg.Cache.TTL), logger)
		}
	} else {
		logger.Warn("property_data.base_url not set, leads are scored from defaults")
	}

	svc := leads.NewService(store, lookup, engine, logger,
		leads.WithLookupTimeout(config.Duration(cfg.PropertyData.Timeout)))

	srv := httpapi.NewServer(engine, svc, logger)
	srv.AddDependency("storage", store)
	for _, d := range deps {
		d(srv)
	}
	if cfg.RateLimit.Enabled {
		srv.Limiter = httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, config.Duration(cfg.RateLimit.IdleTimeout))
		defer srv.Limiter.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Routes(),
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
		logger.Info("shutting down server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

type recommendFlags struct {
	record    string
	address   string
	sqft      int
	bedrooms  int
	bathrooms float64
	value     float64
	count     int
}

func newRecommendCmd() *cobra.Command {
	var f recommendFlags
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print recommendations for a property record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			var record []byte
			if f.record != "" {
				record, err = storage.LoadRecordFromFile(f.record)
				if err != nil {
					return err
				}
			}

			res := recommend.NewEngine(recommend.WithLimits(cfg.Recommend)).
				Recommend(record, f.overrides(cmd), f.count)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&f.record, "record", "", "path to a property record JSON file")
	cmd.Flags().StringVar(&f.address, "address", "", "property address")
	cmd.Flags().IntVar(&f.sqft, "sqft", 0, "square footage override")
	cmd.Flags().IntVar(&f.bedrooms, "bedrooms", 0, "bedroom count override")
	cmd.Flags().Float64Var(&f.bathrooms, "bathrooms", 0, "bathroom count override")
	cmd.Flags().Float64Var(&f.value, "value", 0, "estimated value override")
	cmd.Flags().IntVar(&f.count, "count", 0, "number of recommendations (0 uses the default)")
	return cmd
}

// overrides includes only flags the user actually set.
func (f recommendFlags) overrides(cmd *cobra.Command) domain.FormOverrides {
	o := domain.FormOverrides{Address: f.address}
	if cmd.Flags().Changed("sqft") {
		o.SquareFootage = &f.sqft
	}
	if cmd.Flags().Changed("bedrooms") {
		o.Bedrooms = &f.bedrooms
	}
	if cmd.Flags().Changed("bathrooms") {
		o.Bathrooms = &f.bathrooms
	}
	if cmd.Flags().Changed("value") {
		o.EstimatedValue = &f.value
	}
	return o
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
