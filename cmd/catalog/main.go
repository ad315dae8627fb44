package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/pkg/kit"
)

const createLimitWindow = time.Minute

type config struct {
	Port        string
	DataPath    string
	StoreDriver string
	DatabaseURL string
	StatsTTL    time.Duration
	CORSOrigins []string
	LogLevel    string

	MetricsEnabled bool
	MetricsToken   string

	CreateRatePerMin int
}

func loadConfig() (config, error) {
	cfg := config{
		Port:         getenv("PORT", "3001"),
		DataPath:     getenv("DATA_PATH", catalog.DefaultDataPath),
		StoreDriver:  getenv("STORE_DRIVER", "file"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MetricsToken: os.Getenv("METRICS_TOKEN"),
	}

	var err error
	if cfg.StatsTTL, err = time.ParseDuration(getenv("STATS_TTL", catalog.DefaultStatsTTL.String())); err != nil {
		return config{}, fmt.Errorf("STATS_TTL: %w", err)
	}
	if cfg.MetricsEnabled, err = strconv.ParseBool(getenv("METRICS_ENABLED", "false")); err != nil {
		return config{}, fmt.Errorf("METRICS_ENABLED: %w", err)
	}
	if cfg.CreateRatePerMin, err = strconv.Atoi(getenv("CREATE_RATE_LIMIT", "30")); err != nil {
		return config{}, fmt.Errorf("CREATE_RATE_LIMIT: %w", err)
	}

	for _, o := range strings.Split(getenv("CORS_ORIGIN", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

func main() {
	service := "catalog"

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("open store failed", zap.Error(err), zap.String("driver", cfg.StoreDriver))
	}
	defer closeStore()

	stats := catalog.NewStatsCache(store,
		catalog.WithTTL(cfg.StatsTTL),
		catalog.WithLogger(log.Named("stats")),
		catalog.WithCacheMetrics(catalog.NewCacheMetrics(reg)),
	)
	svc := catalog.NewService(store, stats, log)

	if fs, ok := store.(*catalog.FileStore); ok {
		fw, err := catalog.NewFileWatcher(fs.Path(), svc.StatsCache(), log.Named("watcher"))
		if err != nil {
			log.Fatal("file watcher failed", zap.Error(err), zap.String("path", fs.Path()))
		}
		go func() {
			if err := fw.Run(ctx); err != nil {
				log.Error("file watcher stopped", zap.Error(err))
			}
		}()
	}

	s := &catalog.Server{Service: svc, Log: log}
	if cfg.CreateRatePerMin > 0 {
		s.CreateLimiter = kit.NewIPRateLimiter(cfg.CreateRatePerMin, createLimitWindow)
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		CORSOrigins:    cfg.CORSOrigins,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config) (catalog.Store, func(), error) {
	switch cfg.StoreDriver {
	case "file":
		s := catalog.NewFileStore(cfg.DataPath)
		if err := s.Ping(ctx); err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "memory":
		return catalog.NewSampleStore(), func() {}, nil
	case "postgres", "sqlite":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for driver %q", cfg.StoreDriver)
		}
		d := catalog.Postgres
		if cfg.StoreDriver == "sqlite" {
			d = catalog.SQLite
		}
		s, err := catalog.OpenSQLStore(ctx, d, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
