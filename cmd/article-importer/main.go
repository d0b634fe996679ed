package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/sun-sentiment/article-importer/internal/config"
	"github.com/sun-sentiment/article-importer/internal/dialect"
	"github.com/sun-sentiment/article-importer/internal/metrics"
	"github.com/sun-sentiment/article-importer/internal/models"
	"github.com/sun-sentiment/article-importer/internal/service"
	"github.com/sun-sentiment/article-importer/internal/storage"
	"github.com/sun-sentiment/article-importer/internal/storage/localfs"
	"github.com/sun-sentiment/article-importer/internal/storage/minio"
	"github.com/sun-sentiment/article-importer/internal/storage/postgres"
	"github.com/sun-sentiment/article-importer/pkg/log"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		slog.Error("import_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article-importer [file-or-directory]",
		Short: "Import crawled news-article CSV files into PostgreSQL",
		Long: "Reads one CSV file or every file with the configured extension in a directory\n" +
			"(or S3 prefix), validates rows, deduplicates by url and upserts them into articles.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	// Заданные флаги перекрывают значения из файла и ENV.
	f := cmd.Flags()
	f.String("config", "", "path to config file (overrides CONFIG_PATH env)")
	f.String("dialect", "", "CSV dialect name")
	f.String("dialects-file", "", "YAML file with additional dialects")
	f.Int64("platform-id", 0, "platforms.id assigned to every imported row")
	f.Int("chunk-size", 0, "rows per INSERT statement")
	f.String("ext", "", "file extension to pick up in directory mode")
	f.String("on-error", "", "directory failure policy: fail-fast or skip-file")

	return cmd
}

// loadConfig читает конфиг и накладывает поверх явно заданные флаги
// и позиционный аргумент (путь к файлу или каталогу).
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	f := cmd.Flags()

	path, _ := f.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if f.Changed("dialect") {
		cfg.Import.Dialect, _ = f.GetString("dialect")
	}
	if f.Changed("dialects-file") {
		cfg.Import.DialectsFile, _ = f.GetString("dialects-file")
	}
	if f.Changed("platform-id") {
		cfg.Import.PlatformID, _ = f.GetInt64("platform-id")
	}
	if f.Changed("chunk-size") {
		cfg.Import.ChunkSize, _ = f.GetInt("chunk-size")
	}
	if f.Changed("ext") {
		cfg.Import.Extension, _ = f.GetString("ext")
	}
	if f.Changed("on-error") {
		v, _ := f.GetString("on-error")
		cfg.Import.OnError = config.FailurePolicy(v)
	}
	if len(args) == 1 {
		cfg.Import.Source = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	lg := setupLogger(cfg.Env)
	slog.SetDefault(lg)
	ctx = log.Into(ctx, lg)

	lg.Info("starting article-importer",
		slog.String("env", cfg.Env),
		slog.String("source", cfg.Import.Source),
		slog.Bool("s3", cfg.S3.Enabled()),
	)

	registry := dialect.NewRegistry()
	if cfg.Import.DialectsFile != "" {
		if err := registry.LoadFile(cfg.Import.DialectsFile); err != nil {
			return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
		}
		lg.Info("dialects_loaded", slog.Any("dialects", registry.Names()))
	}

	src, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := postgres.New(ctx, cfg.DB)
	if err != nil {
		lg.Error("postgres_connect_failed", slog.String("err", err.Error()))
		return err
	}
	defer store.Close()
	lg.Info("postgres_connected")

	collector := metrics.New(cfg.Import.Dialect, cfg.Import.PlatformID)
	svc := service.New(store, src, registry, collector, *cfg)

	report, err := svc.Import(ctx)

	if report != nil {
		logSummary(lg, report)
	}
	if path := cfg.Metrics.Textfile; path != "" {
		if mErr := collector.WriteTextfile(path); mErr != nil {
			lg.Warn("metrics_write_failed", slog.String("path", path), slog.String("err", mErr.Error()))
		}
	}

	return err
}

// openSource выбирает источник файлов: бакет S3 или локальная ФС.
func openSource(ctx context.Context, cfg *config.Config) (storage.SourceStorage, error) {
	if cfg.S3.Enabled() {
		src, err := minio.New(ctx, cfg.S3, cfg.Import.Source)
		if err != nil {
			return nil, sourceErr(err)
		}
		return src, nil
	}

	src, err := localfs.New(cfg.Import.Source)
	if err != nil {
		return nil, sourceErr(err)
	}
	return src, nil
}

func sourceErr(err error) error {
	if errors.Is(err, storage.ErrSourceNotFound) {
		return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}
	return err
}

func logSummary(lg *slog.Logger, r *models.RunReport) {
	for _, f := range r.Files {
		if f.Status == models.FileNotStarted {
			lg.Warn("file_not_started", slog.String("file", f.File))
		}
	}

	lg.Info("import_summary",
		slog.String("run_id", r.RunID.String()),
		slog.Int("files", len(r.Files)),
		slog.Int("imported", r.Imported()),
		slog.Int("failed", len(r.Failed())),
	)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case envLocal:
		fallthrough
	default:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return logger
}
