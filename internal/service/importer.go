package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sun-sentiment/article-importer/internal/config"
	"github.com/sun-sentiment/article-importer/internal/dialect"
	"github.com/sun-sentiment/article-importer/internal/models"
	"github.com/sun-sentiment/article-importer/internal/storage"
	"github.com/sun-sentiment/article-importer/pkg/log"
)

// Import выполняет один запуск: каждый файл источника проходит
// чтение -> приведение к канону -> валидацию -> дедупликацию -> upsert
// в собственной транзакции.
//
// Особенности:
//   - платформа проверяется один раз до чтения файлов;
//   - при fail-fast первая ошибка останавливает импорт, оставшиеся файлы
//     попадают в отчёт со статусом not_started;
//   - при skip-file упавшие файлы пропускаются, но итог всё равно ошибка
//     со всеми причинами.
//
// Отчёт возвращается и вместе с ошибкой, если до файлов дело дошло.
func (s *Service) Import(ctx context.Context) (*models.RunReport, error) {
	const op = "service/importer/Import"

	d, schema, err := s.resolveDialect()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := &models.RunReport{
		RunID:      uuid.New(),
		PlatformID: s.cfg.Import.PlatformID,
		Dialect:    d.Name,
		StartedAt:  time.Now().UTC(),
	}

	ctx, lg := log.With(ctx,
		slog.String("run_id", report.RunID.String()),
		slog.String("dialect", d.Name),
		slog.Int64("platform_id", report.PlatformID),
	)

	if _, err := s.articles.PlatformByID(ctx, report.PlatformID); err != nil {
		if errors.Is(err, storage.ErrPlatformNotFound) {
			return nil, fmt.Errorf("%s: %w: platform %d: %w", op, ErrConfiguration, report.PlatformID, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}

	files, err := s.sources.List(ctx, s.cfg.Import.Extension)
	if err != nil {
		if errors.Is(err, storage.ErrSourceNotFound) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrConfiguration, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}

	lg.Info("import_start",
		slog.String("op", op),
		slog.Int("files", len(files)),
		slog.String("on_error", string(s.policy())),
		slog.Int("chunk_size", s.cfg.Import.ChunkSize),
	)

	if len(files) == 0 {
		lg.Warn("import_no_files", slog.String("op", op), slog.String("ext", s.cfg.Import.Extension))
		return report, nil
	}

	var errs []error
	for i, name := range files {
		fr := s.importFile(ctx, d, schema, name)
		s.observer.ObserveFile(fr)
		report.Files = append(report.Files, fr)

		if fr.Err == nil {
			continue
		}
		errs = append(errs, fr.Err)

		if s.policy() == config.FailFast {
			for _, rest := range files[i+1:] {
				report.Files = append(report.Files, models.FileReport{File: rest, Status: models.FileNotStarted})
			}
			lg.Error("import_aborted",
				slog.String("op", op),
				slog.String("file", name),
				slog.Int("not_started", len(files)-i-1),
			)
			return report, fmt.Errorf("%s: %w", op, fr.Err)
		}
	}

	lg.Info("import_done",
		slog.String("op", op),
		slog.Int("imported", report.Imported()),
		slog.Int("failed", len(errs)),
		slog.Duration("took", time.Since(report.StartedAt)),
	)

	if len(errs) > 0 {
		return report, fmt.Errorf("%s: %d of %d files failed: %w", op, len(errs), len(files), errors.Join(errs...))
	}

	return report, nil
}

// resolveDialect находит диалект запуска и собирает для него схему.
func (s *Service) resolveDialect() (dialect.Dialect, Schema, error) {
	d, err := s.dialects.Lookup(s.cfg.Import.Dialect)
	if err != nil {
		return dialect.Dialect{}, nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	schema, err := SchemaFor(d)
	if err != nil {
		return dialect.Dialect{}, nil, err
	}

	return d, schema, nil
}

func (s *Service) policy() config.FailurePolicy {
	if s.cfg.Import.OnError == config.SkipFile {
		return config.SkipFile
	}

	return config.FailFast
}

// importFile обрабатывает один файл. Причина падения попадает
// в FileReport.Err как *FileError.
func (s *Service) importFile(ctx context.Context, d dialect.Dialect, schema Schema, name string) models.FileReport {
	const op = "service/importer/importFile"

	start := time.Now()
	fr := models.FileReport{File: name}

	ctx, lg := log.With(ctx, slog.String("file", name))
	if t := s.cfg.Timeouts.File; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	lg.Info("import_file_start", slog.String("op", op))

	err := s.runFile(ctx, d, schema, name, &fr)
	fr.Duration = time.Since(start)

	if err != nil {
		fr.Status = models.FileFailed
		fr.Err = &FileError{File: name, Processed: fr.Validated, Err: err}
		logFileError(lg, op, fr, err)
		return fr
	}

	fr.Status = models.FileImported
	lg.Info("import_file_done",
		slog.String("op", op),
		slog.Int("rows", fr.Rows),
		slog.Int("unique", fr.Unique),
		slog.Int64("upserted", fr.Upserted),
		slog.Duration("took", fr.Duration),
	)

	return fr
}

// runFile — конвейер одного файла. Счётчики пишет в fr по мере продвижения.
func (s *Service) runFile(ctx context.Context, d dialect.Dialect, schema Schema, name string, fr *models.FileReport) error {
	rc, err := s.sources.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open: %w: %w", ErrStorage, err)
	}
	defer rc.Close()

	rows, err := d.Read(ctx, rc)
	if err != nil {
		var perr *dialect.ParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		return fmt.Errorf("read: %w", err)
	}
	fr.Rows = len(rows)

	records, err := schema.Validate(name, d, rows)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			fr.Validated = verr.Validated
		}
		return err
	}
	fr.Validated = len(records)

	unique := Dedupe(records)
	fr.Unique = len(unique)

	if len(unique) == 0 {
		return nil
	}

	n, err := s.articles.UpsertArticles(ctx, s.cfg.Import.PlatformID, unique, s.cfg.Import.ChunkSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	fr.Upserted = n

	return nil
}

// logFileError пишет одну структурированную строку о падении файла.
func logFileError(lg *slog.Logger, op string, fr models.FileReport, err error) {
	attrs := []any{
		slog.String("op", op),
		slog.Int("rows", fr.Rows),
		slog.Int("validated", fr.Validated),
		slog.String("err", err.Error()),
	}

	var verr *ValidationError
	var perr *dialect.ParseError
	switch {
	case errors.As(err, &verr):
		attrs = append(attrs,
			slog.Int("line", verr.Line),
			slog.String("field", string(verr.Field)),
			slog.String("rule", verr.Rule),
			slog.Any("row", verr.Row),
		)
		lg.Error("validation_failed", attrs...)
	case errors.As(err, &perr):
		attrs = append(attrs, slog.Int("line", perr.Line))
		lg.Error("parse_failed", attrs...)
	case errors.Is(err, ErrStorage):
		lg.Error("storage_failed", attrs...)
	default:
		lg.Error("import_file_failed", attrs...)
	}
}
