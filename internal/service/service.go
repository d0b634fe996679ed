// service содержит конвейер импорта: чтение CSV по диалекту,
// валидацию, дедупликацию и запись в хранилище.
package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/sun-sentiment/article-importer/internal/config"
	"github.com/sun-sentiment/article-importer/internal/dialect"
	"github.com/sun-sentiment/article-importer/internal/models"
	"github.com/sun-sentiment/article-importer/internal/storage"
)

var (
	// ErrConfiguration — импорт не может начаться: нет платформы, источника,
	// неизвестный диалект или битые правила валидации.
	ErrConfiguration = config.ErrConfiguration
	// ErrParse — файл не разбирается как CSV по выбранному диалекту.
	ErrParse = errors.New("parse error")
	// ErrValidation — строка не прошла схему записи.
	ErrValidation = errors.New("validation failed")
	// ErrStorage — ошибка чтения источника или записи в БД.
	ErrStorage = errors.New("storage error")
)

// ValidationError — первая строка файла, не прошедшая схему.
type ValidationError struct {
	File string
	// Line — номер строки данных (с 1).
	Line int
	// Row — строка в том виде, в каком она пришла из файла.
	Row   map[string]string
	Field dialect.Field
	// Rule — имя нарушенного правила (required, absurl, datetime, ...).
	Rule  string
	Value string
	// Validated — сколько строк файла прошло проверку до этой.
	Validated int
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "row %d: field %s failed %q", e.Line, e.Field, e.Rule)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	fmt.Fprintf(&b, ", %d rows validated before it", e.Validated)
	if len(e.Row) > 0 {
		b.WriteString(", row: {")
		for i, k := range slices.Sorted(maps.Keys(e.Row)) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%q", k, e.Row[k])
		}
		b.WriteString("}")
	}

	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FileError — файл не импортирован; транзакция по нему откатилась.
type FileError struct {
	File string
	// Processed — строк, успешно провалидированных до ошибки.
	Processed int
	Err       error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s (processed %d rows): %v", e.File, e.Processed, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Observer получает итог каждого файла (метрики прогона).
type Observer interface {
	ObserveFile(models.FileReport)
}

type nopObserver struct{}

func (nopObserver) ObserveFile(models.FileReport) {}

// Service — оркестратор импорта.
type Service struct {
	articles storage.ArticlesStorage
	sources  storage.SourceStorage
	dialects *dialect.Registry
	observer Observer
	cfg      config.Config
}

// New создает новый экземпляр Service. observer может быть nil.
func New(
	articles storage.ArticlesStorage,
	sources storage.SourceStorage,
	dialects *dialect.Registry,
	observer Observer,
	cfg config.Config,
) *Service {
	if observer == nil {
		observer = nopObserver{}
	}

	return &Service{
		articles: articles,
		sources:  sources,
		dialects: dialects,
		observer: observer,
		cfg:      cfg,
	}
}
