package service

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sun-sentiment/article-importer/internal/dialect"
	"github.com/sun-sentiment/article-importer/internal/models"
)

// Validate проверяет строки файла по схеме и переводит их в записи.
// Первая же невалидная строка останавливает проверку: возвращается
// *ValidationError, частичный результат не отдаётся.
func (s Schema) Validate(file string, d dialect.Dialect, rows []dialect.Row) ([]models.Record, error) {
	out := make([]models.Record, 0, len(rows))

	for i, row := range rows {
		rec, verr := s.record(row.Line, d.Adapt(row.Raw))
		if verr != nil {
			verr.File = file
			verr.Row = row.Raw
			verr.Validated = i
			return nil, verr
		}
		out = append(out, rec)
	}

	return out, nil
}

// record проверяет одну каноническую строку.
func (s Schema) record(line int, canon map[string]string) (models.Record, *ValidationError) {
	vals := make(map[dialect.Field]string, len(dialect.CanonicalFields))
	for _, f := range dialect.CanonicalFields {
		v := strings.TrimSpace(canon[string(f)])
		vals[f] = v

		if err := validate.Var(v, s[f]); err != nil {
			return models.Record{}, fieldError(line, f, v, err)
		}
		if v == "" && slices.Contains(requiredFields, f) {
			return models.Record{}, &ValidationError{Line: line, Field: f, Rule: "required"}
		}
	}

	// url — естественный ключ: абсолютная ссылка при любых правилах диалекта.
	if !absoluteURL(vals[dialect.FieldURL]) {
		return models.Record{}, &ValidationError{
			Line: line, Field: dialect.FieldURL, Rule: "absurl", Value: vals[dialect.FieldURL],
		}
	}

	// Пробелы обрезаются только для проверки: title и content хранятся как есть.
	rec := models.Record{
		Line:    line,
		URL:     vals[dialect.FieldURL],
		Title:   canon[string(dialect.FieldTitle)],
		Content: canon[string(dialect.FieldContent)],
	}

	date, err := time.Parse(layout(s[dialect.FieldArticleDate], DateLayout), vals[dialect.FieldArticleDate])
	if err != nil {
		return models.Record{}, &ValidationError{
			Line: line, Field: dialect.FieldArticleDate, Rule: "datetime", Value: vals[dialect.FieldArticleDate],
		}
	}
	rec.ArticleDate = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	if v := vals[dialect.FieldAuthor]; v != "" {
		rec.Author = &v
	}

	if v := vals[dialect.FieldCrawlTimestamp]; v != "" {
		ts, err := time.Parse(layout(s[dialect.FieldCrawlTimestamp], TimestampLayout), v)
		if err != nil {
			return models.Record{}, &ValidationError{
				Line: line, Field: dialect.FieldCrawlTimestamp, Rule: "datetime", Value: v,
			}
		}
		ts = ts.UTC()
		rec.CrawlTimestamp = &ts
	}

	return rec, nil
}

func fieldError(line int, f dialect.Field, v string, err error) *ValidationError {
	verr := &ValidationError{Line: line, Field: f, Rule: err.Error(), Value: v}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		verr.Rule = ves[0].Tag()
	}

	return verr
}
