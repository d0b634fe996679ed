// dialect описывает раскладку колонок CSV конкретного краулера
// и переводит строки файла в канонический набор полей статьи.
//
// Диалект — это данные, а не код: переименование колонок, явный заголовок
// и игнорируемые колонки задаются декларативно (встроенные диалекты или YAML).
package dialect

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Field — имя канонического поля статьи.
type Field string

const (
	FieldURL            Field = "url"
	FieldTitle          Field = "title"
	FieldContent        Field = "content"
	FieldAuthor         Field = "author"
	FieldArticleDate    Field = "articleDate"
	FieldCrawlTimestamp Field = "crawlTimestamp"
)

// CanonicalFields — полный канонический набор в фиксированном порядке.
var CanonicalFields = []Field{
	FieldURL,
	FieldTitle,
	FieldContent,
	FieldAuthor,
	FieldArticleDate,
	FieldCrawlTimestamp,
}

var (
	// ErrUnknownDialect — диалект с таким именем не зарегистрирован.
	ErrUnknownDialect = errors.New("unknown dialect")
	// ErrInvalidDialect — описание диалекта противоречиво.
	ErrInvalidDialect = errors.New("invalid dialect")
)

// Dialect — раскладка колонок одного источника.
type Dialect struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Columns — явный заголовок. Если задан, заголовок файла не используется.
	Columns []string `yaml:"columns"`
	// SkipHeader — в файле есть собственная строка заголовка, её надо пропустить.
	// Имеет смысл только вместе с Columns.
	SkipHeader bool `yaml:"skip_header"`
	// Fields — каноническое поле -> колонка файла. Незаданные поля
	// читаются из колонки с каноническим именем.
	Fields map[Field]string `yaml:"fields"`
	// Ignore — колонки файла, которые сознательно отбрасываются
	// (например, название платформы: платформа задаётся на весь запуск).
	Ignore []string `yaml:"ignore"`
	// Rules — переопределение правил валидации по каноническому полю.
	Rules map[Field]string `yaml:"rules"`
}

// Column возвращает имя колонки файла для канонического поля.
func (d Dialect) Column(f Field) string {
	if col, ok := d.Fields[f]; ok && col != "" {
		return col
	}

	return string(f)
}

// Adapt переводит сырую строку (колонка -> значение) в канонический вид.
// Отсутствующие в строке колонки в результат не попадают — решать,
// обязательны ли они, будет валидатор.
func (d Dialect) Adapt(raw map[string]string) map[string]string {
	out := make(map[string]string, len(CanonicalFields))
	for _, f := range CanonicalFields {
		col := d.Column(f)
		if slices.Contains(d.Ignore, col) {
			continue
		}
		if v, ok := raw[col]; ok {
			out[string(f)] = v
		}
	}

	return out
}

// Validate проверяет согласованность описания.
func (d Dialect) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDialect)
	}
	if d.SkipHeader && len(d.Columns) == 0 {
		return fmt.Errorf("%w: %s: skip_header requires explicit columns", ErrInvalidDialect, d.Name)
	}

	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		c = strings.TrimSpace(c)
		if c == "" {
			return fmt.Errorf("%w: %s: empty column name", ErrInvalidDialect, d.Name)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: %s: duplicate column %q", ErrInvalidDialect, d.Name, c)
		}
		seen[c] = struct{}{}
	}

	for f, col := range d.Fields {
		if !isCanonical(f) {
			return fmt.Errorf("%w: %s: unknown field %q", ErrInvalidDialect, d.Name, f)
		}
		if slices.Contains(d.Ignore, col) {
			return fmt.Errorf("%w: %s: field %q mapped to ignored column %q", ErrInvalidDialect, d.Name, f, col)
		}
		if len(d.Columns) > 0 {
			if _, ok := seen[col]; !ok {
				return fmt.Errorf("%w: %s: field %q mapped to column %q missing from columns", ErrInvalidDialect, d.Name, f, col)
			}
		}
	}

	for f := range d.Rules {
		if !isCanonical(f) {
			return fmt.Errorf("%w: %s: rule for unknown field %q", ErrInvalidDialect, d.Name, f)
		}
	}

	return nil
}

// normalize убирает пробелы вокруг имён колонок, пришедших из YAML.
func (d Dialect) normalize() Dialect {
	d.Name = strings.TrimSpace(d.Name)
	d.Columns = trimAll(d.Columns)
	d.Ignore = trimAll(d.Ignore)

	if d.Fields != nil {
		fields := make(map[Field]string, len(d.Fields))
		for f, col := range d.Fields {
			fields[f] = strings.TrimSpace(col)
		}
		d.Fields = fields
	}

	return d
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}

	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}

	return out
}

func isCanonical(f Field) bool {
	return slices.Contains(CanonicalFields, f)
}
