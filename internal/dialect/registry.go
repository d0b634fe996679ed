package dialect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Имена встроенных диалектов.
const (
	Canonical         = "canonical"
	LegacyCrawler     = "legacy-crawler"
	PositionalCrawler = "positional-crawler"
)

// Builtin возвращает встроенные диалекты.
func Builtin() []Dialect {
	return []Dialect{
		{
			Name:        Canonical,
			Description: "header already uses canonical field names",
		},
		{
			Name:        LegacyCrawler,
			Description: "crawl_timestamp,platform,url,title,article,author,date",
			Fields: map[Field]string{
				FieldCrawlTimestamp: "crawl_timestamp",
				FieldContent:        "article",
				FieldArticleDate:    "date",
			},
			Ignore: []string{"platform"},
		},
		{
			Name:        PositionalCrawler,
			Description: "fixed column order, the file header line is not trusted",
			Columns:     []string{"link", "headline", "published", "writer", "body", "site", "fetched_at"},
			SkipHeader:  true,
			Fields: map[Field]string{
				FieldURL:            "link",
				FieldTitle:          "headline",
				FieldArticleDate:    "published",
				FieldAuthor:         "writer",
				FieldContent:        "body",
				FieldCrawlTimestamp: "fetched_at",
			},
			Ignore: []string{"site"},
		},
	}
}

// Registry — набор диалектов, доступных по имени.
type Registry struct {
	mu       sync.RWMutex
	dialects map[string]Dialect
}

// NewRegistry создаёт реестр со встроенными диалектами.
func NewRegistry() *Registry {
	r := &Registry{dialects: make(map[string]Dialect)}
	for _, d := range Builtin() {
		r.dialects[d.Name] = d
	}

	return r
}

// Register добавляет диалект или заменяет одноимённый.
// Имена колонок хранятся без окружающих пробелов.
func (r *Registry) Register(d Dialect) error {
	d = d.normalize()
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialects[d.Name] = d

	return nil
}

// Lookup возвращает диалект по имени или ErrUnknownDialect.
func (r *Registry) Lookup(name string) (Dialect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.dialects[name]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}

	return d, nil
}

// Names возвращает отсортированные имена зарегистрированных диалектов.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.dialects))
	for n := range r.dialects {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// file — формат YAML-файла с диалектами.
type file struct {
	Dialects []Dialect `yaml:"dialects"`
}

// LoadFile читает диалекты из YAML-файла и регистрирует их.
// Неизвестные ключи в файле — ошибка.
func (r *Registry) LoadFile(path string) error {
	const op = "dialect.LoadFile"

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %s: %w", op, path, err)
	}

	for _, d := range f.Dialects {
		if err := r.Register(d); err != nil {
			return fmt.Errorf("%s: %s: %w", op, path, err)
		}
	}

	return nil
}
