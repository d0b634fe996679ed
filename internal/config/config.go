// config предоставляет структуру конфигурации article-importer
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrConfiguration — конфигурация отсутствует или некорректна.
// Работа импортёра при этой ошибке не начинается.
var ErrConfiguration = errors.New("configuration error")

// FailurePolicy — поведение импорта каталога при ошибке в одном из файлов.
type FailurePolicy string

const (
	// FailFast — первая ошибка останавливает весь импорт.
	FailFast FailurePolicy = "fail-fast"
	// SkipFile — упавший файл попадает в отчёт, остальные импортируются.
	SkipFile FailurePolicy = "skip-file"
)

// DefaultChunkSize — размер пачки строк в одном INSERT.
const DefaultChunkSize = 1000

// Config — корневая конфигурация импортёра.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
//
// Флаги командной строки применяются поверх (см. cmd/article-importer).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	DB       DBConfig      `yaml:"db"`
	Import   ImportConfig  `yaml:"import"`
	S3       S3Config      `yaml:"s3"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// DBConfig — настройки подключения к PostgreSQL.
type DBConfig struct {
	URL              string        `yaml:"url"               env:"DATABASE_URL"         env-required:"true"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"   env:"DB_CONNECT_TIMEOUT"   env-default:"10s"`
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DB_STATEMENT_TIMEOUT" env-default:"60s"`
}

// ImportConfig — параметры одного запуска импорта.
type ImportConfig struct {
	// PlatformID — id платформы из таблицы platforms, общий для всех строк запуска.
	PlatformID int64 `yaml:"platform_id" env:"PLATFORM_ID"`
	// Source — путь к файлу или каталогу (или префикс в бакете, если задан s3.bucket).
	Source string `yaml:"source" env:"IMPORT_SOURCE"`
	// Dialect — имя диалекта CSV (встроенного или из DialectsFile).
	Dialect string `yaml:"dialect" env:"IMPORT_DIALECT" env-default:"canonical"`
	// DialectsFile — YAML с дополнительными диалектами.
	DialectsFile string        `yaml:"dialects_file" env:"IMPORT_DIALECTS_FILE"`
	ChunkSize    int           `yaml:"chunk_size"    env:"IMPORT_CHUNK_SIZE" env-default:"1000"`
	Extension    string        `yaml:"extension"     env:"IMPORT_EXTENSION"  env-default:".csv"`
	OnError      FailurePolicy `yaml:"on_error"      env:"IMPORT_ON_ERROR"   env-default:"fail-fast"`
}

// S3Config — источник файлов в S3/MinIO. Пустой Bucket — читаем локальную ФС.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"   env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket"     env:"S3_BUCKET"`
}

// Enabled сообщает, что файлы нужно читать из бакета.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// MetricsConfig — выгрузка метрик прогона.
type MetricsConfig struct {
	// Textfile — путь для node_exporter textfile collector; пусто — не писать.
	Textfile string `yaml:"textfile" env:"METRICS_TEXTFILE"`
}

// TimeoutConfig — таймауты импортёра.
type TimeoutConfig struct {
	// File — общий лимит на чтение и запись одного файла.
	File time.Duration `yaml:"file" env:"FILE_TIMEOUT" env-default:"10m"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// Все ошибки оборачивают ErrConfiguration.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: config file does not exist: %s", ErrConfiguration, p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to read config: %v", ErrConfiguration, err)
		}
		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch envPath := os.Getenv("CONFIG_PATH"); {
	case path != "":
		c, err = tryRead(path)
	case envPath != "":
		c, err = tryRead(envPath)
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			c, err = tryRead("local.yaml")
			break
		}
		if envErr := cleanenv.ReadEnv(&cfg); envErr != nil {
			return nil, fmt.Errorf("%w: config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %v",
				ErrConfiguration, envErr)
		}
		c = &cfg
	}
	if err != nil {
		return nil, err
	}

	c.normalize()
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate проверяет, что конфигурация пригодна для запуска импорта:
// помимо базовых ограничений требует платформу и источник, которые
// могут прийти из флагов уже после Load.
func (c *Config) Validate() error {
	c.normalize()
	if err := c.validate(); err != nil {
		return err
	}
	if c.Import.PlatformID <= 0 {
		return fmt.Errorf("%w: import.platform_id must be > 0", ErrConfiguration)
	}
	if strings.TrimSpace(c.Import.Source) == "" {
		return fmt.Errorf("%w: import.source is required", ErrConfiguration)
	}
	return nil
}

// normalize приводит значения к каноническому виду.
func (c *Config) normalize() {
	ext := strings.ToLower(strings.TrimSpace(c.Import.Extension))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Import.Extension = ext
	c.Import.Dialect = strings.TrimSpace(c.Import.Dialect)
	c.Import.OnError = FailurePolicy(strings.ToLower(strings.TrimSpace(string(c.Import.OnError))))
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("%w: db.url is required", ErrConfiguration)
	}
	if c.Import.ChunkSize <= 0 {
		return fmt.Errorf("%w: import.chunk_size must be > 0", ErrConfiguration)
	}
	if c.Import.Extension == "" {
		return fmt.Errorf("%w: import.extension must not be empty", ErrConfiguration)
	}
	if c.Import.Dialect == "" {
		return fmt.Errorf("%w: import.dialect must not be empty", ErrConfiguration)
	}
	switch c.Import.OnError {
	case FailFast, SkipFile:
	default:
		return fmt.Errorf("%w: import.on_error must be %q or %q, got %q",
			ErrConfiguration, FailFast, SkipFile, c.Import.OnError)
	}
	if c.S3.Enabled() && c.S3.Endpoint == "" {
		return fmt.Errorf("%w: s3.endpoint is required when s3.bucket is set", ErrConfiguration)
	}
	if c.DB.ConnectTimeout < 0 || c.DB.StatementTimeout < 0 || c.Timeouts.File < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrConfiguration)
	}
	return nil
}
