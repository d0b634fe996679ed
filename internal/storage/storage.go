// storage определяет контракты доступа к хранилищам импортёра:
// целевой БД со статьями и источнику CSV-файлов.
package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/mock_storage.go -package=mocks

import (
	"context"
	"errors"
	"io"

	"github.com/sun-sentiment/article-importer/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrPlatformNotFound — платформа прогона отсутствует в таблице platforms.
	ErrPlatformNotFound = errors.New("platform not found")
	// ErrDuplicateKey — в одной пачке оказались две записи с одним url.
	// При корректной дедупликации не возникает.
	ErrDuplicateKey = errors.New("duplicate natural key in batch")
	// ErrSourceNotFound — файл или каталог источника не существует.
	ErrSourceNotFound = errors.New("source not found")
)

// ArticlesStorage описывает операции над таблицей articles.
type ArticlesStorage interface {
	// UpsertArticles записывает записи одной транзакцией пачками по chunkSize
	// с upsert по url. Пустой вход — no-op. При любой ошибке транзакция
	// откатывается целиком. Возвращает число затронутых строк.
	UpsertArticles(ctx context.Context, platformID int64, records []models.Record, chunkSize int) (int64, error)
	// ArticleByURL возвращает статью по естественному ключу или ErrNotFound.
	ArticleByURL(ctx context.Context, url string) (*models.Article, error)
	// PlatformByID возвращает платформу или ErrPlatformNotFound.
	PlatformByID(ctx context.Context, id int64) (*models.Platform, error)
}

// Storage задаёт контракт целевого хранилища.
type Storage interface {
	ArticlesStorage
	Close()
}

// SourceStorage — откуда берутся CSV-файлы (локальная ФС, бакет S3).
type SourceStorage interface {
	// List возвращает имена файлов с расширением ext в лексикографическом порядке.
	// Если источник указывает на один файл — возвращает только его, без фильтра.
	List(ctx context.Context, ext string) ([]string, error)
	// Open открывает файл, полученный из List, на чтение.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
