package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sun-sentiment/article-importer/internal/config"
	"github.com/sun-sentiment/article-importer/internal/models"
	"github.com/sun-sentiment/article-importer/internal/storage"
)

const (
	// upsertColumns — число параметров на одну строку INSERT.
	upsertColumns = 7
	// maxChunk — предел строк в одном INSERT: PostgreSQL принимает
	// не более 65535 параметров на запрос.
	maxChunk = 65535 / upsertColumns
)

// UpsertArticles записывает статьи платформы platformID с upsert по url.
//
// Политика:
//   - все пачки выполняются в одной транзакции, коммит — после последней;
//   - при конфликте по url перезаписываются crawl_timestamp, article_date,
//     title, content, author и platform_id; id не меняется;
//   - пустой records — no-op без открытия транзакции.
func (s *Storage) UpsertArticles(ctx context.Context, platformID int64, records []models.Record, chunkSize int) (int64, error) {
	const op = "storage.postgres.UpsertArticles"

	if len(records) == 0 {
		return 0, nil
	}

	switch {
	case chunkSize <= 0:
		chunkSize = config.DefaultChunkSize
	case chunkSize > maxChunk:
		chunkSize = maxChunk
	}

	var affected int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for start := 0; start < len(records); start += chunkSize {
			end := min(start+chunkSize, len(records))

			query, args := buildUpsert(platformID, records[start:end])
			tag, err := tx.Exec(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("rows %d..%d: %w", start+1, end, err)
			}
			affected += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, classify(err))
	}

	return affected, nil
}

// buildUpsert собирает многострочный INSERT ... ON CONFLICT для одной пачки.
func buildUpsert(platformID int64, chunk []models.Record) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(chunk)*upsertColumns)

	sb.WriteString(`INSERT INTO articles (crawl_timestamp, article_date, url, title, content, platform_id, author) VALUES `)
	for i, r := range chunk {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('(')
		for j := 1; j <= upsertColumns; j++ {
			if j > 1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(i*upsertColumns + j))
		}
		sb.WriteByte(')')

		var crawled *time.Time
		if r.CrawlTimestamp != nil {
			t := r.CrawlTimestamp.UTC()
			crawled = &t
		}

		args = append(args, crawled, r.ArticleDate, r.URL, r.Title, r.Content, platformID, r.Author)
	}
	sb.WriteString(`
	ON CONFLICT (url) DO UPDATE
	SET
	crawl_timestamp = EXCLUDED.crawl_timestamp,
	article_date = EXCLUDED.article_date,
	title = EXCLUDED.title,
	content = EXCLUDED.content,
	author = EXCLUDED.author,
	platform_id = EXCLUDED.platform_id`)

	return sb.String(), args
}

// classify переводит известные ошибки PostgreSQL в ошибки storage,
// сохраняя исходную ошибку в цепочке.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %w", storage.ErrPlatformNotFound, err)
	case pgerrcode.CardinalityViolation:
		return fmt.Errorf("%w: %w", storage.ErrDuplicateKey, err)
	default:
		return err
	}
}

// ArticleByURL возвращает статью по url.
// Если запись не найдена — storage.ErrNotFound.
func (s *Storage) ArticleByURL(ctx context.Context, url string) (*models.Article, error) {
	const op = "storage.postgres.ArticleByURL"

	var a models.Article
	err := s.db.QueryRow(ctx, `
	SELECT id, crawl_timestamp, article_date, url, title, content, platform_id, author
	FROM articles
	WHERE url = $1
	`, url).Scan(
		&a.ID,
		&a.CrawlTimestamp,
		&a.ArticleDate,
		&a.URL,
		&a.Title,
		&a.Content,
		&a.PlatformID,
		&a.Author,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if a.CrawlTimestamp != nil {
		t := a.CrawlTimestamp.UTC()
		a.CrawlTimestamp = &t
	}
	a.ArticleDate = a.ArticleDate.UTC()

	return &a, nil
}

// PlatformByID возвращает платформу по id.
// Если записи нет — storage.ErrPlatformNotFound.
func (s *Storage) PlatformByID(ctx context.Context, id int64) (*models.Platform, error) {
	const op = "storage.postgres.PlatformByID"

	var p models.Platform
	err := s.db.QueryRow(ctx, `SELECT id, name FROM platforms WHERE id = $1`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrPlatformNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}
