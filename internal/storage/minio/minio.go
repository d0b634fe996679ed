// minio предоставляет реализацию storage.SourceStorage на базе MinIO/S3:
// CSV-файлы краулера читаются из бакета по префиксу.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sun-sentiment/article-importer/internal/config"
	"github.com/sun-sentiment/article-importer/internal/storage"
)

// Source — источник файлов в бакете. prefix — ключ одного объекта
// или «каталог» (префикс) с несколькими объектами.
type Source struct {
	client *mclient.Client
	bucket string
	prefix string
}

// New создает клиент MinIO.
// Делает endpoint-перенастройку (убирает схему), подбирает Secure по схеме
// и выполняет fail-fast-проверку доступности бакета.
func New(ctx context.Context, cfg config.S3Config, prefix string) (*Source, error) {
	const op = "storage/minio/New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q: %w", op, cfg.Bucket, storage.ErrSourceNotFound)
	}

	return &Source{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.TrimPrefix(prefix, "/"),
	}, nil
}

// List возвращает ключи объектов. Если prefix совпадает с ключом
// существующего объекта, возвращается только он; иначе prefix
// считается «каталогом», со слэшем на конце или без.
func (s *Source) List(ctx context.Context, ext string) ([]string, error) {
	const op = "storage/minio/List"

	prefix := s.prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		_, err := s.client.StatObject(ctx, s.bucket, prefix, mclient.StatObjectOptions{})
		if err == nil {
			return []string{prefix}, nil
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		prefix += "/"
	}

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, mclient.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("%s: %w", op, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if !strings.EqualFold(path.Ext(obj.Key), ext) {
			continue
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)

	return keys, nil
}

// Open возвращает поток объекта. Отсутствие объекта проявляется
// сразу, а не при первом чтении.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	const op = "storage/minio/Open"

	obj, err := s.client.GetObject(ctx, s.bucket, name, mclient.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %s: %w", op, name, storage.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return obj, nil
}

func isNotFound(err error) bool {
	resp := mclient.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.SourceStorage = (*Source)(nil)
