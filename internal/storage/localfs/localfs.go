// localfs — источник CSV-файлов на локальной файловой системе.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sun-sentiment/article-importer/internal/storage"
)

// Source читает один файл или все файлы каталога (без рекурсии).
type Source struct {
	root  string
	isDir bool
}

// New проверяет, что путь существует, и запоминает, файл это или каталог.
func New(path string) (*Source, error) {
	const op = "storage.localfs.New"

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %s: %w", op, path, storage.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Source{root: path, isDir: info.IsDir()}, nil
}

// List возвращает путь к файлу или отсортированные пути файлов каталога
// с расширением ext (без учёта регистра).
func (s *Source) List(ctx context.Context, ext string) ([]string, error) {
	const op = "storage.localfs.List"

	if !s.isDir {
		return []string{s.root}, nil
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var files []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !e.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(s.root, e.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// Open открывает файл на чтение.
func (s *Source) Open(_ context.Context, name string) (io.ReadCloser, error) {
	const op = "storage.localfs.Open"

	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %s: %w", op, name, storage.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return f, nil
}

var _ storage.SourceStorage = (*Source)(nil)
