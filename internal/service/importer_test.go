package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/sun-sentiment/article-importer/internal/config"
	"github.com/sun-sentiment/article-importer/internal/dialect"
	"github.com/sun-sentiment/article-importer/internal/models"
	"github.com/sun-sentiment/article-importer/internal/storage"
	"github.com/sun-sentiment/article-importer/mocks"
)

// Тесты оркестратора (importer.go):
//  - конвейер одного файла: дедупликация до записи, пустой файл без записи;
//  - validation gate: при невалидной строке UpsertArticles не вызывается;
//  - каталог при fail-fast и skip-file;
//  - ошибки конфигурации до чтения файлов (платформа, диалект, источник).

const platformID = 7

const canonicalHeader = "url,title,content,author,articleDate,crawlTimestamp\n"

// memSource — SourceStorage в памяти: имя файла -> содержимое.
type memSource map[string]string

func (m memSource) List(_ context.Context, _ string) ([]string, error) {
	return slices.Sorted(maps.Keys(m)), nil
}

func (m memSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	c, ok := m[name]
	if !ok {
		return nil, storage.ErrSourceNotFound
	}
	return io.NopCloser(strings.NewReader(c)), nil
}

// recordingObserver запоминает отчёты по файлам.
type recordingObserver struct {
	got []models.FileReport
}

func (r *recordingObserver) ObserveFile(fr models.FileReport) { r.got = append(r.got, fr) }

func testConfig(policy config.FailurePolicy, dialectName string) config.Config {
	return config.Config{
		Import: config.ImportConfig{
			PlatformID: platformID,
			Source:     "batch",
			Dialect:    dialectName,
			ChunkSize:  1000,
			Extension:  ".csv",
			OnError:    policy,
		},
	}
}

func newSvcForTest(t *testing.T, st storage.ArticlesStorage, src storage.SourceStorage, cfg config.Config) *Service {
	t.Helper()
	return New(st, src, dialect.NewRegistry(), nil, cfg)
}

func expectPlatform(st *mocks.MockArticlesStorage) {
	st.EXPECT().
		PlatformByID(gomock.Any(), int64(platformID)).
		Return(&models.Platform{ID: platformID, Name: "bisnis.com"}, nil)
}

func validCSV(urls ...string) string {
	var b strings.Builder
	b.WriteString(canonicalHeader)
	for i, u := range urls {
		fmt.Fprintf(&b, "%s,Title %d,Body %d,,2024-08-01,\n", u, i, i)
	}
	return b.String()
}

func TestImport_SingleFile_DedupesBeforeUpsert(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)

	src := memSource{"a.csv": canonicalHeader +
		"https://e.com/1,first,c1,Ann,2024-08-01,2024-08-01T10:00:00Z\n" +
		"https://e.com/2,second,c2,,2024-08-02,\n" +
		"https://e.com/1,first again,c3,,2024-08-03,\n"}

	expectPlatform(st)

	var sent []models.Record
	st.EXPECT().
		UpsertArticles(gomock.Any(), int64(platformID), gomock.Any(), 1000).
		DoAndReturn(func(_ context.Context, _ int64, recs []models.Record, _ int) (int64, error) {
			sent = append([]models.Record(nil), recs...)
			return int64(len(recs)), nil
		})

	obs := &recordingObserver{}
	svc := New(st, src, dialect.NewRegistry(), obs, testConfig(config.FailFast, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rep)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", rep.RunID.String())
	require.Equal(t, dialect.Canonical, rep.Dialect)
	require.Equal(t, int64(platformID), rep.PlatformID)

	require.Len(t, sent, 2)
	require.Equal(t, "https://e.com/1", sent[0].URL)
	require.Equal(t, "first again", sent[0].Title, "last occurrence wins")
	require.Nil(t, sent[0].Author)
	require.Nil(t, sent[0].CrawlTimestamp)
	require.Equal(t, "https://e.com/2", sent[1].URL)

	require.Len(t, rep.Files, 1)
	fr := rep.Files[0]
	require.Equal(t, models.FileImported, fr.Status)
	require.Equal(t, 3, fr.Rows)
	require.Equal(t, 3, fr.Validated)
	require.Equal(t, 2, fr.Unique)
	require.Equal(t, int64(2), fr.Upserted)
	require.NoError(t, fr.Err)

	require.Len(t, obs.got, 1)
	require.Equal(t, "a.csv", obs.got[0].File)
}

func TestImport_ValidationGate_NoUpsert(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	expectPlatform(st)
	// UpsertArticles не ожидается: любой вызов провалит тест.

	src := memSource{"a.csv": canonicalHeader +
		"https://e.com/1,t,c,,2024-08-01,\n" +
		"not-a-url,t,c,,2024-08-01,\n" +
		"https://e.com/3,t,c,,2024-08-01,\n"}

	svc := newSvcForTest(t, st, src, testConfig(config.FailFast, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 2, verr.Line)
	require.Equal(t, 1, verr.Validated)
	require.Equal(t, "not-a-url", verr.Row["url"])

	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "a.csv", ferr.File)
	require.Equal(t, 1, ferr.Processed)

	require.Len(t, rep.Files, 1)
	require.Equal(t, models.FileFailed, rep.Files[0].Status)
	require.Equal(t, 3, rep.Files[0].Rows)
	require.Equal(t, 1, rep.Files[0].Validated)
	require.Zero(t, rep.Files[0].Upserted)
}

func TestImport_EmptyFile_NoUpsert(t *testing.T) {
	t.Parallel()

	for name, content := range map[string]string{
		"header only": canonicalHeader,
		"empty":       "",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			st := mocks.NewMockArticlesStorage(ctrl)
			expectPlatform(st)

			svc := newSvcForTest(t, st, memSource{"a.csv": content}, testConfig(config.FailFast, dialect.Canonical))

			rep, err := svc.Import(context.Background())
			require.NoError(t, err)
			require.Len(t, rep.Files, 1)
			require.Equal(t, models.FileImported, rep.Files[0].Status)
			require.Zero(t, rep.Files[0].Rows)
			require.Zero(t, rep.Files[0].Upserted)
		})
	}
}

func TestImport_Directory_FailFast(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	expectPlatform(st)

	src := memSource{
		"a.csv": validCSV("https://e.com/a1", "https://e.com/a2"),
		"b.csv": canonicalHeader + "https://e.com/b1,t,,,2024-08-01,\n",
		"c.csv": validCSV("https://e.com/c1"),
	}

	st.EXPECT().
		UpsertArticles(gomock.Any(), int64(platformID), gomock.Len(2), 1000).
		Return(int64(2), nil).
		Times(1)

	svc := newSvcForTest(t, st, src, testConfig(config.FailFast, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.ErrorIs(t, err, ErrValidation)

	require.Len(t, rep.Files, 3)
	require.Equal(t, models.FileImported, rep.Files[0].Status)
	require.Equal(t, models.FileFailed, rep.Files[1].Status)
	require.Equal(t, "b.csv", rep.Files[1].File)
	require.Equal(t, models.FileNotStarted, rep.Files[2].Status)
	require.Equal(t, "c.csv", rep.Files[2].File)
	require.Equal(t, 1, rep.Imported())
	require.Len(t, rep.Failed(), 1)
}

func TestImport_Directory_SkipFile(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	expectPlatform(st)

	src := memSource{
		"a.csv": validCSV("https://e.com/a1", "https://e.com/a2"),
		"b.csv": canonicalHeader + "https://e.com/b1,t,c,,2024-13-45,\n",
		"c.csv": validCSV("https://e.com/c1"),
	}

	gomock.InOrder(
		st.EXPECT().UpsertArticles(gomock.Any(), int64(platformID), gomock.Len(2), 1000).Return(int64(2), nil),
		st.EXPECT().UpsertArticles(gomock.Any(), int64(platformID), gomock.Len(1), 1000).Return(int64(1), nil),
	)

	obs := &recordingObserver{}
	svc := New(st, src, dialect.NewRegistry(), obs, testConfig(config.SkipFile, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.Error(t, err, "failed file still fails the run")
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "1 of 3 files failed")
	require.Contains(t, err.Error(), "b.csv")

	require.Len(t, rep.Files, 3)
	require.Equal(t, models.FileImported, rep.Files[0].Status)
	require.Equal(t, models.FileFailed, rep.Files[1].Status)
	require.Equal(t, models.FileImported, rep.Files[2].Status)
	require.Equal(t, 2, rep.Imported())
	require.Len(t, obs.got, 3)
}

func TestImport_ParseError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	expectPlatform(st)

	src := memSource{"a.csv": canonicalHeader +
		"https://e.com/1,t,c,,2024-08-01,\n" +
		"https://e.com/2,t,c,2024-08-01\n"}

	svc := newSvcForTest(t, st, src, testConfig(config.FailFast, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.ErrorIs(t, err, ErrParse)

	var perr *dialect.ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 2, perr.Line)
	require.Equal(t, models.FileFailed, rep.Files[0].Status)
}

func TestImport_InvalidUTF8_NoUpsert(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	expectPlatform(st)
	// UpsertArticles не ожидается.

	src := memSource{"a.csv": canonicalHeader +
		"https://e.com/1,ok,c,,2024-08-01,\n" +
		"https://e.com/2,bad \xff\xfe title,c,,2024-08-01,\n"}

	svc := newSvcForTest(t, st, src, testConfig(config.FailFast, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.ErrorIs(t, err, ErrParse)
	require.NotErrorIs(t, err, ErrStorage)

	var perr *dialect.ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 2, perr.Line)
	require.Equal(t, models.FileFailed, rep.Files[0].Status)
	require.Zero(t, rep.Files[0].Upserted)
}

func TestImport_StorageError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	expectPlatform(st)

	boom := errors.New("connection reset")
	st.EXPECT().
		UpsertArticles(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(int64(0), boom)

	svc := newSvcForTest(t, st, memSource{"a.csv": validCSV("https://e.com/1")}, testConfig(config.FailFast, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, rep.Files[0].Validated)
	require.Equal(t, models.FileFailed, rep.Files[0].Status)
}

func TestImport_LegacyCrawlerDialect(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	expectPlatform(st)

	src := memSource{"legacy.csv": "crawl_timestamp,platform,url,title,article,author,date\n" +
		"2024-08-01T10:00:00+07:00,bisnis.com,https://bisnis.com/x,Judul,\"Isi, berita\",Rina,2024-07-31\n"}

	var sent []models.Record
	st.EXPECT().
		UpsertArticles(gomock.Any(), int64(platformID), gomock.Any(), 1000).
		DoAndReturn(func(_ context.Context, _ int64, recs []models.Record, _ int) (int64, error) {
			sent = recs
			return 1, nil
		})

	svc := newSvcForTest(t, st, src, testConfig(config.FailFast, dialect.LegacyCrawler))

	_, err := svc.Import(context.Background())
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.Equal(t, "Isi, berita", sent[0].Content)
	require.Equal(t, "Rina", *sent[0].Author)
	require.Equal(t, 31, sent[0].ArticleDate.Day())
	require.Equal(t, 3, sent[0].CrawlTimestamp.Hour(), "normalized to UTC")
}

func TestImport_PlatformNotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	src := mocks.NewMockSourceStorage(ctrl)

	st.EXPECT().
		PlatformByID(gomock.Any(), int64(platformID)).
		Return(nil, fmt.Errorf("storage/postgres/PlatformByID: %w", storage.ErrPlatformNotFound))

	svc := newSvcForTest(t, st, src, testConfig(config.FailFast, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.Nil(t, rep)
	require.ErrorIs(t, err, ErrConfiguration)
	require.ErrorIs(t, err, storage.ErrPlatformNotFound)
}

func TestImport_UnknownDialect(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newSvcForTest(t, mocks.NewMockArticlesStorage(ctrl), mocks.NewMockSourceStorage(ctrl),
		testConfig(config.FailFast, "no-such-dialect"))

	_, err := svc.Import(context.Background())
	require.ErrorIs(t, err, ErrConfiguration)
	require.ErrorIs(t, err, dialect.ErrUnknownDialect)
}

func TestImport_SourceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		listErr error
		want    error
	}{
		{"missing source", storage.ErrSourceNotFound, ErrConfiguration},
		{"listing failed", errors.New("access denied"), ErrStorage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			st := mocks.NewMockArticlesStorage(ctrl)
			src := mocks.NewMockSourceStorage(ctrl)

			expectPlatform(st)
			src.EXPECT().List(gomock.Any(), ".csv").Return(nil, tc.listErr)

			svc := newSvcForTest(t, st, src, testConfig(config.FailFast, dialect.Canonical))

			_, err := svc.Import(context.Background())
			require.ErrorIs(t, err, tc.want)
			require.ErrorIs(t, err, tc.listErr)
		})
	}
}

func TestImport_NoFiles(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockArticlesStorage(ctrl)
	expectPlatform(st)

	svc := newSvcForTest(t, st, memSource{}, testConfig(config.FailFast, dialect.Canonical))

	rep, err := svc.Import(context.Background())
	require.NoError(t, err)
	require.Empty(t, rep.Files)
}
