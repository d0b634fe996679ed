package models

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus — итог обработки одного файла.
type FileStatus string

const (
	FileImported FileStatus = "imported"
	FileFailed   FileStatus = "failed"
	// FileNotStarted — файл не обрабатывался из-за fail-fast на предыдущем.
	FileNotStarted FileStatus = "not_started"
)

// FileReport — результат прогона одного файла.
type FileReport struct {
	File   string
	Status FileStatus
	// Rows — строк данных прочитано из файла.
	Rows int
	// Validated — строк, прошедших валидацию (до первой ошибки, если она была).
	Validated int
	// Unique — записей после дедупликации по URL.
	Unique int
	// Upserted — затронуто строк в БД (insert + update).
	Upserted int64
	Duration time.Duration
	Err      error
}

// RunReport — сводка по всему запуску импортёра.
type RunReport struct {
	RunID      uuid.UUID
	PlatformID int64
	Dialect    string
	StartedAt  time.Time
	Files      []FileReport
}

// Failed возвращает отчёты по упавшим файлам.
func (r *RunReport) Failed() []FileReport {
	var out []FileReport
	for _, f := range r.Files {
		if f.Status == FileFailed {
			out = append(out, f)
		}
	}

	return out
}

// Imported возвращает число успешно импортированных файлов.
func (r *RunReport) Imported() int {
	var n int
	for _, f := range r.Files {
		if f.Status == FileImported {
			n++
		}
	}

	return n
}
