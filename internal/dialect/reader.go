package dialect

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// bom — UTF-8 byte order mark, который оставляют некоторые экспортёры.
const bom = "\ufeff"

// Row — одна строка данных файла.
type Row struct {
	// Line — номер строки данных (с 1, заголовок не считается).
	Line int
	// Raw — значения по именам колонок (после применения заголовка диалекта).
	Raw map[string]string
}

// ParseError — файл не удалось разобрать как CSV.
type ParseError struct {
	// Line — номер строки данных, на которой произошла ошибка (0 — заголовок).
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("csv header: %v", e.Err)
	}
	return fmt.Sprintf("csv row %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Read последовательно читает CSV из r целиком и возвращает строки данных.
//
// Разбор строгий: число ячеек в каждой строке должно совпадать с заголовком.
// Файл без строк данных (только заголовок или пустой) — не ошибка.
func (d Dialect) Read(ctx context.Context, r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)

	header, err := d.header(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &ParseError{Line: 0, Err: err}
	}
	cr.FieldsPerRecord = len(header)

	var rows []Row
	for line := 1; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		// Без заголовка из файла BOM оказывается в первой ячейке данных.
		if line == 1 && len(d.Columns) > 0 && !d.SkipHeader {
			rec[0] = strings.TrimPrefix(rec[0], bom)
		}
		for i, cell := range rec {
			if !utf8.ValidString(cell) {
				return nil, &ParseError{Line: line, Err: fmt.Errorf("column %q: invalid UTF-8", header[i])}
			}
		}

		raw := make(map[string]string, len(header))
		for i, col := range header {
			raw[col] = rec[i]
		}
		rows = append(rows, Row{Line: line, Raw: raw})
	}

	return rows, nil
}

// header определяет заголовок: явный из диалекта (с пропуском строки
// заголовка файла при SkipHeader) или первую строку файла.
func (d Dialect) header(cr *csv.Reader) ([]string, error) {
	if len(d.Columns) > 0 {
		if d.SkipHeader {
			// Строка заголовка файла может иметь любое число колонок.
			cr.FieldsPerRecord = -1
			if _, err := cr.Read(); err != nil {
				return nil, err
			}
		}
		return append([]string(nil), d.Columns...), nil
	}

	rec, err := cr.Read()
	if err != nil {
		return nil, err
	}

	header := make([]string, len(rec))
	seen := make(map[string]struct{}, len(rec))
	for i, col := range rec {
		if i == 0 {
			col = strings.TrimPrefix(col, bom)
		}
		col = strings.TrimSpace(col)
		if !utf8.ValidString(col) {
			return nil, fmt.Errorf("column %d: invalid UTF-8", i+1)
		}
		if col == "" {
			return nil, fmt.Errorf("empty column name at position %d", i+1)
		}
		if _, dup := seen[col]; dup {
			return nil, fmt.Errorf("duplicate column %q", col)
		}
		seen[col] = struct{}{}
		header[i] = col
	}

	return header, nil
}
