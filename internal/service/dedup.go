package service

import "github.com/sun-sentiment/article-importer/internal/models"

// Dedupe оставляет по одной записи на URL. Побеждает последнее вхождение
// целиком (все поля), позиция в выходе — позиция первого вхождения.
func Dedupe(records []models.Record) []models.Record {
	idx := make(map[string]int, len(records))
	out := make([]models.Record, 0, len(records))

	for _, r := range records {
		if i, ok := idx[r.URL]; ok {
			out[i] = r
			continue
		}
		idx[r.URL] = len(out)
		out = append(out, r)
	}

	return out
}
