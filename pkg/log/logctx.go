// log переносит *slog.Logger через context.Context, чтобы слои импорта
// (оркестратор, чтение CSV, хранилище) писали в один и тот же логгер
// с атрибутами текущего прогона (run_id, file).
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}

// With дополняет логгер из ctx атрибутами args и возвращает
// дочерний контекст вместе с получившимся логгером.
// Родительский контекст не меняется.
func With(ctx context.Context, args ...any) (context.Context, *slog.Logger) {
	l := From(ctx).With(args...)

	return Into(ctx, l), l
}
