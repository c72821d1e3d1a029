package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type queryStartContextKey struct{}

type queryStart struct {
	sql     string
	startedAt time.Time
}

type queryTracer struct {
	logger *slog.Logger
}

func newQueryTracer(logger *slog.Logger) *queryTracer {
	return &queryTracer{logger: logger}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartContextKey{}, &queryStart{
		sql:       normalizeQuery(data.SQL),
		startedAt: time.Now(),
	})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, _ := ctx.Value(queryStartContextKey{}).(*queryStart)
	if start == nil || t.logger == nil {
		return
	}

	attrs := []any{
		"sql", start.sql,
		"operation", queryOperation(start.sql),
		"duration_ms", time.Since(start.startedAt).Milliseconds(),
	}
	if data.Err != nil {
		t.logger.Warn("query failed", append(attrs, "error", data.Err)...)
		return
	}

	if rows := data.CommandTag.RowsAffected(); rows >= 0 {
		attrs = append(attrs, "rows_affected", rows)
	}
	t.logger.Debug("query completed", attrs...)
}

func normalizeQuery(query string) string {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return "sql.query"
	}

	normalized = strings.Join(strings.Fields(normalized), " ")
	const maxLen = 512
	if len(normalized) > maxLen {
		return normalized[:maxLen]
	}
	return normalized
}

func queryOperation(query string) string {
	if query == "" {
		return ""
	}

	parts := strings.Fields(query)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToUpper(parts[0])
}
