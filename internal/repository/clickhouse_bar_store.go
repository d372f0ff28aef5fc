package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StructScan/internal/domain/models"
	pkgch "StructScan/pkg/clickhouse"
	applogger "StructScan/pkg/logger"
)

// CHBarStore implements BarSource backed by a ClickHouse daily bars table.
type CHBarStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, table string) *CHBarStore {
	if table == "" {
		table = "structscan.daily_bars"
	}
	return &CHBarStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

// GetBars returns up to count most recent daily bars for symbol in ascending
// date order. Fewer rows than requested is not an error here; callers decide
// whether the shortfall is fatal.
func (s *CHBarStore) GetBars(ctx context.Context, symbol string, count int) ([]models.OhlcBar, error) {
	start := time.Now()
	const qtpl = `
        SELECT day, open, high, low, close, tick_volume, volume, spread
        FROM %s
        WHERE symbol = ?
        ORDER BY day DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, count)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars query error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Int("limit", count),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.OhlcBar, 0, count)
	for rows.Next() {
		var b models.OhlcBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.TickVolume, &b.Volume, &b.Spread); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_bars scan error",
					applogger.String("table", s.table),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars rows error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_bars ok",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Int("limit", count),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// Schema returns the DDL statements for the daily bars table.
func Schema(table string) []string {
	if table == "" {
		table = "structscan.daily_bars"
	}
	return []string{
		`CREATE DATABASE IF NOT EXISTS structscan`,
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            day DateTime,
            symbol LowCardinality(String),
            open Float64,
            high Float64,
            low Float64,
            close Float64,
            tick_volume Float64,
            volume Float64,
            spread Float64
        ) ENGINE = ReplacingMergeTree
        PARTITION BY toYYYYMM(day)
        ORDER BY (symbol, day)
    `, table),
	}
}
