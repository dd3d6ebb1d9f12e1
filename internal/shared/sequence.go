package shared

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Well known sequence names. The values survive from the legacy data
// export, so they stay as-is to keep counters continuous.
const (
	SeqReceipts = "evita-recibo-seq"
	SeqOrders   = "evita-orden-seq"
	SeqQuotes   = "evita-presupuesto-seq"
	SeqInvoices = "evita-factura-seq"
)

// SequenceProvider issues human readable document numbers. Every call
// must return a distinct number, also under concurrent use.
type SequenceProvider interface {
	Next(ctx context.Context) (string, error)
}

// PGSequence is a SequenceProvider backed by an atomically incremented
// counter row in postgres.
type PGSequence struct {
	pool   *pgxpool.Pool
	name   string
	prefix string
	logger *slog.Logger
}

// NewPGSequence constructs a postgres backed sequence.
func NewPGSequence(pool *pgxpool.Pool, name, prefix string, logger *slog.Logger) *PGSequence {
	return &PGSequence{pool: pool, name: name, prefix: prefix, logger: logger}
}

// Next increments the counter and formats the number. When the counter
// row cannot be reached the call degrades to a timestamp based number
// instead of failing, so document issuance never blocks on it.
func (s *PGSequence) Next(ctx context.Context) (string, error) {
	const query = `
		INSERT INTO sequence_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value`

	var value int64
	if err := s.pool.QueryRow(ctx, query, s.name).Scan(&value); err != nil {
		if s.logger != nil {
			s.logger.Warn("sequence counter unavailable, using timestamp fallback",
				slog.String("sequence", s.name), slog.Any("error", err))
		}
		return FallbackSequence(s.prefix, time.Now()), nil
	}
	return FormatSequence(s.prefix, value), nil
}

// FormatSequence renders a counter value as PREFIX-XXXXXX, zero padded
// to six digits.
func FormatSequence(prefix string, value int64) string {
	return fmt.Sprintf("%s-%06d", prefix, value)
}

// FallbackSequence renders a timestamp based number used when the
// durable counter is unreachable. Epoch millis keep it unique enough
// for the degraded path.
func FallbackSequence(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, at.UnixMilli())
}
