// Package feed delivers transfer events to the indexer in batches.
//
// The only implementation is a JSONL replay source: one JSON object per line,
// in ledger order, the format archival exports use. Delivery order within and
// across batches is the file's line order.
package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/glmrscan/transfer-indexer/internal/model"
)

// Source yields successive event batches. Next returns io.EOF once the feed
// is exhausted; any other error is fatal for the feed.
type Source interface {
	Next(ctx context.Context) ([]model.TransferEvent, error)
}

// eventRecord is the wire shape of one feed line. Amounts arrive as decimal
// strings because they routinely exceed 64 bits.
type eventRecord struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// JSONLSource reads transfer events from a JSONL stream.
type JSONLSource struct {
	scanner   *bufio.Scanner
	closer    io.Closer
	batchSize int
	line      int
	logger    *slog.Logger
}

// OpenJSONL opens a JSONL feed file for replay.
func OpenJSONL(path string, batchSize int, logger *slog.Logger) (*JSONLSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	src := NewJSONLSource(f, batchSize, logger)
	src.closer = f
	return src, nil
}

// NewJSONLSource reads a JSONL feed from r.
func NewJSONLSource(r io.Reader, batchSize int, logger *slog.Logger) *JSONLSource {
	if logger == nil {
		logger = slog.Default()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &JSONLSource{
		scanner:   scanner,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Next returns the next batch, up to the configured batch size. Blank lines
// are skipped; a malformed line aborts the feed with its line number.
func (s *JSONLSource) Next(ctx context.Context) ([]model.TransferEvent, error) {
	events := make([]model.TransferEvent, 0, s.batchSize)

	for len(events) < s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			break
		}
		s.line++

		raw := s.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec eventRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("feed line %d: %w", s.line, err)
		}
		event, err := rec.toEvent()
		if err != nil {
			return nil, fmt.Errorf("feed line %d: %w", s.line, err)
		}
		events = append(events, event)
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	if len(events) == 0 {
		return nil, io.EOF
	}
	return events, nil
}

// Close closes the underlying file, if any.
func (s *JSONLSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (r eventRecord) toEvent() (model.TransferEvent, error) {
	if r.ID == "" {
		return model.TransferEvent{}, fmt.Errorf("missing id")
	}
	if r.From == "" || r.To == "" {
		return model.TransferEvent{}, fmt.Errorf("event %s: missing address", r.ID)
	}
	if r.Timestamp <= 0 {
		return model.TransferEvent{}, fmt.Errorf("event %s: invalid timestamp %d", r.ID, r.Timestamp)
	}
	amount, err := model.ParseAmount(r.Amount)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("event %s: %w", r.ID, err)
	}
	return model.TransferEvent{
		ID:        r.ID,
		From:      r.From,
		To:        r.To,
		Amount:    amount,
		Timestamp: r.Timestamp,
	}, nil
}
