package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vaultScope/internal/model"
)

// FeedLog appends price feed records to a JSONL file.
type FeedLog struct {
	path string
	mu   sync.Mutex
}

func NewFeedLog(path string) *FeedLog {
	return &FeedLog{path: path}
}

// Append writes one feed record as a JSON line.
func (l *FeedLog) Append(feed model.PriceFeed) error {
	dir := filepath.Dir(l.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create feed log dir: %w", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open feed log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	line, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("marshal feed record: %w", err)
	}
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write feed record: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush feed log: %w", err)
	}

	return nil
}

// WithFeedLog decorates a Store so every appended price feed is also
// written to the JSONL audit log.
func WithFeedLog(store Store, log *FeedLog) Store {
	return &feedLogged{Store: store, log: log}
}

type feedLogged struct {
	Store
	log *FeedLog
}

func (s *feedLogged) AppendPriceFeed(ctx context.Context, feed model.PriceFeed) error {
	if err := s.Store.AppendPriceFeed(ctx, feed); err != nil {
		return err
	}
	return s.log.Append(feed)
}
