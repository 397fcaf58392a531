// Package audit keeps an append-only JSON-lines journal of listing mutations.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Baaaki/car-marketplace/pkg/logger"
	"go.uber.org/zap"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry records one listing mutation
type Entry struct {
	Action    Action    `json:"action"`
	ListingID uint64    `json:"listing_id"`
	ActorID   uint64    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal appends entries to a file, one JSON object per line
type Journal struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// Open creates the journal file and its directory if needed
func Open(filePath string) (*Journal, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Journal{
		filePath: filePath,
		file:     file,
	}, nil
}

// Append writes entry and syncs it to disk before returning
func (j *Journal) Append(entry Entry) error {
	start := time.Now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = start.UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Write(data); err != nil {
		logger.Log.Error("Audit: failed to write entry",
			zap.Uint64("listing_id", entry.ListingID),
			zap.Error(err),
		)
		return err
	}

	if err := j.file.Sync(); err != nil {
		logger.Log.Error("Audit: failed to sync to disk",
			zap.Uint64("listing_id", entry.ListingID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Audit: entry written",
		zap.String("action", string(entry.Action)),
		zap.Uint64("listing_id", entry.ListingID),
		zap.Uint64("actor_id", entry.ActorID),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// ReadAll returns every entry in write order. Unparseable lines are skipped.
func (j *Journal) ReadAll() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	entries := make([]Entry, 0)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			logger.Log.Warn("Audit: skipping malformed line", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
