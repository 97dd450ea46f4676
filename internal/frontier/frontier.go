// Package frontier is the durable record of every URL discovered: a
// SQLite-backed (urlhash, url, completed) table plus an in-memory FIFO of
// URLs pending download.
package frontier

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/icscrawl/crawler/internal/logging"
	"github.com/icscrawl/crawler/internal/normalize"
	"github.com/icscrawl/crawler/pkg/fileutil"
	"github.com/icscrawl/crawler/pkg/hashutil"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Frontier wraps the durable store and the in-memory queue of pending
// URLs. Every database interaction opens a fresh connection, per the
// fresh-connection-per-call discipline: connections are not long-lived,
// which keeps SQLite's single-writer model simple under concurrent
// workers.
type Frontier struct {
	dbPath       string
	allowedHosts map[string]struct{}
	logger       logging.Logger

	mu    sync.Mutex
	queue *FIFOQueue[string]
}

func New(saveFile string, allowedHosts map[string]struct{}, logger logging.Logger) *Frontier {
	return &Frontier{
		dbPath:       saveFile + ".db",
		allowedHosts: allowedHosts,
		logger:       logger,
		queue:        NewFIFOQueue[string](),
	}
}

// Startup opens (or recreates, if restart) the durable store and loads
// pending work into the in-memory queue: the seed URLs on a fresh store,
// or every incomplete, still-valid row otherwise.
func (f *Frontier) Startup(seedURLs []string, restart bool) error {
	if err := fileutil.EnsureDir(filepath.Dir(f.dbPath)); err != nil {
		return fmt.Errorf("frontier: ensure save directory: %w", err)
	}

	if restart {
		if err := os.Remove(f.dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("frontier: remove existing store: %w", err)
		}
	}

	if err := f.createTable(); err != nil {
		return fmt.Errorf("frontier: create table: %w", err)
	}

	total, err := f.totalCount()
	if err != nil {
		return fmt.Errorf("frontier: count rows: %w", err)
	}

	if restart || total == 0 {
		for _, seed := range seedURLs {
			f.AddURL(seed)
		}
		return nil
	}

	return f.loadPending()
}

func (f *Frontier) createTable() error {
	db, err := f.open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS urls (
		urlhash TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0
	)`)
	return err
}

func (f *Frontier) open() (*sql.DB, error) {
	return sql.Open("sqlite3", f.dbPath)
}

func (f *Frontier) totalCount() (int, error) {
	db, err := f.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM urls").Scan(&count)
	return count, err
}

func (f *Frontier) loadPending() error {
	db, err := f.open()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query("SELECT url FROM urls WHERE completed = 0")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return err
		}
		if normalize.IsValid(url, f.allowedHosts) {
			f.queue.Enqueue(url)
		}
	}
	return rows.Err()
}

// AddURL canonicalizes url, and if its urlhash is not already in the
// store, inserts it and pushes it onto the in-memory queue. Insert and
// enqueue happen under the frontier lock so a row is never inserted
// without also being enqueued, and vice versa.
func (f *Frontier) AddURL(raw string) {
	canonical, err := normalize.Canonicalize(raw)
	if err != nil {
		return
	}
	urlhash := hashutil.URLHash(canonical)

	f.mu.Lock()
	defer f.mu.Unlock()

	db, err := f.open()
	if err != nil {
		f.logger.Error("frontier: open db for add_url", zap.Error(err), zap.String("url", canonical))
		return
	}
	defer db.Close()

	result, err := db.Exec("INSERT OR IGNORE INTO urls (urlhash, url, completed) VALUES (?, ?, 0)", urlhash, canonical)
	if err != nil {
		f.logger.Error("frontier: insert url", zap.Error(err), zap.String("url", canonical))
		return
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		f.logger.Error("frontier: rows affected", zap.Error(err))
		return
	}
	if inserted > 0 {
		f.queue.Enqueue(canonical)
	}
}

// GetTBDURL pops the next pending URL. ok is false when the queue is empty.
func (f *Frontier) GetTBDURL() (string, bool) {
	return f.queue.Dequeue()
}

// MarkURLComplete flips the completed flag for url's row. A missing row is
// logged but never raised, matching the "forward progress" discipline.
func (f *Frontier) MarkURLComplete(raw string) {
	canonical, err := normalize.Canonicalize(raw)
	if err != nil {
		return
	}
	urlhash := hashutil.URLHash(canonical)

	f.mu.Lock()
	defer f.mu.Unlock()

	db, err := f.open()
	if err != nil {
		f.logger.Error("frontier: open db for mark_complete", zap.Error(err), zap.String("url", canonical))
		return
	}
	defer db.Close()

	var exists string
	err = db.QueryRow("SELECT urlhash FROM urls WHERE urlhash = ?", urlhash).Scan(&exists)
	if err != nil {
		f.logger.Error("frontier: completed url was never seen", zap.String("url", canonical))
	}

	if _, err := db.Exec("UPDATE urls SET completed = 1 WHERE urlhash = ?", urlhash); err != nil {
		f.logger.Error("frontier: mark complete", zap.Error(err), zap.String("url", canonical))
	}
}

// Stats reports the frontier's current size breakdown.
type Stats struct {
	Total     int
	Completed int
	InQueue   int
	Pending   int
}

func (f *Frontier) Stats() (Stats, error) {
	db, err := f.open()
	if err != nil {
		return Stats{}, err
	}
	defer db.Close()

	var total, completed int
	if err := db.QueryRow("SELECT COUNT(*) FROM urls").Scan(&total); err != nil {
		return Stats{}, err
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM urls WHERE completed = 1").Scan(&completed); err != nil {
		return Stats{}, err
	}

	inQueue := f.queue.Size()
	return Stats{
		Total:     total,
		Completed: completed,
		InQueue:   inQueue,
		Pending:   total - completed,
	}, nil
}
