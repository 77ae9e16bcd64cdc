package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/metrics"
)

// Storage is the object storage surface the manager needs.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// Snapshotter produces a consistent on-disk copy of the database.
type Snapshotter interface {
	CreateSnapshot(ctx context.Context, destPath string) error
}

// Config holds backup manager configuration.
type Config struct {
	ObjectKey string        // Object key for the snapshot (e.g., "backups/janseva.db.zst")
	Interval  time.Duration // How often to upload a fresh snapshot
	TempDir   string        // Directory for temporary files; defaults to os.TempDir()
}

// Manager periodically uploads compressed database snapshots. The database
// is passed per call so that Restore can run before the database is opened.
type Manager struct {
	storage Storage
	config  Config
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewManager creates a backup manager.
func NewManager(storage Storage, cfg Config, m *metrics.Metrics, log *logger.Logger) *Manager {
	if cfg.ObjectKey == "" {
		cfg.ObjectKey = "backups/janseva.db.zst"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &Manager{
		storage: storage,
		config:  cfg,
		metrics: m,
		log:     log.WithModule("backup"),
	}
}

// Run uploads a snapshot every interval until the context is canceled.
// The first upload happens after one full interval so that startup is not
// slowed down by a backup of a database that was just restored.
func (m *Manager) Run(ctx context.Context, db Snapshotter) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("backup loop stopped")
			return
		case <-ticker.C:
			start := time.Now()
			etag, err := m.RunOnce(ctx, db)
			if err != nil {
				m.metrics.RecordBackup("error")
				m.log.WithError(err).Error("backup failed")
				continue
			}
			m.metrics.RecordBackup("success")
			m.log.WithField("etag", etag).
				WithField("duration_ms", time.Since(start).Milliseconds()).
				Info("backup uploaded")
		}
	}
}

// RunOnce snapshots, compresses, and uploads the database.
// Returns the ETag of the uploaded object.
func (m *Manager) RunOnce(ctx context.Context, db Snapshotter) (string, error) {
	snapshotPath := filepath.Join(m.config.TempDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	if err := db.CreateSnapshot(ctx, snapshotPath); err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(snapshotPath)

	compressedPath := snapshotPath + ".zst"
	if err := CompressFile(snapshotPath, compressedPath); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	defer os.Remove(compressedPath)

	compressedFile, err := os.Open(compressedPath)
	if err != nil {
		return "", fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer compressedFile.Close()

	etag, err := m.storage.Upload(ctx, m.config.ObjectKey, compressedFile, "application/zstd")
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return etag, nil
}

// Restore downloads and decompresses the latest snapshot to dbPath when no
// local database exists yet. A missing remote snapshot is not an error; the
// application starts with an empty database.
func (m *Manager) Restore(ctx context.Context, dbPath string) error {
	if _, err := os.Stat(dbPath); err == nil {
		m.log.Debug("local database present, skipping restore")
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat database: %w", err)
	}

	body, etag, err := m.storage.Download(ctx, m.config.ObjectKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.log.Info("no remote snapshot, starting fresh")
			return nil
		}
		return fmt.Errorf("download snapshot: %w", err)
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	if err := DecompressStream(body, dbPath); err != nil {
		// Do not leave a half-written database behind.
		os.Remove(dbPath)
		return fmt.Errorf("decompress snapshot: %w", err)
	}

	m.log.WithField("etag", etag).Info("database restored from snapshot")
	return nil
}
