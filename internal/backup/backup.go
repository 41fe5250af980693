// Package backup snapshots the SQLite database, encrypts the copy and
// uploads it to S3-compatible storage. The flat's server typically
// runs on somebody's spare machine, so the off-site copy is the only
// one that survives that machine dying.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"
)

const keyPrefix = "flatmate/"

// s3API is the slice of the S3 client the manager uses, split out for
// tests.
type s3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds everything the manager needs. Backups are disabled
// unless the bucket and credentials are all set.
type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Passphrase    string
	DBPath        string
	Interval      time.Duration
	RetentionDays int
}

// Enabled reports whether the configuration is complete enough to run.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

// Status describes the manager for the status endpoint.
type Status struct {
	Enabled    bool       `json:"enabled"`
	InProgress bool       `json:"in_progress"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// Snapshot is one stored backup.
type Snapshot struct {
	Key       string    `json:"key"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager runs scheduled and on-demand backups.
type Manager struct {
	cfg    Config
	db     *sql.DB
	client s3API
	logger *slog.Logger

	mu     sync.Mutex
	status Status

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a Manager. With incomplete config it stays
// disabled and every run reports an error.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{cfg: cfg, db: db, logger: logger}
	if cfg.Enabled() {
		m.client = newS3Client(cfg)
		m.status.Enabled = true
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the periodic backup loop. No-op when disabled.
func (m *Manager) Start(ctx context.Context) {
	if m.client == nil {
		return
	}
	interval := m.cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.Run(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
				if err := m.Prune(ctx); err != nil {
					m.logger.Error("backup prune failed", "error", err)
				}
			}
		}
	}()
}

// Stop waits for the loop to finish.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
}

// Status returns the current manager state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Run takes one backup now: checkpoint the WAL, read the database
// file, encrypt it and upload it. Returns the object key.
func (m *Manager) Run(ctx context.Context) (string, error) {
	if m.client == nil {
		return "", fmt.Errorf("backup not configured")
	}

	m.mu.Lock()
	if m.status.InProgress {
		m.mu.Unlock()
		return "", fmt.Errorf("backup already running")
	}
	m.status.InProgress = true
	m.mu.Unlock()

	key, err := m.run(ctx)

	m.mu.Lock()
	m.status.InProgress = false
	if err != nil {
		m.status.LastError = err.Error()
	} else {
		now := time.Now().UTC()
		m.status.LastBackup = &now
		m.status.LastError = ""
	}
	m.mu.Unlock()
	return key, err
}

func (m *Manager) run(ctx context.Context) (string, error) {
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("wal checkpoint: %w", err)
	}

	plaintext, err := os.ReadFile(m.cfg.DBPath)
	if err != nil {
		return "", fmt.Errorf("read database: %w", err)
	}

	sealed, err := Seal(plaintext, m.cfg.Passphrase)
	if err != nil {
		return "", fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := keyPrefix + time.Now().UTC().Format("backup-2006-01-02T150405Z.db.enc")
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.logger.Info("backup uploaded", "key", key, "bytes", len(sealed))
	return key, nil
}

// List returns stored snapshots, newest first.
func (m *Manager) List(ctx context.Context) ([]Snapshot, error) {
	if m.client == nil {
		return nil, fmt.Errorf("backup not configured")
	}
	out, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.cfg.Bucket),
		Prefix: aws.String(keyPrefix),
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(out.Contents))
	for _, obj := range out.Contents {
		snap := Snapshot{Key: aws.ToString(obj.Key)}
		if obj.Size != nil {
			snap.SizeBytes = *obj.Size
		}
		if obj.LastModified != nil {
			snap.CreatedAt = *obj.LastModified
		}
		snapshots = append(snapshots, snap)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Prune deletes snapshots older than the retention period.
func (m *Manager) Prune(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	retention := m.cfg.RetentionDays
	if retention <= 0 {
		retention = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retention)

	snapshots, err := m.List(ctx)
	if err != nil {
		return err
	}
	for _, snap := range snapshots {
		if snap.CreatedAt.IsZero() || !snap.CreatedAt.Before(cutoff) {
			continue
		}
		_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    aws.String(snap.Key),
		})
		if err != nil {
			return fmt.Errorf("delete snapshot %s: %w", snap.Key, err)
		}
		m.logger.Info("backup pruned", "key", snap.Key)
	}
	return nil
}

// Restore downloads a snapshot, decrypts it, verifies it is a sound
// SQLite file and swaps it in place of the live database. The caller
// must restart the server afterwards.
func (m *Manager) Restore(ctx context.Context, key string) error {
	if m.client == nil {
		return fmt.Errorf("backup not configured")
	}

	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download snapshot: %w", err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	plaintext, err := Open(sealed, m.cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("decrypt snapshot: %w", err)
	}

	tmp := m.cfg.DBPath + ".restore-" + path.Base(key)
	if err := os.WriteFile(tmp, plaintext, 0600); err != nil {
		return fmt.Errorf("write restored db: %w", err)
	}
	defer os.Remove(tmp)

	check, err := sql.Open("sqlite", tmp)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	var integrity string
	if err := check.QueryRow("PRAGMA integrity_check").Scan(&integrity); err != nil {
		check.Close()
		return fmt.Errorf("integrity check: %w", err)
	}
	check.Close()
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}

	if err := os.Rename(tmp, m.cfg.DBPath); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}
	os.Remove(m.cfg.DBPath + "-wal")
	os.Remove(m.cfg.DBPath + "-shm")
	return nil
}
