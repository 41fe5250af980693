package backup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tomthias/cleanAlbere9/internal/database"
)

// mockS3 implements s3API for testing.
type mockS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modTimes map[string]time.Time
}

func newMockS3() *mockS3 {
	return &mockS3{
		objects:  make(map[string][]byte),
		modTimes: make(map[string]time.Time),
	}
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	m.modTimes[*input.Key] = time.Now().UTC()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &noSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *mockS3) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key, data := range m.objects {
		if input.Prefix != nil && !strings.HasPrefix(key, *input.Prefix) {
			continue
		}
		mod := m.modTimes[key]
		out.Contents = append(out.Contents, s3types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(data))),
			LastModified: &mod,
		})
	}
	return out, nil
}

func (m *mockS3) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	delete(m.modTimes, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type noSuchKey struct{}

func (e *noSuchKey) Error() string { return "NoSuchKey" }

func TestSealOpenRoundTrip(t *testing.T) {
	plaintext := []byte("the flat database")

	sealed, err := Seal(plaintext, "correct horse")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Fatal("sealed output contains plaintext")
	}

	opened, err := Open(sealed, "correct horse")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip mismatch: got %q", opened)
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(sealed, "wrong"); err == nil {
		t.Fatal("expected authentication failure with wrong passphrase")
	}
}

func TestOpenTruncated(t *testing.T) {
	if _, err := Open([]byte("short"), "pw"); err == nil {
		t.Fatal("expected error for truncated input")
	}
}

func setupManager(t *testing.T) (*Manager, *mockS3) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "flatmate.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := Config{
		Bucket:     "flat-backups",
		AccessKey:  "key",
		SecretKey:  "secret",
		Passphrase: "pass",
		DBPath:     dbPath,
	}
	m := NewManager(cfg, db, slog.New(slog.DiscardHandler))
	mock := newMockS3()
	m.client = mock
	return m, mock
}

func TestManagerDisabledWithoutConfig(t *testing.T) {
	m := NewManager(Config{}, nil, slog.New(slog.DiscardHandler))
	if m.Status().Enabled {
		t.Error("expected manager disabled without S3 config")
	}
	if _, err := m.Run(context.Background()); err == nil {
		t.Error("expected run to fail when disabled")
	}
}

func TestRunUploadsDecryptableSnapshot(t *testing.T) {
	m, mock := setupManager(t)

	key, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(key, keyPrefix) {
		t.Errorf("key %q missing prefix %q", key, keyPrefix)
	}

	mock.mu.Lock()
	sealed := mock.objects[key]
	mock.mu.Unlock()
	if len(sealed) == 0 {
		t.Fatal("expected uploaded object")
	}
	plaintext, err := Open(sealed, "pass")
	if err != nil {
		t.Fatalf("uploaded snapshot not decryptable: %v", err)
	}
	if !bytes.HasPrefix(plaintext, []byte("SQLite format 3")) {
		t.Error("decrypted snapshot is not a SQLite file")
	}

	status := m.Status()
	if status.LastBackup == nil {
		t.Error("expected last backup timestamp set")
	}
	if status.InProgress {
		t.Error("expected in_progress cleared after run")
	}
}

func TestListNewestFirst(t *testing.T) {
	m, mock := setupManager(t)

	mock.objects[keyPrefix+"backup-old.db.enc"] = []byte("old")
	mock.modTimes[keyPrefix+"backup-old.db.enc"] = time.Now().Add(-48 * time.Hour)
	mock.objects[keyPrefix+"backup-new.db.enc"] = []byte("new")
	mock.modTimes[keyPrefix+"backup-new.db.enc"] = time.Now()

	snaps, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Key != keyPrefix+"backup-new.db.enc" {
		t.Errorf("expected newest first, got %q", snaps[0].Key)
	}
}

func TestPruneKeepsRecent(t *testing.T) {
	m, mock := setupManager(t)
	m.cfg.RetentionDays = 7

	mock.objects[keyPrefix+"backup-stale.db.enc"] = []byte("stale")
	mock.modTimes[keyPrefix+"backup-stale.db.enc"] = time.Now().AddDate(0, 0, -10)
	mock.objects[keyPrefix+"backup-fresh.db.enc"] = []byte("fresh")
	mock.modTimes[keyPrefix+"backup-fresh.db.enc"] = time.Now()

	if err := m.Prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if _, ok := mock.objects[keyPrefix+"backup-stale.db.enc"]; ok {
		t.Error("expected stale snapshot deleted")
	}
	if _, ok := mock.objects[keyPrefix+"backup-fresh.db.enc"]; !ok {
		t.Error("expected fresh snapshot kept")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	m, _ := setupManager(t)

	key, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if err := m.Restore(context.Background(), key); err != nil {
		t.Fatalf("restore: %v", err)
	}

	// The restored file must open and migrate cleanly.
	db, err := database.Open(m.cfg.DBPath)
	if err != nil {
		t.Fatalf("open restored database: %v", err)
	}
	db.Close()
}
