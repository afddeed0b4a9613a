package worker

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stackmill/accessd/internal/audit"
	"github.com/stackmill/accessd/internal/models"
	"github.com/stackmill/accessd/internal/queue"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestWorker_PersistsEvents(t *testing.T) {
	db := testDB(t)
	q := queue.NewMemoryQueue(8)
	w := New(db, q, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx)
		close(done)
	}()

	userID := uuid.New()
	rec := audit.NewRecorder(q)
	rec.Record(ctx, userID, audit.ActionCreateGroup, "group/1", map[string]interface{}{"code": "eng"})
	rec.Record(ctx, userID, audit.ActionDeleteGroup, "group/1", nil)

	// Wait until both rows land
	deadline := time.After(5 * time.Second)
	for {
		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		if count == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for audit rows, have %d", count)
		case <-time.After(10 * time.Millisecond):
		}
	}

	var logs []models.AuditLog
	if err := db.Order("id ASC").Find(&logs).Error; err != nil {
		t.Fatalf("fetch logs: %v", err)
	}
	if logs[0].Action != audit.ActionCreateGroup || logs[0].Resource != "group/1" {
		t.Errorf("first log = %+v", logs[0])
	}
	if logs[0].UserID != userID {
		t.Errorf("user id = %v, want %v", logs[0].UserID, userID)
	}
	if logs[0].DetailsJSON == "" {
		t.Error("details not serialized")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestWorker_DrainsBufferedEventsOnClose(t *testing.T) {
	db := testDB(t)
	q := queue.NewMemoryQueue(8)
	ctx := context.Background()

	// Events recorded before shutdown, queue closed before the worker
	// touches them. All three must still be persisted.
	rec := audit.NewRecorder(q)
	rec.Record(ctx, uuid.New(), audit.ActionCreateGroup, "group/1", nil)
	rec.Record(ctx, uuid.New(), audit.ActionEditGroup, "group/1", nil)
	rec.Record(ctx, uuid.New(), audit.ActionDeleteGroup, "group/1", nil)
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	w := New(db, q, slog.Default())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("worker: %v", err)
	}

	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	if count != 3 {
		t.Errorf("persisted %d of 3 buffered events", count)
	}
}

func TestWorker_StopsOnQueueClose(t *testing.T) {
	db := testDB(t)
	q := queue.NewMemoryQueue(1)
	w := New(db, q, slog.Default())

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("worker returned %v on queue close, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after queue close")
	}
}
