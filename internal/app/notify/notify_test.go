package notify

import (
	"context"
	"testing"

	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNotifyUser_AppearsInPending(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID, err := db.CreateUser(ctx, &domain.User{Username: "worker1", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	svc := NewService(db)
	if err := svc.NotifyUser(ctx, userID, "Task ready", "A new album is waiting for your review."); err != nil {
		t.Fatalf("NotifyUser() error: %v", err)
	}

	pending, err := svc.Pending(ctx, userID, 10)
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if pending[0].Title != "Task ready" {
		t.Errorf("title = %q, want %q", pending[0].Title, "Task ready")
	}
}

func TestMarkRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID, err := db.CreateUser(ctx, &domain.User{Username: "worker1", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	svc := NewService(db)
	if err := svc.NotifyUser(ctx, userID, "t", "b"); err != nil {
		t.Fatalf("NotifyUser() error: %v", err)
	}
	pending, err := svc.Pending(ctx, userID, 10)
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if err := svc.MarkRead(ctx, userID, pending[0].ID); err != nil {
		t.Fatalf("MarkRead() error: %v", err)
	}
}

func TestLogAdminAction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	adminID, err := db.CreateUser(ctx, &domain.User{Username: "admin1", PasswordHash: "x", IsStaff: true})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	svc := NewService(db)
	if err := svc.LogAdminAction(ctx, adminID, "adjusted wallet balance for user 42"); err != nil {
		t.Fatalf("LogAdminAction() error: %v", err)
	}
}
