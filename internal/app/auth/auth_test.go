package auth

import (
	"context"
	"testing"
	"time"

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

func createUser(t *testing.T, db *sqlite.DB, username, password string, isActive, isStaff bool) int64 {
	t.Helper()
	ctx := context.Background()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	id, err := db.CreateUser(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		IsActive:     isActive,
		IsStaff:      isStaff,
	})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	return id
}

func TestLoginUser_WrongPasswordRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "worker1", "correct-horse", true, false)

	svc := NewService(db, []byte("test-signing-key"))
	if _, _, err := svc.LoginUser(ctx, "worker1", "wrong-password"); domain.KindOf(err) != domain.KindAuth {
		t.Fatalf("kind = %v, want auth", domain.KindOf(err))
	}
}

func TestLoginUser_InactiveAccountRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "worker1", "correct-horse", false, false)

	svc := NewService(db, []byte("test-signing-key"))
	_, _, err := svc.LoginUser(ctx, "worker1", "correct-horse")
	de, ok := err.(*domain.Error)
	if !ok || de.Sentinel != domain.ErrAccountInactive {
		t.Errorf("err = %v, want ErrAccountInactive", err)
	}
}

func TestLoginAdmin_RequiresStaff(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "worker1", "correct-horse", true, false)

	svc := NewService(db, []byte("test-signing-key"))
	_, _, err := svc.LoginAdmin(ctx, "worker1", "correct-horse")
	de, ok := err.(*domain.Error)
	if !ok || de.Sentinel != domain.ErrNotStaff {
		t.Errorf("err = %v, want ErrNotStaff", err)
	}
}

func TestLoginUser_VerifyRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := createUser(t, db, "worker1", "correct-horse", true, false)

	svc := NewService(db, []byte("test-signing-key"))
	access, refresh, err := svc.LoginUser(ctx, "worker1", "correct-horse")
	if err != nil {
		t.Fatalf("LoginUser() error: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty access and refresh tokens")
	}

	claims, err := svc.Verify(ctx, access)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.UserID != userID || claims.Surf != SurfaceUser {
		t.Errorf("claims = %+v, want user_id=%d surf=user", claims, userID)
	}
}

func TestLogin_NewLoginInvalidatesPriorSessionOnSameSurfaceOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "worker1", "correct-horse", true, true)

	svc := NewService(db, []byte("test-signing-key"))
	adminAccess, _, err := svc.LoginAdmin(ctx, "worker1", "correct-horse")
	if err != nil {
		t.Fatalf("LoginAdmin() error: %v", err)
	}
	firstAccess, _, err := svc.LoginUser(ctx, "worker1", "correct-horse")
	if err != nil {
		t.Fatalf("first LoginUser() error: %v", err)
	}

	if _, _, err := svc.LoginUser(ctx, "worker1", "correct-horse"); err != nil {
		t.Fatalf("second LoginUser() error: %v", err)
	}

	if _, err := svc.Verify(ctx, firstAccess); err == nil {
		t.Fatal("expected the first session's token to be invalidated by the second login")
	}
	if _, err := svc.Verify(ctx, adminAccess); err != nil {
		t.Fatalf("Verify(admin access) error: %v, want the admin session untouched by user logins", err)
	}
}

func TestRefresh_MintsNewAccessToken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "worker1", "correct-horse", true, false)

	svc := NewService(db, []byte("test-signing-key"))
	_, refresh, err := svc.LoginUser(ctx, "worker1", "correct-horse")
	if err != nil {
		t.Fatalf("LoginUser() error: %v", err)
	}

	access, err := svc.Refresh(ctx, refresh)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if _, err := svc.Verify(ctx, access); err != nil {
		t.Fatalf("Verify(refreshed access) error: %v", err)
	}
}

func TestVerify_MalformedTokenRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, []byte("test-signing-key"))
	if _, err := svc.Verify(context.Background(), "not-a-jwt"); domain.KindOf(err) != domain.KindAuth {
		t.Fatalf("kind = %v, want auth", domain.KindOf(err))
	}
}

func TestVerifyTransactionalPassword(t *testing.T) {
	hash, err := HashTransactionalPassword("4242")
	if err != nil {
		t.Fatalf("HashTransactionalPassword() error: %v", err)
	}
	user := &domain.User{TransactPasswordHash: hash}

	if err := VerifyTransactionalPassword(user, "4242"); err != nil {
		t.Errorf("VerifyTransactionalPassword() error: %v", err)
	}
	if err := VerifyTransactionalPassword(user, "0000"); err == nil {
		t.Error("expected mismatch error for wrong transactional password")
	}
}

// With TokenValidityPeriodHours set to 0 in settings, the access token
// expiry falls back to one hour.
func TestAccessTTL_FallsBackWhenUnset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	settings, err := db.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() error: %v", err)
	}
	settings.TokenValidityPeriodHours = 0
	if err := db.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}

	svc := NewService(db, []byte("test-signing-key"))
	ttl, err := svc.accessTTL(ctx)
	if err != nil {
		t.Fatalf("accessTTL() error: %v", err)
	}
	if ttl != time.Hour {
		t.Errorf("accessTTL = %s, want 1h default", ttl)
	}
}
