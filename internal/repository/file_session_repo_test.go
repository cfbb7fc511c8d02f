package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goodmemory/tripmark/internal/model"
)

func newTestSessionRepo(t *testing.T) *FileSessionRepo {
	t.Helper()
	repo, err := NewFileSessionRepo(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSessionRepo() error = %v", err)
	}
	return repo
}

func testSession(id string) *model.Session {
	return &model.Session{
		ID:        id,
		UserID:    "user-1",
		UserEmail: "test@example.com",
		UserName:  "Test User",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestFileSessionRepo_CreateAndFind_RoundTripsUserSnapshot(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	session := testSession("abc123def456")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "abc123def456")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found == nil {
		t.Fatal("expected session to be found")
	}

	if found.UserID != session.UserID {
		t.Errorf("UserID = %q, want %q", found.UserID, session.UserID)
	}
	if found.UserEmail != session.UserEmail {
		t.Errorf("UserEmail = %q, want %q", found.UserEmail, session.UserEmail)
	}
	if found.UserName != session.UserName {
		t.Errorf("UserName = %q, want %q", found.UserName, session.UserName)
	}
}

func TestFileSessionRepo_SurvivesRepoRecreation(t *testing.T) {
	// プロセス再起動をシミュレート: 同一ディレクトリで新しいリポジトリを生成する
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileSessionRepo(dir)
	if err != nil {
		t.Fatalf("NewFileSessionRepo() error = %v", err)
	}
	if err := first.Create(ctx, testSession("aaa111")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second, err := NewFileSessionRepo(dir)
	if err != nil {
		t.Fatalf("NewFileSessionRepo() error = %v", err)
	}

	found, err := second.FindByID(ctx, "aaa111")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found == nil {
		t.Fatal("session must survive repository recreation")
	}
}

func TestFileSessionRepo_FindByID_AbsentReturnsNil(t *testing.T) {
	repo := newTestSessionRepo(t)

	found, err := repo.FindByID(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found != nil {
		t.Errorf("FindByID() = %+v, want nil", found)
	}
}

func TestFileSessionRepo_FindByID_ExpiredReturnsNilAndRemovesFile(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	expired := testSession("e0e0e0")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if err := repo.Create(ctx, expired); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "e0e0e0")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found != nil {
		t.Fatal("expired session must not be returned")
	}

	// 期限切れレコードは遅延削除される
	if _, err := os.Stat(filepath.Join(repo.dir, "e0e0e0.json")); !os.IsNotExist(err) {
		t.Error("expired session file must be removed")
	}
}

func TestFileSessionRepo_FindByID_RejectsNonHexID(t *testing.T) {
	repo := newTestSessionRepo(t)

	// パストラバーサルを含む不正なハンドルは「存在しない」扱い
	for _, id := range []string{"../../etc/passwd", "ABC", "abc123Z", ""} {
		found, err := repo.FindByID(context.Background(), id)
		if err != nil {
			t.Errorf("FindByID(%q) error = %v", id, err)
		}
		if found != nil {
			t.Errorf("FindByID(%q) = %+v, want nil", id, found)
		}
	}
}

func TestFileSessionRepo_DeleteByID_RemovesSession(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("bbb222")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.DeleteByID(ctx, "bbb222"); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "bbb222")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found != nil {
		t.Error("deleted session must not be found")
	}
}

func TestFileSessionRepo_DeleteByID_AbsentIsIdempotent(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	if err := repo.DeleteByID(ctx, "cafebabe"); err != nil {
		t.Fatalf("first DeleteByID() error = %v", err)
	}
	if err := repo.DeleteByID(ctx, "cafebabe"); err != nil {
		t.Fatalf("second DeleteByID() error = %v", err)
	}
}

func TestFileSessionRepo_Create_OverwritesExistingRecord(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	session := testSession("ccc333")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	session.UserName = "Renamed User"
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("second Create() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "ccc333")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.UserName != "Renamed User" {
		t.Errorf("UserName = %q, want %q", found.UserName, "Renamed User")
	}
}
