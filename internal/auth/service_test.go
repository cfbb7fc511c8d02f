package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goodmemory/tripmark/internal/model"
	"github.com/goodmemory/tripmark/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByEmailFn        func(ctx context.Context, email string) (*model.User, error)
	findByIDFn           func(ctx context.Context, id string) (*model.User, error)
	upsertFromProviderFn func(ctx context.Context, provider, providerID, accessToken, name, email string) (*model.User, error)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) UpsertFromProvider(ctx context.Context, provider, providerID, accessToken, name, email string) (*model.User, error) {
	if m.upsertFromProviderFn != nil {
		return m.upsertFromProviderFn(ctx, provider, providerID, accessToken, name, email)
	}
	return &model.User{ID: "user-1", Email: email, Name: name}, nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, session *model.Session) error
	findByIDFn   func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockOAuthProvider struct {
	getLoginURLFn  func(state string) string
	exchangeCodeFn func(ctx context.Context, code string) (*OAuthUserInfo, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if m.exchangeCodeFn != nil {
		return m.exchangeCodeFn(ctx, code)
	}
	return nil, nil
}

type mockLoginRecorder struct {
	successes int
	failures  int
}

func (m *mockLoginRecorder) RecordLoginSuccess() { m.successes++ }
func (m *mockLoginRecorder) RecordLoginFailure() { m.failures++ }

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)
var _ OAuthProvider = (*mockOAuthProvider)(nil)
var _ LoginRecorder = (*mockLoginRecorder)(nil)

// --- テスト ---

func TestGetLoginURL_ReturnsOAuthURL(t *testing.T) {
	provider := &mockOAuthProvider{
		getLoginURLFn: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	svc := NewService(provider, nil, nil, nil, ServiceConfig{SessionMaxAge: 86400})

	url := svc.GetLoginURL("test-state")

	expected := "https://accounts.google.com/o/oauth2/auth?state=test-state"
	if url != expected {
		t.Errorf("GetLoginURL() = %q, want %q", url, expected)
	}
}

func TestHandleCallback_UpsertsUserAndCreatesSession(t *testing.T) {
	ctx := context.Background()

	var gotProvider, gotEmail, gotName string
	var createdSession *model.Session

	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{
				ProviderUserID: "google-user-123",
				Email:          "test@example.com",
				Name:           "Test User",
				AccessToken:    "token-abc",
				Provider:       "google",
			}, nil
		},
	}

	userRepo := &mockUserRepo{
		upsertFromProviderFn: func(ctx context.Context, provider, providerID, accessToken, name, email string) (*model.User, error) {
			gotProvider = provider
			gotEmail = email
			gotName = name
			return &model.User{ID: "user-1", Email: email, Name: name}, nil
		},
	}

	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			createdSession = session
			return nil
		},
	}

	recorder := &mockLoginRecorder{}
	svc := NewService(provider, userRepo, sessionRepo, recorder, ServiceConfig{SessionMaxAge: 3600})

	session, err := svc.HandleCallback(ctx, "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	if gotProvider != "google" {
		t.Errorf("provider = %q, want %q", gotProvider, "google")
	}
	if gotEmail != "test@example.com" {
		t.Errorf("email = %q, want %q", gotEmail, "test@example.com")
	}
	if gotName != "Test User" {
		t.Errorf("name = %q, want %q", gotName, "Test User")
	}

	if createdSession == nil {
		t.Fatal("expected session to be persisted")
	}
	if session.ID == "" {
		t.Error("expected non-empty session ID")
	}
	if session.UserID != "user-1" {
		t.Errorf("session.UserID = %q, want %q", session.UserID, "user-1")
	}
	if session.UserEmail != "test@example.com" {
		t.Errorf("session.UserEmail = %q, want %q", session.UserEmail, "test@example.com")
	}
	if session.UserName != "Test User" {
		t.Errorf("session.UserName = %q, want %q", session.UserName, "Test User")
	}

	// 有効期限はSessionMaxAge秒後に設定される
	wantExpiry := time.Now().Add(3600 * time.Second)
	if session.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || session.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("session.ExpiresAt = %v, want around %v", session.ExpiresAt, wantExpiry)
	}

	if recorder.successes != 1 {
		t.Errorf("login successes = %d, want 1", recorder.successes)
	}
	if recorder.failures != 0 {
		t.Errorf("login failures = %d, want 0", recorder.failures)
	}
}

func TestHandleCallback_SameEmailDifferentLogin_ReusesExistingUser(t *testing.T) {
	ctx := context.Background()

	// 同一emailのユーザーが既に存在する場合、upsertは既存レコードを返す
	userRepo := &mockUserRepo{
		upsertFromProviderFn: func(ctx context.Context, provider, providerID, accessToken, name, email string) (*model.User, error) {
			return &model.User{ID: "existing-user", Email: email, Name: name}, nil
		},
	}

	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{
				ProviderUserID: "google-user-456",
				Email:          "shared@example.com",
				Name:           "Second Login",
				Provider:       "google",
			}, nil
		},
	}

	svc := NewService(provider, userRepo, &mockSessionRepo{}, nil, ServiceConfig{SessionMaxAge: 86400})

	session, err := svc.HandleCallback(ctx, "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if session.UserID != "existing-user" {
		t.Errorf("session.UserID = %q, want %q", session.UserID, "existing-user")
	}
}

func TestHandleCallback_ExchangeFails_ReturnsError(t *testing.T) {
	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return nil, errors.New("provider unavailable")
		},
	}

	recorder := &mockLoginRecorder{}
	svc := NewService(provider, &mockUserRepo{}, &mockSessionRepo{}, recorder, ServiceConfig{SessionMaxAge: 86400})

	if _, err := svc.HandleCallback(context.Background(), "auth-code"); err == nil {
		t.Fatal("expected error when exchange fails")
	}
	if recorder.failures != 1 {
		t.Errorf("login failures = %d, want 1", recorder.failures)
	}
}

func TestHandleCallback_MissingEmail_ReturnsError(t *testing.T) {
	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{
				ProviderUserID: "google-user-123",
				Name:           "No Email",
				Provider:       "google",
			}, nil
		},
	}

	upsertCalled := false
	userRepo := &mockUserRepo{
		upsertFromProviderFn: func(ctx context.Context, provider, providerID, accessToken, name, email string) (*model.User, error) {
			upsertCalled = true
			return nil, nil
		},
	}

	svc := NewService(provider, userRepo, &mockSessionRepo{}, nil, ServiceConfig{SessionMaxAge: 86400})

	if _, err := svc.HandleCallback(context.Background(), "auth-code"); err == nil {
		t.Fatal("expected error when profile has no email")
	}
	if upsertCalled {
		t.Error("upsert must not be called for a profile without email")
	}
}

func TestHandleCallback_MissingName_ReturnsError(t *testing.T) {
	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{
				ProviderUserID: "google-user-123",
				Email:          "test@example.com",
				Provider:       "google",
			}, nil
		},
	}

	svc := NewService(provider, &mockUserRepo{}, &mockSessionRepo{}, nil, ServiceConfig{SessionMaxAge: 86400})

	if _, err := svc.HandleCallback(context.Background(), "auth-code"); err == nil {
		t.Fatal("expected error when profile has no display name")
	}
}

func TestHandleCallback_UpsertFails_ReturnsError(t *testing.T) {
	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{
				ProviderUserID: "google-user-123",
				Email:          "test@example.com",
				Name:           "Test User",
				Provider:       "google",
			}, nil
		},
	}

	userRepo := &mockUserRepo{
		upsertFromProviderFn: func(ctx context.Context, provider, providerID, accessToken, name, email string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}

	recorder := &mockLoginRecorder{}
	svc := NewService(provider, userRepo, &mockSessionRepo{}, recorder, ServiceConfig{SessionMaxAge: 86400})

	if _, err := svc.HandleCallback(context.Background(), "auth-code"); err == nil {
		t.Fatal("expected error when upsert fails")
	}
	if recorder.failures != 1 {
		t.Errorf("login failures = %d, want 1", recorder.failures)
	}
}

func TestLogout_EmptySessionID_IsNoOp(t *testing.T) {
	deleteCalled := false
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deleteCalled = true
			return nil
		},
	}

	svc := NewService(nil, nil, sessionRepo, nil, ServiceConfig{})

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if deleteCalled {
		t.Error("delete must not be called for an empty session ID")
	}
}

func TestLogout_CalledTwice_SecondCallSucceeds(t *testing.T) {
	// ストアのDeleteByIDは冪等なので、2回目のログアウトもエラーにならない
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			return nil
		},
	}

	svc := NewService(nil, nil, sessionRepo, nil, ServiceConfig{})

	if err := svc.Logout(context.Background(), "session-1"); err != nil {
		t.Fatalf("first Logout() error = %v", err)
	}
	if err := svc.Logout(context.Background(), "session-1"); err != nil {
		t.Fatalf("second Logout() error = %v", err)
	}
}

func TestResolveSession_AbsentHandle_ReturnsNil(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, nil
		},
	}

	svc := NewService(nil, nil, sessionRepo, nil, ServiceConfig{})

	session, err := svc.ResolveSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ResolveSession() error = %v", err)
	}
	if session != nil {
		t.Errorf("ResolveSession() = %+v, want nil", session)
	}
}

func TestResolveSession_EmptyHandle_ReturnsNilWithoutStoreAccess(t *testing.T) {
	findCalled := false
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			findCalled = true
			return nil, nil
		},
	}

	svc := NewService(nil, nil, sessionRepo, nil, ServiceConfig{})

	session, err := svc.ResolveSession(context.Background(), "")
	if err != nil {
		t.Fatalf("ResolveSession() error = %v", err)
	}
	if session != nil {
		t.Error("expected nil session for empty handle")
	}
	if findCalled {
		t.Error("store must not be accessed for an empty handle")
	}
}

func TestResolveSession_ReturnsUserSnapshot(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        id,
				UserID:    "user-1",
				UserEmail: "test@example.com",
				UserName:  "Test User",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}

	svc := NewService(nil, nil, sessionRepo, nil, ServiceConfig{})

	session, err := svc.ResolveSession(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("ResolveSession() error = %v", err)
	}
	user := session.UserSnapshot()
	if user.ID != "user-1" || user.Email != "test@example.com" || user.Name != "Test User" {
		t.Errorf("unexpected user snapshot: %+v", user)
	}
}

func TestHandleCallback_WithSecret_IssuesSignedHandle(t *testing.T) {
	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return &OAuthUserInfo{
				ProviderUserID: "google-user-123",
				Email:          "test@example.com",
				Name:           "Test User",
				Provider:       "google",
			}, nil
		},
	}

	// ストアに届いたIDを記録するインメモリセッションリポジトリ
	var stored *model.Session
	var lookedUpID string
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			stored = session
			return nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			lookedUpID = id
			if stored != nil && stored.ID == id {
				return stored, nil
			}
			return nil, nil
		},
	}

	svc := NewService(provider, &mockUserRepo{}, sessionRepo, nil,
		ServiceConfig{SessionMaxAge: 3600, SessionSecret: "cookie-secret"})

	session, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	// ハンドルは "<ID>.<署名>" 形式。ストア内のIDに署名は含まれない
	if !strings.HasPrefix(session.Handle, session.ID+".") {
		t.Errorf("Handle = %q, want prefix %q", session.Handle, session.ID+".")
	}
	if stored == nil || stored.ID != session.ID {
		t.Fatalf("stored session ID = %v, want %q", stored, session.ID)
	}

	// 正しく署名されたハンドルは元のセッションに解決される
	resolved, err := svc.ResolveSession(context.Background(), session.Handle)
	if err != nil {
		t.Fatalf("ResolveSession() error = %v", err)
	}
	if resolved == nil || resolved.ID != session.ID {
		t.Errorf("resolved = %+v, want session %q", resolved, session.ID)
	}
	if lookedUpID != session.ID {
		t.Errorf("store lookup used %q, want the unsigned ID %q", lookedUpID, session.ID)
	}
}

func TestResolveSession_TamperedSignature_ReturnsNilWithoutStoreAccess(t *testing.T) {
	findCalled := false
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			findCalled = true
			return nil, nil
		},
	}

	svc := NewService(nil, nil, sessionRepo, nil,
		ServiceConfig{SessionSecret: "cookie-secret"})

	for _, handle := range []string{
		"deadbeef.0000000000000000000000000000000000000000000000000000000000000000",
		"deadbeef",
	} {
		session, err := svc.ResolveSession(context.Background(), handle)
		if err != nil {
			t.Fatalf("ResolveSession(%q) error = %v", handle, err)
		}
		if session != nil {
			t.Errorf("ResolveSession(%q) = %+v, want nil", handle, session)
		}
	}
	if findCalled {
		t.Error("store must not be accessed for a handle with a bad signature")
	}
}

func TestLogout_TamperedHandle_DoesNotTouchStore(t *testing.T) {
	deleteCalled := false
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deleteCalled = true
			return nil
		},
	}

	svc := NewService(nil, nil, sessionRepo, nil,
		ServiceConfig{SessionSecret: "cookie-secret"})

	if err := svc.Logout(context.Background(), "deadbeef.forged"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if deleteCalled {
		t.Error("delete must not be called for a handle with a bad signature")
	}
}

func TestGenerateSessionID_IsUniqueAndHex(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := generateSessionID()
		if err != nil {
			t.Fatalf("generateSessionID() error = %v", err)
		}
		if len(id) != 64 {
			t.Fatalf("session ID length = %d, want 64", len(id))
		}
		if seen[id] {
			t.Fatal("duplicate session ID generated")
		}
		seen[id] = true
	}
}
