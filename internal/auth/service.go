// Package auth はOAuth認証フローとセッションライフサイクルを提供する。
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goodmemory/tripmark/internal/model"
	"github.com/goodmemory/tripmark/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	AccessToken    string
	Provider       string // "google" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// LoginRecorder はログイン結果のメトリクス記録インターフェース。
type LoginRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int    // セッション有効期間（秒）
	SessionSecret string // ハンドル署名用の秘密鍵。空の場合は署名を付与しない
}

// Service は認証に関するビジネスロジックを提供する。
// 外部IdPのアイデンティティをemailを照合キーとしてローカルのユーザーレコードに
// 統合し、結果をセッションに束縛する。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	metrics     LoginRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	metrics LoginRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		config:      config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// emailが唯一の照合キーであり、プロバイダーを問わず同一emailのユーザーは
// 同一レコードに統合される。既存ユーザーの場合はname/provider/provider_id/
// access_tokenが最新ログインの値で上書きされる。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. プロファイルの必須項目を検証（検証済みemailと表示名）
	if userInfo.Email == "" {
		s.recordFailure()
		return nil, fmt.Errorf("oauth profile has no email")
	}
	if userInfo.Name == "" {
		s.recordFailure()
		return nil, fmt.Errorf("oauth profile has no display name")
	}

	// 3. emailを照合キーとしてユーザーを作成または更新
	user, err := s.userRepo.UpsertFromProvider(ctx,
		userInfo.Provider, userInfo.ProviderUserID,
		userInfo.AccessToken, userInfo.Name, userInfo.Email,
	)
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	slog.Info("user reconciled",
		slog.String("user_id", user.ID),
		slog.String("provider", userInfo.Provider),
	)

	// 4. セッションを発行
	session, err := s.createSession(ctx, user)
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}

	return session, nil
}

// Logout はセッションを破棄する。
// ハンドルが空、署名不一致、またはすでに存在しない場合もエラーにならない（冪等）。
func (s *Service) Logout(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}

	sessionID, ok := s.verifyHandle(handle)
	if !ok {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// ResolveSession はハンドルからセッションを解決する。
// 署名検証を通らないハンドル、存在しない、または期限切れの場合はnilを返す。
// 束縛されたユーザー情報はセッションレコードのスナップショットから読み取られ、
// 1リクエストにつき1回のストア読み取りで完結する。
func (s *Service) ResolveSession(ctx context.Context, handle string) (*model.Session, error) {
	if handle == "" {
		return nil, nil
	}

	sessionID, ok := s.verifyHandle(handle)
	if !ok {
		// 署名の合わないハンドルはストアに届く前に落とす
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// createSession はセッションを作成し永続化する。
// セッションにはダウンストリームのハンドラーが必要とするユーザー情報
// （id/email/name）のスナップショットを含める。
func (s *Service) createSession(ctx context.Context, user *model.User) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    user.ID,
		UserEmail: user.Email,
		UserName:  user.Name,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
		Handle:    s.signHandle(sessionID),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// signHandle はセッションIDにHMAC-SHA256署名を付与したCookie用ハンドルを生成する。
// ストアにはIDが署名なしのまま保持され、署名はCookie側にのみ現れる。
func (s *Service) signHandle(sessionID string) string {
	if s.config.SessionSecret == "" {
		return sessionID
	}
	return sessionID + "." + s.handleSignature(sessionID)
}

// verifyHandle はハンドルの署名を検証し、セッションIDを取り出す。
func (s *Service) verifyHandle(handle string) (string, bool) {
	if s.config.SessionSecret == "" {
		return handle, true
	}
	sessionID, signature, found := strings.Cut(handle, ".")
	if !found {
		return "", false
	}
	if !hmac.Equal([]byte(signature), []byte(s.handleSignature(sessionID))) {
		return "", false
	}
	return sessionID, true
}

func (s *Service) handleSignature(sessionID string) string {
	mac := hmac.New(sha256.New, []byte(s.config.SessionSecret))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) recordFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
