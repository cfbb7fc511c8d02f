// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// emailを自然キーとして外部IdPのアイデンティティと照合される。
// Providerが空のUserはローカル作成のみでOAuthログイン歴がないことを示す。
type User struct {
	ID          string
	Email       string
	Name        string
	Provider    string // "google" 等。ローカル作成の場合は空
	ProviderID  string // IdP側のユーザーID
	AccessToken string // 最終ログイン時のアクセストークン（不透明値）
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session はユーザーのログインセッションを表す。
// レコードはプロセス再起動後も有効でなければならないため、ファイルストアに
// 永続化される。Userスナップショット（id/email/name）はダウンストリームの
// ハンドラーが必要とする形でそのまま往復できるように保持する。
type Session struct {
	ID        string
	UserID    string
	UserEmail string
	UserName  string
	ExpiresAt time.Time
	CreatedAt time.Time

	// Handle はCookieに載せる署名付きハンドル。永続化されない。
	Handle string
}

// UserSnapshot はセッションに紐付いたユーザー情報を返す。
func (s *Session) UserSnapshot() User {
	return User{
		ID:    s.UserID,
		Email: s.UserEmail,
		Name:  s.UserName,
	}
}
