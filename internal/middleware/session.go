// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goodmemory/tripmark/internal/model"
)

// SessionCookieName はセッションハンドルを保持するCookieの名前。
const SessionCookieName = "connect.sid"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// SessionResolver はセッションハンドルの解決に必要なインターフェース。
// 存在しない、または期限切れのハンドルにはnilを返す。
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*model.Session, error)
}

// NewSessionMiddleware はCookieからセッションを解決し、束縛されたユーザーを
// リクエストコンテキストに注入するミドルウェアを返す。
// プロセス全体で単一のSessionResolverを共有し、ルーターの最上位で1回だけ適用する。
// リソース操作は認証なしでも許可されるため、匿名リクエストはそのまま通過させる。
// ハンドルの解決は1リクエストにつき1回だけ行われる。
func NewSessionMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.ResolveSession(r.Context(), cookie.Value)
			if err != nil {
				// ストア障害は匿名として継続せず、セッション障害として返す
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			user := session.UserSnapshot()
			ctx := context.WithValue(r.Context(), userContextKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 匿名リクエストの場合はエラーを返す。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストにユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
