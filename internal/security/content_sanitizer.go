// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はユーザー入力のテキスト（旅行先の説明、
// wishやレビューのコメント）をサニタイズし、格納値へのHTML混入による
// XSS攻撃からユーザーを保護する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// 保存前のコメント・説明文に対して使用される。
type TextSanitizerService interface {
	// Sanitize は入力からHTMLタグを全て除去したプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// 説明文・コメントはプレーンテキストとして扱うため、
// タグを一切許可しないStrictPolicyを使用する。
func NewTextSanitizer() TextSanitizerService {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize は入力からHTMLタグを全て除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
