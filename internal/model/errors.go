// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// ハンドラー層で単一のコード→ステータス対応表によりHTTPステータスへ変換される。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（レスポンスのmessageフィールドにそのまま載る）
	Category string // カテゴリ: auth, validation, resource, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeMissingField    = "MISSING_FIELD"
	ErrCodePlaceNotFound   = "PLACE_NOT_FOUND"
	ErrCodeTravelNotFound  = "TRAVEL_NOT_FOUND"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeStorageFault    = "STORAGE_FAULT"
)

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  reason,
		Category: "validation",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("required field is missing: %s", field),
		Category: "validation",
	}
}

// NewPlaceNotFoundError は旅行先未検出エラーを生成する。
func NewPlaceNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePlaceNotFound,
		Message:  "Place not found",
		Category: "resource",
	}
}

// NewTravelNotFoundError は旅行計画未検出エラーを生成する。
func NewTravelNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTravelNotFound,
		Message:  "Cannot find given travel.",
		Category: "resource",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "user not found",
		Category: "auth",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "authentication required",
		Category: "auth",
	}
}
