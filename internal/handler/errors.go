package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goodmemory/tripmark/internal/middleware"
	"github.com/goodmemory/tripmark/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// レスポンスボディは全リソース共通の {"message": ...} 形式。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr.Message)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// リソース種別を問わず単一の対応表で変換する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest, model.ErrCodeMissingField:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodePlaceNotFound, model.ErrCodeTravelNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeStorageFault:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
