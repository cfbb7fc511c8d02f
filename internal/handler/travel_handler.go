package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goodmemory/tripmark/internal/model"
)

// TravelServiceInterface は旅行計画ハンドラーが必要とするサービスインターフェース。
type TravelServiceInterface interface {
	Create(ctx context.Context, attrs map[string]any) (*model.Travel, error)
	List(ctx context.Context) ([]*model.Travel, error)
	Get(ctx context.Context, id string) (*model.Travel, error)
	Patch(ctx context.Context, id string, attrs map[string]any) (*model.Travel, error)
	Delete(ctx context.Context, id string) error
}

// TravelHandler は旅行計画管理のHTTPハンドラー。
type TravelHandler struct {
	service TravelServiceInterface
}

// NewTravelHandler はTravelHandlerを生成する。
func NewTravelHandler(service TravelServiceInterface) *TravelHandler {
	return &TravelHandler{service: service}
}

// toTravelResponse は旅行計画をAPIレスポンス形式に変換する。
// 計画はスキーマを固定しない属性集合であるため、属性をトップレベルに展開し、
// idを重ねたマップとして返す。
func toTravelResponse(t *model.Travel) map[string]any {
	res := make(map[string]any, len(t.Attributes)+1)
	for k, v := range t.Attributes {
		res[k] = v
	}
	res["id"] = t.ID
	return res
}

// CreateTravel は旅行計画を作成する。
// POST /travels
// ボディ全体を属性集合として保存する。
func (h *TravelHandler) CreateTravel(w http.ResponseWriter, r *http.Request) {
	var attrs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("failed to parse request body"))
		return
	}

	travel, err := h.service.Create(r.Context(), attrs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTravelResponse(travel))
}

// ListTravels は旅行計画の一覧を返す。
// GET /travels
func (h *TravelHandler) ListTravels(w http.ResponseWriter, r *http.Request) {
	travels, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]map[string]any, 0, len(travels))
	for _, t := range travels {
		res = append(res, toTravelResponse(t))
	}

	writeJSON(w, http.StatusOK, res)
}

// GetTravel は旅行計画の詳細を取得する。
// GET /travels/:id
func (h *TravelHandler) GetTravel(w http.ResponseWriter, r *http.Request) {
	travelID := chi.URLParam(r, "id")

	travel, err := h.service.Get(r.Context(), travelID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTravelResponse(travel))
}

// PatchTravel は旅行計画を部分更新する。
// PATCH /travels/:id
// ボディ全体をパッチとして属性集合にマージする。含まれないキーは維持される。
func (h *TravelHandler) PatchTravel(w http.ResponseWriter, r *http.Request) {
	travelID := chi.URLParam(r, "id")

	var attrs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("failed to parse request body"))
		return
	}

	travel, err := h.service.Patch(r.Context(), travelID, attrs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTravelResponse(travel))
}

// DeleteTravel は旅行計画を削除する。
// DELETE /travels/:id
// 成功時はボディなしの204を返す。
func (h *TravelHandler) DeleteTravel(w http.ResponseWriter, r *http.Request) {
	travelID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), travelID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
