package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goodmemory/tripmark/internal/model"
)

// PlaceServiceInterface は旅行先ハンドラーが必要とするサービスインターフェース。
type PlaceServiceInterface interface {
	Create(ctx context.Context, name, description string, location model.Location, rating float64) (*model.Place, error)
	Update(ctx context.Context, id string, patch model.PlacePatch) (*model.Place, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Place, error)
	List(ctx context.Context, filter model.PlaceFilter) ([]*model.Place, error)
}

// AnnotationServiceInterface は注釈（行きたい/レビュー）ハンドラーが必要とするサービスインターフェース。
type AnnotationServiceInterface interface {
	Add(ctx context.Context, kind model.AnnotationKind, placeID, userID, comment string) (*model.Annotation, error)
	Remove(ctx context.Context, kind model.AnnotationKind, placeID, userID string) (int64, error)
	Count(ctx context.Context, kind model.AnnotationKind, placeID string) (int, error)
}

// PlaceHandler は旅行先管理のHTTPハンドラー。
type PlaceHandler struct {
	service     PlaceServiceInterface
	annotations AnnotationServiceInterface
}

// NewPlaceHandler はPlaceHandlerを生成する。
func NewPlaceHandler(service PlaceServiceInterface, annotations AnnotationServiceInterface) *PlaceHandler {
	return &PlaceHandler{
		service:     service,
		annotations: annotations,
	}
}

// createPlaceRequest は旅行先作成リクエストのボディ。
// 必須フィールドの欠落を検出するため、全フィールドをポインタで受ける。
type createPlaceRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Location    *model.Location `json:"location"`
	Rating      *float64        `json:"rating"`
}

// updatePlaceRequest は旅行先の部分更新リクエストのボディ。
// nilのフィールドは「リクエストに含まれなかった」ことを意味する。
// 空文字列や0はnilと区別され、明示的な上書きとして適用される。
type updatePlaceRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Location    *model.Location `json:"location"`
	Rating      *float64        `json:"rating"`
}

// placeResponse は旅行先情報のAPIレスポンス。
type placeResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Location    model.Location `json:"location"`
	Rating      float64        `json:"rating"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func toPlaceResponse(p *model.Place) placeResponse {
	return placeResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Location:    p.Location,
		Rating:      p.Rating,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// annotationResponse は注釈情報のAPIレスポンス。
type annotationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PlaceID   string    `json:"placeId"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAnnotationResponse(a *model.Annotation) annotationResponse {
	return annotationResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		PlaceID:   a.PlaceID,
		Comment:   a.Comment,
		CreatedAt: a.CreatedAt,
	}
}

// CreatePlace は旅行先を作成する。
// POST /places
func (h *PlaceHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var req createPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("failed to parse request body"))
		return
	}

	switch {
	case req.Name == nil:
		handleServiceError(w, model.NewMissingFieldError("name"))
		return
	case req.Description == nil:
		handleServiceError(w, model.NewMissingFieldError("description"))
		return
	case req.Location == nil:
		handleServiceError(w, model.NewMissingFieldError("location"))
		return
	case req.Rating == nil:
		handleServiceError(w, model.NewMissingFieldError("rating"))
		return
	}

	place, err := h.service.Create(r.Context(), *req.Name, *req.Description, *req.Location, *req.Rating)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlaceResponse(place))
}

// UpdatePlace は旅行先を部分更新する。
// PUT /places/:id
// ボディに含まれるフィールドのみを上書きし、含まれないフィールドは維持する。
func (h *PlaceHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "id")

	var req updatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("failed to parse request body"))
		return
	}

	patch := model.PlacePatch{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Rating:      req.Rating,
	}

	place, err := h.service.Update(r.Context(), placeID, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlaceResponse(place))
}

// DeletePlace は旅行先を削除する。
// DELETE /places/:id
func (h *PlaceHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), placeID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "successfully deleted"})
}

// GetPlace は旅行先の詳細を取得する。
// GET /places/:id
func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "id")

	place, err := h.service.Get(r.Context(), placeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlaceResponse(place))
}

// ListPlaces は旅行先の一覧を返す。
// GET /places?name=xxx&description=yyy&rating=3.5
// name/descriptionは部分一致、ratingは指定値以上での絞り込み。
func (h *PlaceHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	var filter model.PlaceFilter

	q := r.URL.Query()
	if v := q.Get("name"); v != "" {
		filter.Name = &v
	}
	if v := q.Get("description"); v != "" {
		filter.Description = &v
	}
	if v := q.Get("rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			handleServiceError(w, model.NewInvalidRequestError("rating must be a number"))
			return
		}
		filter.MinRating = &rating
	}

	places, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]placeResponse, 0, len(places))
	for _, p := range places {
		res = append(res, toPlaceResponse(p))
	}

	writeJSON(w, http.StatusOK, res)
}

// addAnnotationRequest は注釈追加リクエストのボディ。
type addAnnotationRequest struct {
	UserID  string `json:"userId"`
	Comment string `json:"comment"`
}

// removeAnnotationRequest は注釈削除リクエストのボディ。
type removeAnnotationRequest struct {
	UserID string `json:"userId"`
}

// AddAnnotation は注釈を追加するハンドラーを返す。
// POST /places/:id/wish
// POST /places/:id/review
func (h *PlaceHandler) AddAnnotation(kind model.AnnotationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := chi.URLParam(r, "id")

		var req addAnnotationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleServiceError(w, model.NewInvalidRequestError("failed to parse request body"))
			return
		}
		if req.UserID == "" {
			handleServiceError(w, model.NewMissingFieldError("userId"))
			return
		}

		a, err := h.annotations.Add(r.Context(), kind, placeID, req.UserID, req.Comment)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAnnotationResponse(a))
	}
}

// RemoveAnnotation は注釈を削除するハンドラーを返す。
// DELETE /places/:id/wish
// DELETE /places/:id/review
// (userId, placeId) に一致する行を全て削除する。一致行が0件でも成功を返す。
func (h *PlaceHandler) RemoveAnnotation(kind model.AnnotationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := chi.URLParam(r, "id")

		var req removeAnnotationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleServiceError(w, model.NewInvalidRequestError("failed to parse request body"))
			return
		}
		if req.UserID == "" {
			handleServiceError(w, model.NewMissingFieldError("userId"))
			return
		}

		if _, err := h.annotations.Remove(r.Context(), kind, placeID, req.UserID); err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "successfully deleted"})
	}
}

// CountAnnotations は注釈の件数を返すハンドラーを返す。
// GET /places/:id/wishCount
// GET /places/:id/reviewCount
func (h *PlaceHandler) CountAnnotations(kind model.AnnotationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := chi.URLParam(r, "id")

		count, err := h.annotations.Count(r.Context(), kind, placeID)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}
