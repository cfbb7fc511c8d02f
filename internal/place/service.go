// Package place は旅行先管理のドメインロジックを提供する。
package place

import (
	"context"
	"fmt"

	"github.com/goodmemory/tripmark/internal/model"
	"github.com/goodmemory/tripmark/internal/repository"
	"github.com/goodmemory/tripmark/internal/security"
)

// Service は旅行先管理のサービス層。
// 作成・部分更新・削除・取得・絞り込み一覧のビジネスロジックを提供する。
type Service struct {
	placeRepo repository.PlaceRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(placeRepo repository.PlaceRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		placeRepo: placeRepo,
		sanitizer: sanitizer,
	}
}

// Create は旅行先を作成し、システム採番のIDを含むレコードを返す。
// 値の妥当性検証は行わない（ストレージ層の型変換に委ねる）。
func (s *Service) Create(ctx context.Context, name, description string, location model.Location, rating float64) (*model.Place, error) {
	place := &model.Place{
		Name:        name,
		Description: s.sanitizer.Sanitize(description),
		Location:    location,
		Rating:      rating,
	}

	if err := s.placeRepo.Create(ctx, place); err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	return place, nil
}

// Update はpatchに含まれるフィールドのみを上書きする部分更新を行う。
// リクエストに含まれなかったフィールドは維持される。
// 更新対象フィールドが1つもない場合はINVALID_REQUESTエラーを返す。
// 旅行先が存在しない場合はPLACE_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, id string, patch model.PlacePatch) (*model.Place, error) {
	if patch.IsEmpty() {
		return nil, model.NewInvalidRequestError("no fields to update")
	}

	if patch.Description != nil {
		sanitized := s.sanitizer.Sanitize(*patch.Description)
		patch.Description = &sanitized
	}

	place, err := s.placeRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update place: %w", err)
	}
	if place == nil {
		return nil, model.NewPlaceNotFoundError()
	}

	return place, nil
}

// Delete は旅行先を削除する。関連するwishes/reviewsはストレージ層でCASCADE削除される。
// 旅行先が存在しない場合はPLACE_NOT_FOUNDエラーを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.placeRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if !deleted {
		return model.NewPlaceNotFoundError()
	}
	return nil
}

// Get は旅行先を取得する。
// 存在しない場合は例外的な失敗ではなく、構造化されたPLACE_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Place, error) {
	place, err := s.placeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	if place == nil {
		return nil, model.NewPlaceNotFoundError()
	}
	return place, nil
}

// List はフィルタに一致する旅行先の一覧を返す。
// フィルタなしの場合は全件を返す。結果は常にフィルタなしの結果の部分集合となる。
func (s *Service) List(ctx context.Context, filter model.PlaceFilter) ([]*model.Place, error) {
	places, err := s.placeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}
