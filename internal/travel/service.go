// Package travel は旅行計画管理のドメインロジックを提供する。
package travel

import (
	"context"
	"fmt"

	"github.com/goodmemory/tripmark/internal/model"
	"github.com/goodmemory/tripmark/internal/repository"
)

// Service は旅行計画管理のサービス層。
// 計画はスキーマを固定しない属性集合であり、任意キーの部分パッチで更新される。
type Service struct {
	travelRepo repository.TravelRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(travelRepo repository.TravelRepository) *Service {
	return &Service{travelRepo: travelRepo}
}

// Create は旅行計画を作成する。
func (s *Service) Create(ctx context.Context, attrs map[string]any) (*model.Travel, error) {
	travel := &model.Travel{Attributes: attrs}
	if err := s.travelRepo.Create(ctx, travel); err != nil {
		return nil, fmt.Errorf("failed to create travel: %w", err)
	}
	return travel, nil
}

// List は全旅行計画を返す。
func (s *Service) List(ctx context.Context) ([]*model.Travel, error) {
	travels, err := s.travelRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list travels: %w", err)
	}
	return travels, nil
}

// Get は旅行計画を取得する。
// 存在しない場合は構造化されたTRAVEL_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Travel, error) {
	travel, err := s.travelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get travel: %w", err)
	}
	if travel == nil {
		return nil, model.NewTravelNotFoundError()
	}
	return travel, nil
}

// Patch はリクエストボディ全体をパッチとして属性集合にマージする。
// パッチに含まれないキーは維持される。
// 存在しない場合はTRAVEL_NOT_FOUNDエラーを返す。
func (s *Service) Patch(ctx context.Context, id string, attrs map[string]any) (*model.Travel, error) {
	travel, err := s.travelRepo.Patch(ctx, id, attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to patch travel: %w", err)
	}
	if travel == nil {
		return nil, model.NewTravelNotFoundError()
	}
	return travel, nil
}

// Delete は旅行計画を削除する。
// 存在しない場合はTRAVEL_NOT_FOUNDエラーを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.travelRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete travel: %w", err)
	}
	if !deleted {
		return model.NewTravelNotFoundError()
	}
	return nil
}
