// Package annotation はwish/レビューの集約ロジックを提供する。
package annotation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goodmemory/tripmark/internal/model"
	"github.com/goodmemory/tripmark/internal/repository"
	"github.com/goodmemory/tripmark/internal/security"
)

// Service は注釈（行きたい/レビュー）の集約サービス層。
// 追加・全件削除・件数取得を提供する。追加時は旅行先と行為者ユーザーの
// 存在を確認し、(user, place) の重複行は許容する。
type Service struct {
	placeRepo  repository.PlaceRepository
	userRepo   repository.UserRepository
	wishRepo   repository.AnnotationRepository
	reviewRepo repository.AnnotationRepository
	sanitizer  security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	placeRepo repository.PlaceRepository,
	userRepo repository.UserRepository,
	wishRepo repository.AnnotationRepository,
	reviewRepo repository.AnnotationRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		placeRepo:  placeRepo,
		userRepo:   userRepo,
		wishRepo:   wishRepo,
		reviewRepo: reviewRepo,
		sanitizer:  sanitizer,
	}
}

func (s *Service) repoFor(kind model.AnnotationKind) (repository.AnnotationRepository, error) {
	switch kind {
	case model.AnnotationWish:
		return s.wishRepo, nil
	case model.AnnotationReview:
		return s.reviewRepo, nil
	default:
		return nil, fmt.Errorf("unknown annotation kind: %s", kind)
	}
}

// Add は注釈行を追加する。
// 旅行先が存在しない場合はPLACE_NOT_FOUND、行為者ユーザーが存在しない
// 場合はUSER_NOT_FOUNDエラーを返す。未知のユーザーをストレージのFK違反
// （ストレージ障害扱い）まで流さない。
// 既存の (user, place) の組に対する重複チェックは行わない。
func (s *Service) Add(ctx context.Context, kind model.AnnotationKind, placeID, userID, comment string) (*model.Annotation, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}

	place, err := s.placeRepo.FindByID(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check place existence: %w", err)
	}
	if place == nil {
		return nil, model.NewPlaceNotFoundError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	a := &model.Annotation{
		UserID:  userID,
		PlaceID: placeID,
		Comment: s.sanitizer.Sanitize(comment),
	}
	if err := repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to add %s: %w", kind, err)
	}

	return a, nil
}

// Remove は (userID, placeID) に一致する注釈行を全て削除し、削除行数を返す。
// 一意制約がないため複数行が対象になり得る。全件削除により、
// 一致行が何行あっても再実行で結果が変わらない（冪等）。
// 一致行が0件でもエラーにはならない。
func (s *Service) Remove(ctx context.Context, kind model.AnnotationKind, placeID, userID string) (int64, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return 0, err
	}

	deleted, err := repo.DeleteByUserAndPlace(ctx, userID, placeID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove %s: %w", kind, err)
	}

	if deleted > 1 {
		slog.Info("removed duplicate annotation rows",
			slog.String("kind", string(kind)),
			slog.String("place_id", placeID),
			slog.String("user_id", userID),
			slog.Int64("deleted", deleted),
		)
	}

	return deleted, nil
}

// Count は指定placeの注釈行数を返す。ユーザーでの絞り込みは行わない。
func (s *Service) Count(ctx context.Context, kind model.AnnotationKind, placeID string) (int, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return 0, err
	}

	count, err := repo.CountByPlace(ctx, placeID)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return count, nil
}
