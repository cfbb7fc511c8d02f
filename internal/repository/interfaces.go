// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/goodmemory/tripmark/internal/model"
)

// UserRepository はユーザーデータ（アイデンティティストア）の永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定emailのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// UpsertFromProvider はemailを照合キーとしてユーザーを作成または更新する。
	// 既存ユーザーの場合はname/provider/provider_id/access_tokenを上書きする
	// （emailは変更されない）。存在しない場合は新規作成する。
	// emailの一意制約により、同一emailへの同時初回ログインでも行は1つに収束する。
	UpsertFromProvider(ctx context.Context, provider, providerID, accessToken, name, email string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
// レコードはプロセス再起動後も有効でなければならない。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。
	// 存在しない、または期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。
	// 冪等であり、存在しないセッションの削除はエラーにならない。
	DeleteByID(ctx context.Context, id string) error
}

// PlaceRepository は旅行先データの永続化インターフェース。
type PlaceRepository interface {
	// Create は旅行先を作成する。
	Create(ctx context.Context, place *model.Place) error

	// FindByID は指定IDの旅行先を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Place, error)

	// Update はpatchに含まれるフィールドのみを上書きする部分更新を行う。
	// patchのnilフィールドは既存の値を維持する。見つからない場合はnilを返す。
	Update(ctx context.Context, id string, patch model.PlacePatch) (*model.Place, error)

	// Delete は指定IDの旅行先を削除する。削除された場合はtrueを返す。
	Delete(ctx context.Context, id string) (bool, error)

	// List はフィルタに一致する旅行先の一覧を返す。
	// フィルタのnilフィールドは条件なしとして扱われ、全条件なしで全件を返す。
	List(ctx context.Context, filter model.PlaceFilter) ([]*model.Place, error)
}

// TravelRepository は旅行計画データの永続化インターフェース。
type TravelRepository interface {
	// Create は旅行計画を作成する。
	Create(ctx context.Context, travel *model.Travel) error

	// FindByID は指定IDの旅行計画を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Travel, error)

	// List は全旅行計画を返す。
	List(ctx context.Context) ([]*model.Travel, error)

	// Patch は属性集合に任意キーのパッチをマージする。
	// パッチに含まれないキーは維持される。見つからない場合はnilを返す。
	Patch(ctx context.Context, id string, attrs map[string]any) (*model.Travel, error)

	// Delete は指定IDの旅行計画を削除する。削除された場合はtrueを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// AnnotationRepository は注釈（行きたい/レビュー）の永続化インターフェース。
// wishesとreviewsは同一の契約を持ち、格納先テーブルのみが異なる。
type AnnotationRepository interface {
	// Create は注釈行を追加する。(user, place) の重複チェックは行わない。
	Create(ctx context.Context, a *model.Annotation) error

	// DeleteByUserAndPlace は (userID, placeID) に一致する全行を削除し、
	// 削除行数を返す。一意制約がないため複数行の削除があり得る。
	DeleteByUserAndPlace(ctx context.Context, userID, placeID string) (int64, error)

	// CountByPlace は指定placeの注釈行数を返す。ユーザーでの絞り込みは行わない。
	CountByPlace(ctx context.Context, placeID string) (int, error)

	// ListByPlace は指定placeの注釈を作成日時順で返す。
	ListByPlace(ctx context.Context, placeID string) ([]*model.Annotation, error)
}
