package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/goodmemory/tripmark/internal/model"
)

// PostgresPlaceRepo はPostgreSQLを使用した旅行先リポジトリ。
type PostgresPlaceRepo struct {
	db *sql.DB
}

// NewPostgresPlaceRepo はPostgresPlaceRepoを生成する。
func NewPostgresPlaceRepo(db *sql.DB) *PostgresPlaceRepo {
	return &PostgresPlaceRepo{db: db}
}

const placeColumns = `id, name, description, latitude, longitude, rating, created_at, updated_at`

// Create は旅行先を作成する。IDが未設定の場合はシステムが採番する。
func (r *PostgresPlaceRepo) Create(ctx context.Context, place *model.Place) error {
	if place.ID == "" {
		place.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	place.CreatedAt = now
	place.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO places (id, name, description, latitude, longitude, rating, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		place.ID, place.Name, place.Description,
		place.Location.Latitude, place.Location.Longitude,
		place.Rating, place.CreatedAt, place.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert place: %w", err)
	}
	return nil
}

// FindByID は指定IDの旅行先を取得する。見つからない場合はnilを返す。
func (r *PostgresPlaceRepo) FindByID(ctx context.Context, id string) (*model.Place, error) {
	place := &model.Place{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = $1`,
		id,
	).Scan(
		&place.ID, &place.Name, &place.Description,
		&place.Location.Latitude, &place.Location.Longitude,
		&place.Rating, &place.CreatedAt, &place.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find place: %w", err)
	}
	return place, nil
}

// Update はpatchに含まれるフィールドのみを上書きする部分更新を行う。
// nilフィールドは既存の値を維持する。値0や空文字列はnilと区別され、
// 明示的な上書きとして適用される。見つからない場合はnilを返す。
func (r *PostgresPlaceRepo) Update(ctx context.Context, id string, patch model.PlacePatch) (*model.Place, error) {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Description != nil {
		existing.Description = *patch.Description
	}
	if patch.Location != nil {
		existing.Location = *patch.Location
	}
	if patch.Rating != nil {
		existing.Rating = *patch.Rating
	}
	existing.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx,
		`UPDATE places SET
		    name = $2, description = $3, latitude = $4, longitude = $5, rating = $6, updated_at = $7
		 WHERE id = $1`,
		existing.ID, existing.Name, existing.Description,
		existing.Location.Latitude, existing.Location.Longitude,
		existing.Rating, existing.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update place: %w", err)
	}

	return existing, nil
}

// Delete は指定IDの旅行先を削除する。削除された場合はtrueを返す。
// 関連するwishes/reviewsはCASCADE削除される。
func (r *PostgresPlaceRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM places WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete place: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// List はフィルタに一致する旅行先の一覧を返す。
// name/descriptionは部分一致（大文字小文字を区別する）、ratingは指定値以上。
// 全条件なしの場合は全件を返す。
func (r *PostgresPlaceRepo) List(ctx context.Context, filter model.PlaceFilter) ([]*model.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places`
	var conds []string
	var args []any

	if filter.Name != nil {
		args = append(args, "%"+*filter.Name+"%")
		conds = append(conds, fmt.Sprintf("name LIKE $%d", len(args)))
	}
	if filter.Description != nil {
		args = append(args, "%"+*filter.Description+"%")
		conds = append(conds, fmt.Sprintf("description LIKE $%d", len(args)))
	}
	if filter.MinRating != nil {
		args = append(args, *filter.MinRating)
		conds = append(conds, fmt.Sprintf("rating >= $%d", len(args)))
	}

	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		place := &model.Place{}
		if err := rows.Scan(
			&place.ID, &place.Name, &place.Description,
			&place.Location.Latitude, &place.Location.Longitude,
			&place.Rating, &place.CreatedAt, &place.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}

	return places, nil
}

// compile-time interface check
var _ PlaceRepository = (*PostgresPlaceRepo)(nil)
