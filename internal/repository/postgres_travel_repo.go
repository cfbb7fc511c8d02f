package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/goodmemory/tripmark/internal/model"
)

// PostgresTravelRepo はPostgreSQLを使用した旅行計画リポジトリ。
// 計画内容はJSONBカラムに格納し、任意キーの部分パッチをサポートする。
type PostgresTravelRepo struct {
	db *sql.DB
}

// NewPostgresTravelRepo はPostgresTravelRepoを生成する。
func NewPostgresTravelRepo(db *sql.DB) *PostgresTravelRepo {
	return &PostgresTravelRepo{db: db}
}

func scanTravel(id string, raw []byte, createdAt, updatedAt time.Time) (*model.Travel, error) {
	travel := &model.Travel{
		ID:        id,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if err := json.Unmarshal(raw, &travel.Attributes); err != nil {
		return nil, fmt.Errorf("failed to parse travel attributes: %w", err)
	}
	return travel, nil
}

// Create は旅行計画を作成する。IDが未設定の場合はシステムが採番する。
func (r *PostgresTravelRepo) Create(ctx context.Context, travel *model.Travel) error {
	if travel.ID == "" {
		travel.ID = uuid.New().String()
	}
	if travel.Attributes == nil {
		travel.Attributes = map[string]any{}
	}
	now := time.Now().UTC()
	travel.CreatedAt = now
	travel.UpdatedAt = now

	raw, err := json.Marshal(travel.Attributes)
	if err != nil {
		return fmt.Errorf("failed to serialize travel attributes: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO travels (id, attributes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		travel.ID, raw, travel.CreatedAt, travel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert travel: %w", err)
	}
	return nil
}

// FindByID は指定IDの旅行計画を取得する。見つからない場合はnilを返す。
func (r *PostgresTravelRepo) FindByID(ctx context.Context, id string) (*model.Travel, error) {
	var (
		raw                  []byte
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT attributes, created_at, updated_at FROM travels WHERE id = $1`,
		id,
	).Scan(&raw, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find travel: %w", err)
	}

	return scanTravel(id, raw, createdAt, updatedAt)
}

// List は全旅行計画を作成日時順で返す。
func (r *PostgresTravelRepo) List(ctx context.Context) ([]*model.Travel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, attributes, created_at, updated_at FROM travels ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list travels: %w", err)
	}
	defer rows.Close()

	var travels []*model.Travel
	for rows.Next() {
		var (
			id                   string
			raw                  []byte
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &raw, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan travel: %w", err)
		}
		travel, err := scanTravel(id, raw, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		travels = append(travels, travel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate travels: %w", err)
	}

	return travels, nil
}

// Patch は属性集合にパッチをマージする。
// JSONBの連結演算子により、パッチに含まれるキーのみが上書きされ、
// 含まれないキーは維持される。見つからない場合はnilを返す。
func (r *PostgresTravelRepo) Patch(ctx context.Context, id string, attrs map[string]any) (*model.Travel, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	patch, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize travel patch: %w", err)
	}

	var (
		raw                  []byte
		createdAt, updatedAt time.Time
	)
	err = r.db.QueryRowContext(ctx,
		`UPDATE travels
		 SET attributes = attributes || $2::jsonb, updated_at = $3
		 WHERE id = $1
		 RETURNING attributes, created_at, updated_at`,
		id, patch, time.Now().UTC(),
	).Scan(&raw, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to patch travel: %w", err)
	}

	return scanTravel(id, raw, createdAt, updatedAt)
}

// Delete は指定IDの旅行計画を削除する。削除された場合はtrueを返す。
func (r *PostgresTravelRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM travels WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete travel: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// compile-time interface check
var _ TravelRepository = (*PostgresTravelRepo)(nil)
