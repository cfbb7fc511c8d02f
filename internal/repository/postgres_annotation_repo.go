package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/goodmemory/tripmark/internal/model"
)

// PostgresAnnotationRepo はPostgreSQLを使用した注釈リポジトリ。
// wishesとreviewsは構造が同一のため、格納先テーブル名のみをパラメータ化した
// 単一の実装を共有する。テーブル名はコンストラクタで固定される。
type PostgresAnnotationRepo struct {
	db    *sql.DB
	table string
}

// NewPostgresWishRepo はwishesテーブルを対象とする注釈リポジトリを生成する。
func NewPostgresWishRepo(db *sql.DB) *PostgresAnnotationRepo {
	return &PostgresAnnotationRepo{db: db, table: "wishes"}
}

// NewPostgresReviewRepo はreviewsテーブルを対象とする注釈リポジトリを生成する。
func NewPostgresReviewRepo(db *sql.DB) *PostgresAnnotationRepo {
	return &PostgresAnnotationRepo{db: db, table: "reviews"}
}

// Create は注釈行を追加する。
// (user_id, place_id) の既存行チェックは行わず、重複行をそのまま許容する。
func (r *PostgresAnnotationRepo) Create(ctx context.Context, a *model.Annotation) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, user_id, place_id, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5)`, r.table),
		a.ID, a.UserID, a.PlaceID, a.Comment, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s annotation: %w", r.table, err)
	}
	return nil
}

// DeleteByUserAndPlace は (userID, placeID) に一致する全行を削除する。
// 一意制約がないため複数行が対象になり得る。削除行数を返す。
func (r *PostgresAnnotationRepo) DeleteByUserAndPlace(ctx context.Context, userID, placeID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND place_id = $2`, r.table),
		userID, placeID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s annotations: %w", r.table, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// CountByPlace は指定placeの注釈行数を返す。
func (r *PostgresAnnotationRepo) CountByPlace(ctx context.Context, placeID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE place_id = $1`, r.table),
		placeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s annotations: %w", r.table, err)
	}
	return count, nil
}

// ListByPlace は指定placeの注釈を作成日時順で返す。
func (r *PostgresAnnotationRepo) ListByPlace(ctx context.Context, placeID string) ([]*model.Annotation, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, user_id, place_id, comment, created_at
		 FROM %s WHERE place_id = $1 ORDER BY created_at`, r.table),
		placeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s annotations: %w", r.table, err)
	}
	defer rows.Close()

	var annotations []*model.Annotation
	for rows.Next() {
		a := &model.Annotation{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.PlaceID, &a.Comment, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s annotation: %w", r.table, err)
		}
		annotations = append(annotations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s annotations: %w", r.table, err)
	}

	return annotations, nil
}

// compile-time interface check
var _ AnnotationRepository = (*PostgresAnnotationRepo)(nil)
