package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/goodmemory/tripmark/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, email, name, provider, provider_id, access_token, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Name,
		&user.Provider, &user.ProviderID, &user.AccessToken,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail は指定emailのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// UpsertFromProvider はemailを照合キーとしてユーザーを作成または更新する。
// INSERT ON CONFLICT(email) により検索と書き込みが単一文で行われるため、
// 同一emailへの同時初回ログインが競合してもユーザー行は1つに収束する。
func (r *PostgresUserRepo) UpsertFromProvider(ctx context.Context, provider, providerID, accessToken, name, email string) (*model.User, error) {
	now := time.Now().UTC()

	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, name, provider, provider_id, access_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (email) DO UPDATE SET
		     name = EXCLUDED.name,
		     provider = EXCLUDED.provider,
		     provider_id = EXCLUDED.provider_id,
		     access_token = EXCLUDED.access_token,
		     updated_at = EXCLUDED.updated_at
		 RETURNING `+userColumns,
		uuid.New().String(), email, name, provider, providerID, accessToken, now,
	).Scan(
		&user.ID, &user.Email, &user.Name,
		&user.Provider, &user.ProviderID, &user.AccessToken,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
