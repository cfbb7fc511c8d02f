package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goodmemory/tripmark/internal/model"
)

// FileSessionRepo はファイルストアを使用したセッションリポジトリ。
// セッションごとに1つのJSONファイルを設定済みディレクトリ配下に保持し、
// プロセス再起動後もセッションが有効であることを保証する。
type FileSessionRepo struct {
	dir string
}

// NewFileSessionRepo はFileSessionRepoを生成する。
// ディレクトリが存在しない場合は作成する。
func NewFileSessionRepo(dir string) (*FileSessionRepo, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileSessionRepo{dir: dir}, nil
}

// sessionRecord はセッションファイルのシリアライズ形式。
// ダウンストリームのハンドラーが必要とするユーザー情報（id/email/name）を
// そのまま往復できる形で保持する。
type sessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	UserName  string    `json:"user_name"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Create はセッションを作成する。
// 一時ファイルに書き込んでからrenameすることで、中途半端なレコードが
// 読み取られないようにする。
func (r *FileSessionRepo) Create(ctx context.Context, session *model.Session) error {
	path, err := r.sessionPath(session.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(sessionRecord{
		ID:        session.ID,
		UserID:    session.UserID,
		UserEmail: session.UserEmail,
		UserName:  session.UserName,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit session file: %w", err)
	}

	return nil
}

// FindByID は指定IDのセッションを取得する。
// 存在しない場合はnilを返す。期限切れのレコードはnilを返し、ファイルを遅延削除する。
func (r *FileSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	path, err := r.sessionPath(id)
	if err != nil {
		// 不正なハンドルは「存在しない」扱い
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	if time.Now().After(rec.ExpiresAt) {
		_ = os.Remove(path)
		return nil, nil
	}

	return &model.Session{
		ID:        rec.ID,
		UserID:    rec.UserID,
		UserEmail: rec.UserEmail,
		UserName:  rec.UserName,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// DeleteByID は指定IDのセッションを削除する。
// 冪等であり、すでに存在しないセッションの削除はエラーにならない。
func (r *FileSessionRepo) DeleteByID(ctx context.Context, id string) error {
	path, err := r.sessionPath(id)
	if err != nil {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// sessionPath はセッションIDからファイルパスを導出する。
// IDは16進文字列のみを許容し、パストラバーサルを防ぐ。
func (r *FileSessionRepo) sessionPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty session ID")
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("invalid session ID")
		}
	}
	return filepath.Join(r.dir, id+".json"), nil
}

// compile-time interface check
var _ SessionRepository = (*FileSessionRepo)(nil)
