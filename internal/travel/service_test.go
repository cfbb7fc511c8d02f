package travel

import (
	"context"
	"errors"
	"testing"

	"github.com/goodmemory/tripmark/internal/model"
	"github.com/goodmemory/tripmark/internal/repository"
)

// --- モック定義 ---

type mockTravelRepo struct {
	createFn   func(ctx context.Context, travel *model.Travel) error
	findByIDFn func(ctx context.Context, id string) (*model.Travel, error)
	listFn     func(ctx context.Context) ([]*model.Travel, error)
	patchFn    func(ctx context.Context, id string, attrs map[string]any) (*model.Travel, error)
	deleteFn   func(ctx context.Context, id string) (bool, error)
}

func (m *mockTravelRepo) Create(ctx context.Context, travel *model.Travel) error {
	if m.createFn != nil {
		return m.createFn(ctx, travel)
	}
	travel.ID = "travel-1"
	return nil
}

func (m *mockTravelRepo) FindByID(ctx context.Context, id string) (*model.Travel, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTravelRepo) List(ctx context.Context) ([]*model.Travel, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockTravelRepo) Patch(ctx context.Context, id string, attrs map[string]any) (*model.Travel, error) {
	if m.patchFn != nil {
		return m.patchFn(ctx, id, attrs)
	}
	return nil, nil
}

func (m *mockTravelRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

var _ repository.TravelRepository = (*mockTravelRepo)(nil)

// --- テスト ---

func TestCreate_PersistsAttributes(t *testing.T) {
	var created *model.Travel
	repo := &mockTravelRepo{
		createFn: func(ctx context.Context, travel *model.Travel) error {
			travel.ID = "travel-1"
			created = travel
			return nil
		},
	}
	svc := NewService(repo)

	travel, err := svc.Create(context.Background(), map[string]any{"title": "夏休み", "days": 5.0})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if travel.ID != "travel-1" {
		t.Errorf("ID = %q, want %q", travel.ID, "travel-1")
	}
	if created.Attributes["title"] != "夏休み" {
		t.Errorf("title = %v, want 夏休み", created.Attributes["title"])
	}
}

func TestGet_NotFound_ReturnsTravelNotFound(t *testing.T) {
	svc := NewService(&mockTravelRepo{})

	_, err := svc.Get(context.Background(), "missing")
	assertTravelNotFound(t, err)
}

func TestPatch_PassesAttrsThrough(t *testing.T) {
	var gotAttrs map[string]any
	repo := &mockTravelRepo{
		patchFn: func(ctx context.Context, id string, attrs map[string]any) (*model.Travel, error) {
			gotAttrs = attrs
			return &model.Travel{ID: id, Attributes: attrs}, nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Patch(context.Background(), "travel-1", map[string]any{"days": 7.0})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if gotAttrs["days"] != 7.0 {
		t.Errorf("days = %v, want 7", gotAttrs["days"])
	}
}

func TestPatch_NotFound_ReturnsTravelNotFound(t *testing.T) {
	repo := &mockTravelRepo{
		patchFn: func(ctx context.Context, id string, attrs map[string]any) (*model.Travel, error) {
			return nil, nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Patch(context.Background(), "missing", map[string]any{"days": 7.0})
	assertTravelNotFound(t, err)
}

func TestDelete_NotFound_ReturnsTravelNotFound(t *testing.T) {
	svc := NewService(&mockTravelRepo{})

	err := svc.Delete(context.Background(), "missing")
	assertTravelNotFound(t, err)
}

func TestDelete_Found_Succeeds(t *testing.T) {
	repo := &mockTravelRepo{
		deleteFn: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}
	svc := NewService(repo)

	if err := svc.Delete(context.Background(), "travel-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestList_ReturnsAll(t *testing.T) {
	repo := &mockTravelRepo{
		listFn: func(ctx context.Context) ([]*model.Travel, error) {
			return []*model.Travel{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	svc := NewService(repo)

	travels, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(travels) != 2 {
		t.Errorf("len(travels) = %d, want 2", len(travels))
	}
}

func assertTravelNotFound(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTravelNotFound {
		t.Errorf("expected TRAVEL_NOT_FOUND, got %v", err)
	}
}
