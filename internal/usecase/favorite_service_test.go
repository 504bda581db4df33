package usecase

import (
	"errors"
	"testing"

	"github.com/acewatch/acewatch/internal/domain/favorite"
	"github.com/acewatch/acewatch/internal/infrastructure/repository/memory"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

func newFavoriteService() *FavoriteService {
	return NewFavoriteService(memory.NewFavoriteRepository(), nil, logging.NewNop())
}

func TestFavoriteService_Add_ValidatesInput(t *testing.T) {
	svc := newFavoriteService()

	if _, err := svc.Add(t.Context(), "user-1", "team", "Sinner"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got=%v", err)
	}
	if _, err := svc.Add(t.Context(), "user-1", favorite.TypePlayer, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty target, got=%v", err)
	}
}

func TestFavoriteService_Add_IsIdempotent(t *testing.T) {
	svc := newFavoriteService()

	first, err := svc.Add(t.Context(), "user-1", favorite.TypePlayer, "Sinner")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	second, err := svc.Add(t.Context(), "user-1", "PLAYER", "Sinner")
	if err != nil {
		t.Fatalf("repeat add failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the existing favorite back, got=%q vs %q", second.ID, first.ID)
	}

	items, err := svc.List(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one favorite, got=%d", len(items))
	}
}

func TestFavoriteService_ListAndRemove_ScopedToUser(t *testing.T) {
	svc := newFavoriteService()

	mine, err := svc.Add(t.Context(), "user-1", favorite.TypeMatch, "event-9")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.Add(t.Context(), "user-2", favorite.TypePlayer, "Alcaraz"); err != nil {
		t.Fatalf("add for second user failed: %v", err)
	}

	items, err := svc.List(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].Target != "event-9" {
		t.Fatalf("unexpected favorites %+v", items)
	}

	if err := svc.Remove(t.Context(), mine.ID, "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing another user's favorite, got=%v", err)
	}
	if err := svc.Remove(t.Context(), mine.ID, "user-1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := svc.Remove(t.Context(), mine.ID, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated remove, got=%v", err)
	}
}
