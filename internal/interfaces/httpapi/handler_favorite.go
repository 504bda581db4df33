package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/acewatch/acewatch/internal/domain/favorite"
	"github.com/acewatch/acewatch/internal/usecase"
)

type addFavoriteRequest struct {
	Type   string `json:"type" validate:"required,max=32"`
	Target string `json:"target" validate:"required,max=200"`
}

type favoriteDTO struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Target       string `json:"target"`
	CreatedAtUTC string `json:"createdAtUtc"`
}

func favoriteToDTO(ctx context.Context, v favorite.Favorite) favoriteDTO {
	_, span := startSpan(ctx, "httpapi.favoriteToDTO")
	defer span.End()

	return favoriteDTO{
		ID:           v.ID,
		Type:         v.Type,
		Target:       v.Target,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFavorites")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	favorites, err := h.favoriteService.List(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list favorites failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]favoriteDTO, 0, len(favorites))
	for _, v := range favorites {
		items = append(items, favoriteToDTO(ctx, v))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddFavorite")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req addFavoriteRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.favoriteService.Add(ctx, principal.UserID, req.Type, req.Target)
	if err != nil {
		h.logger.WarnContext(ctx, "add favorite failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, favoriteToDTO(ctx, item))
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveFavorite")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	favoriteID := strings.TrimSpace(r.PathValue("favoriteID"))
	if err := h.favoriteService.Remove(ctx, favoriteID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "remove favorite failed", "user_id", principal.UserID, "favorite_id", favoriteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}
