package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/acewatch/acewatch/internal/domain/alert"
	"github.com/acewatch/acewatch/internal/usecase"
)

type createAlertRequest struct {
	EventID string `json:"eventId" validate:"required,max=64"`
	Trigger string `json:"trigger" validate:"required,max=32"`
}

type updateAlertRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type alertDTO struct {
	ID           string `json:"id"`
	EventID      string `json:"eventId"`
	Trigger      string `json:"trigger"`
	Active       bool   `json:"active"`
	CreatedAtUTC string `json:"createdAtUtc"`
}

func alertToDTO(ctx context.Context, v alert.Alert) alertDTO {
	_, span := startSpan(ctx, "httpapi.alertToDTO")
	defer span.End()

	return alertDTO{
		ID:           v.ID,
		EventID:      v.EventID,
		Trigger:      v.Trigger,
		Active:       v.Active,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAlerts")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	alerts, err := h.alertService.List(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list alerts failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]alertDTO, 0, len(alerts))
	for _, v := range alerts {
		items = append(items, alertToDTO(ctx, v))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateAlert")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createAlertRequest
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

	item, err := h.alertService.Create(ctx, principal.UserID, req.EventID, req.Trigger)
	if err != nil {
		h.logger.WarnContext(ctx, "create alert failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, alertToDTO(ctx, item))
}

func (h *Handler) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateAlert")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updateAlertRequest
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

	alertID := strings.TrimSpace(r.PathValue("alertID"))
	item, err := h.alertService.SetActive(ctx, alertID, principal.UserID, *req.Active)
	if err != nil {
		h.logger.WarnContext(ctx, "update alert failed", "user_id", principal.UserID, "alert_id", alertID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, alertToDTO(ctx, item))
}

func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteAlert")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	alertID := strings.TrimSpace(r.PathValue("alertID"))
	if err := h.alertService.Delete(ctx, alertID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete alert failed", "user_id", principal.UserID, "alert_id", alertID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}
