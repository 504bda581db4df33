package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/acewatch/acewatch/internal/usecase"
)

type evaluateAlertsResultDTO struct {
	Fired          int    `json:"fired"`
	EvaluatedAtUTC string `json:"evaluatedAtUtc"`
}

func (h *Handler) RunEvaluateAlertsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunEvaluateAlertsJob")
	defer span.End()

	if h.alertService == nil {
		writeError(ctx, w, fmt.Errorf("%w: alert service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	fired, err := h.alertService.EvaluateLive(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate alerts job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, evaluateAlertsResultDTO{
		Fired:          fired,
		EvaluatedAtUTC: time.Now().UTC().Format(time.RFC3339),
	})
}
