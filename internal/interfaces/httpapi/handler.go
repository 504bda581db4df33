package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acewatch/acewatch/internal/domain/event"
	"github.com/acewatch/acewatch/internal/platform/logging"
	"github.com/acewatch/acewatch/internal/usecase"
)

type Handler struct {
	accountService  *usecase.AccountService
	eventService    *usecase.EventService
	favoriteService *usecase.FavoriteService
	alertService    *usecase.AlertService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	accountService *usecase.AccountService,
	eventService *usecase.EventService,
	favoriteService *usecase.FavoriteService,
	alertService *usecase.AlertService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		accountService:  accountService,
		eventService:    eventService,
		favoriteService: favoriteService,
		alertService:    alertService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type eventDTO struct {
	ID          string    `json:"id"`
	HomePlayer  string    `json:"homePlayer"`
	AwayPlayer  string    `json:"awayPlayer"`
	League      string    `json:"league"`
	Round       string    `json:"round"`
	StartTime   string    `json:"startTimeUtc"`
	Status      string    `json:"status"`
	Score       *scoreDTO `json:"score,omitempty"`
	Venue       string    `json:"venue,omitempty"`
	City        string    `json:"city,omitempty"`
	Description string    `json:"description,omitempty"`
}

type scoreDTO struct {
	HomeSets    *int     `json:"homeSets,omitempty"`
	AwaySets    *int     `json:"awaySets,omitempty"`
	SetScores   []string `json:"setScores,omitempty"`
	Raw         string   `json:"raw,omitempty"`
	MatchStatus string   `json:"matchStatus,omitempty"`
}

func eventToDTO(ctx context.Context, v event.Event) eventDTO {
	ctx, span := startSpan(ctx, "httpapi.eventToDTO")
	defer span.End()

	return eventDTO{
		ID:          v.ID,
		HomePlayer:  v.HomePlayer,
		AwayPlayer:  v.AwayPlayer,
		League:      v.League,
		Round:       v.Round,
		StartTime:   v.StartTime.UTC().Format(time.RFC3339),
		Status:      v.Status,
		Score:       scoreToDTO(ctx, v.Score),
		Venue:       v.Venue,
		City:        v.City,
		Description: v.Description,
	}
}

func scoreToDTO(ctx context.Context, v *event.Score) *scoreDTO {
	_, span := startSpan(ctx, "httpapi.scoreToDTO")
	defer span.End()

	if v == nil {
		return nil
	}

	return &scoreDTO{
		HomeSets:    v.HomeSets,
		AwaySets:    v.AwaySets,
		SetScores:   append([]string(nil), v.SetScores...),
		Raw:         v.Raw,
		MatchStatus: v.MatchStatus,
	}
}

func eventsToDTOs(ctx context.Context, events []event.Event) []eventDTO {
	items := make([]eventDTO, 0, len(events))
	for _, v := range events {
		items = append(items, eventToDTO(ctx, v))
	}
	return items
}
