package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListLiveEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveEvents")
	defer span.End()

	events, err := h.eventService.Live(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list live events failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventsToDTOs(ctx, events))
}

func (h *Handler) ListUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUpcomingEvents")
	defer span.End()

	leagueID := strings.TrimSpace(r.URL.Query().Get("league_id"))
	events, err := h.eventService.Upcoming(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list upcoming events failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventsToDTOs(ctx, events))
}

func (h *Handler) ListRecentEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRecentEvents")
	defer span.End()

	events, err := h.eventService.Recent(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list recent events failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventsToDTOs(ctx, events))
}

func (h *Handler) ListEventsForDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEventsForDate")
	defer span.End()

	date := strings.TrimSpace(r.PathValue("date"))
	events, err := h.eventService.EventsForDate(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "list events for date failed", "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventsToDTOs(ctx, events))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEvent")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	item, err := h.eventService.EventByID(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "get event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(ctx, item))
}
