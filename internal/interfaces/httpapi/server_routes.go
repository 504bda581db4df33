package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/auth/register", handler.Register)
	mux.HandleFunc("POST /v1/auth/login", handler.Login)

	mux.HandleFunc("GET /v1/tennis/live", handler.ListLiveEvents)
	mux.HandleFunc("GET /v1/tennis/upcoming", handler.ListUpcomingEvents)
	mux.HandleFunc("GET /v1/tennis/recent", handler.ListRecentEvents)
	mux.HandleFunc("GET /v1/tennis/date/{date}", handler.ListEventsForDate)
	mux.HandleFunc("GET /v1/tennis/events/{eventID}", handler.GetEvent)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/auth/logout", RequireAuth(verifier, http.HandlerFunc(handler.Logout)))
	mux.Handle("GET /v1/auth/me", RequireAuth(verifier, http.HandlerFunc(handler.Me)))

	mux.Handle("GET /v1/favorites", RequireAuth(verifier, http.HandlerFunc(handler.ListFavorites)))
	mux.Handle("POST /v1/favorites", RequireAuth(verifier, http.HandlerFunc(handler.AddFavorite)))
	mux.Handle("DELETE /v1/favorites/{favoriteID}", RequireAuth(verifier, http.HandlerFunc(handler.RemoveFavorite)))

	mux.Handle("GET /v1/alerts", RequireAuth(verifier, http.HandlerFunc(handler.ListAlerts)))
	mux.Handle("POST /v1/alerts", RequireAuth(verifier, http.HandlerFunc(handler.CreateAlert)))
	mux.Handle("PATCH /v1/alerts/{alertID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateAlert)))
	mux.Handle("DELETE /v1/alerts/{alertID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteAlert)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/evaluate-alerts", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunEvaluateAlertsJob)))
}
