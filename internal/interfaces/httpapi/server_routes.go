package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerScreenerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/screener/query", handler.QueryScreener)
	mux.HandleFunc("GET /v1/screener/filter-options", handler.ListFilterOptions)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/history", handler.GetPlayerHistory)
}

func registerSyncRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/sync", handler.RunSync)
	mux.HandleFunc("POST /v1/sync/jobs", handler.CreateSyncJob)
	mux.HandleFunc("GET /v1/sync/jobs/{jobID}", handler.GetSyncJob)
}
