package httpserver

import (
	"net/http"
	"sort"
	"strings"
)

// Routes groups handlers.
type Routes struct {
	OpenEntry      http.HandlerFunc
	ActiveEntries  http.HandlerFunc
	PreviewExit    http.HandlerFunc
	SettleExit     http.HandlerFunc
	GetRate        http.HandlerFunc
	SetRate        http.HandlerFunc
	DailySummary   http.HandlerFunc
	Updates        http.HandlerFunc
	Health         http.HandlerFunc
	AuthMiddleware func(http.Handler) http.Handler
}

// NewRouter registers endpoints. The health check and the update stream sit
// outside the auth middleware.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()

	api := http.NewServeMux()
	if routes.OpenEntry != nil {
		api.Handle("/entries", byMethod(map[string]http.HandlerFunc{
			http.MethodPost: routes.OpenEntry,
		}))
	}
	if routes.ActiveEntries != nil {
		api.Handle("/entries/active", byMethod(map[string]http.HandlerFunc{
			http.MethodGet: routes.ActiveEntries,
		}))
	}
	if routes.PreviewExit != nil {
		api.Handle("/exit/preview", byMethod(map[string]http.HandlerFunc{
			http.MethodPost: routes.PreviewExit,
		}))
	}
	if routes.SettleExit != nil {
		api.Handle("/exit", byMethod(map[string]http.HandlerFunc{
			http.MethodPost: routes.SettleExit,
		}))
	}
	if routes.GetRate != nil || routes.SetRate != nil {
		api.Handle("/rates/current", byMethod(map[string]http.HandlerFunc{
			http.MethodGet: routes.GetRate,
			http.MethodPut: routes.SetRate,
		}))
	}
	if routes.DailySummary != nil {
		api.Handle("/summary/daily", byMethod(map[string]http.HandlerFunc{
			http.MethodGet: routes.DailySummary,
		}))
	}

	var apiHandler http.Handler = api
	if routes.AuthMiddleware != nil {
		apiHandler = routes.AuthMiddleware(api)
	}
	mux.Handle("/", apiHandler)

	if routes.Updates != nil {
		mux.Handle("/ws/updates", byMethod(map[string]http.HandlerFunc{
			http.MethodGet: routes.Updates,
		}))
	}
	if routes.Health != nil {
		mux.Handle("/health", byMethod(map[string]http.HandlerFunc{
			http.MethodGet: routes.Health,
		}))
	}
	return mux
}

func byMethod(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	allowed := make([]string, 0, len(handlers))
	for method, handler := range handlers {
		if handler != nil {
			allowed = append(allowed, method)
		}
	}
	sort.Strings(allowed)
	return func(w http.ResponseWriter, r *http.Request) {
		if handler := handlers[r.Method]; handler != nil {
			handler(w, r)
			return
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
