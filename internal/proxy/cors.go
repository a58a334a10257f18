package proxy

import (
	"net/http"
	"strings"
)

const corsRejected = "Not allowed by CORS"

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.TrimSpace(origin), "/")
}

func originSet(origins []string) map[string]struct{} {
	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = normalizeOrigin(o); o != "" {
			set[o] = struct{}{}
		}
	}
	return set
}

// cors only lets browsers on allowed origins through. Requests without an
// Origin header come from non-browser clients and pass unchanged.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := s.allowed[normalizeOrigin(origin)]; !ok {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: corsRejected})
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
