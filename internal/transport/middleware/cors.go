package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/heartmarshall/myenglish-backend/internal/config"
)

// CORS returns middleware that handles Cross-Origin Resource Sharing,
// built on go-chi/cors rather than a hand-rolled header writer.
func CORS(cfg config.CORSConfig) Middleware {
	handler := cors.Handler(cors.Options{
		AllowedOrigins:   splitAndTrim(cfg.AllowedOrigins),
		AllowedMethods:   splitAndTrim(cfg.AllowedMethods),
		AllowedHeaders:   splitAndTrim(cfg.AllowedHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return func(next http.Handler) http.Handler {
		return handler(next)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
