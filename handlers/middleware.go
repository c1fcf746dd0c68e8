package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/satheeshds/schemes/db"
	"github.com/satheeshds/schemes/ingest"
	"github.com/satheeshds/schemes/reference"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// DB is the shared database connection used by all handlers.
var DB *sql.DB

// Reference holds the zones, states and distributor types used to validate input.
var Reference = reference.Default()

// Upload limits, overridden from configuration at startup.
var (
	MaxUploadBytes  int64 = 20 << 20
	MaxSalesRecords       = ingest.MaxSalesRecords
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg})
}

func query(q string, args ...any) (*sql.Rows, error) { return DB.Query(db.Rebind(q), args...) }

func queryRow(q string, args ...any) *sql.Row { return DB.QueryRow(db.Rebind(q), args...) }

func exec(q string, args ...any) (sql.Result, error) { return DB.Exec(db.Rebind(q), args...) }

func txExec(tx *sql.Tx, q string, args ...any) (sql.Result, error) {
	return tx.Exec(db.Rebind(q), args...)
}

// BasicAuth returns middleware that enforces HTTP Basic Authentication.
func BasicAuth(user, pass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// If no credentials are configured, skip auth
		if user == "" && pass == "" {
			slog.Warn("AUTH_USER and AUTH_PASS not set, API is unauthenticated")
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != pass {
				w.Header().Set("WWW-Authenticate", `Basic realm="schemes"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
