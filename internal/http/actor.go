package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akaza138/sktexcot-accounting-test/internal/audit"
	"github.com/akaza138/sktexcot-accounting-test/internal/http/respond"
)

// Actor attaches the caller's user id from an HS256 bearer token to the
// request context so audit events can name who made a change. Requests
// without a token pass through anonymously; a token that fails to verify
// is rejected.
func Actor(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if secret == "" || header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				respond.WriteProblem(w, r, http.StatusUnauthorized, "authorization must be a bearer token")
				return
			}

			actorID, err := parseActor(raw, secret)
			if err != nil {
				respond.WriteProblem(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(audit.WithActor(r.Context(), actorID)))
		})
	}
}

func parseActor(raw, secret string) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("subject %q is not a user id", claims.Subject)
	}

	return id, nil
}
