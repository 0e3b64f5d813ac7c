package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kutschfahrt/internal/auth"
	"github.com/jason-s-yu/kutschfahrt/internal/game"
)

// authCookieName is the cookie carrying a seat token for browser clients.
const authCookieName = "auth_token"

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// tokenFromRequest reads a bearer token, falling back to the auth cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return extractCookieToken(r.Header.Get("Cookie"), authCookieName)
}

// authenticateSeat returns the player a request speaks for at gameID.
func authenticateSeat(r *http.Request, gameID uuid.UUID) (string, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return "", fmt.Errorf("missing token")
	}
	claims, err := auth.AuthenticateJWT(token)
	if err != nil {
		return "", err
	}
	if claims.GameID != gameID {
		return "", fmt.Errorf("token is for another game")
	}
	return claims.Player, nil
}

// gameIDFromPath parses the UUID that follows prefix in the request path.
func gameIDFromPath(r *http.Request, prefix string) (uuid.UUID, error) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return uuid.Nil, fmt.Errorf("missing game_id in path")
	}
	return uuid.Parse(rest)
}

// statusForError maps a rejected move to an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrMalformedAction):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrWrongActor):
		return http.StatusForbidden
	case errors.Is(err, game.ErrGameOver):
		return http.StatusGone
	default:
		return http.StatusConflict
	}
}
