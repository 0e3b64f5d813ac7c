// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used within the game handler.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Seat token was missing, invalid or expired.
	NotSeatedError        = 3002 // Token names a player who has no seat at this table.
)
