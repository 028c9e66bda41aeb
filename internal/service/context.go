package service

import "context"

type ctxKey int

const (
	playerIDKey ctxKey = iota
	sessionIDKey
)

// WithSession Положить в контекст игрока и сессию из access токена
func WithSession(ctx context.Context, playerID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, playerIDKey, playerID)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func PlayerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(playerIDKey).(string)
	return id
}

func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
