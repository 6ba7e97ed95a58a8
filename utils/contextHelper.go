package utils

import (
	"context"
)

type contextKey string

const (
	contextKeyUserId        contextKey = "user_id"
	contextKeyCorrelationId contextKey = "correlation_id"
)

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(contextKeyUserId).(int)
	return v, ok
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return context.WithValue(ctx, contextKeyUserId, userId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(contextKeyCorrelationId).(string)
	return v, ok
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, contextKeyCorrelationId, correlationId)
}
