package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData carries caller identity for the lifetime of one request.
// UserID is uuid.Nil for anonymous callers.
type RequestData struct {
	UserID    uuid.UUID
	TokenID   string
	ClientIP  string
	UserAgent string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the authenticated user, or nil when the caller is anonymous.
func UserID(ctx context.Context) *uuid.UUID {
	rd := GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil
	}
	id := rd.UserID
	return &id
}

// Client returns the caller's IP and user agent, empty when unknown.
func Client(ctx context.Context) (ip, userAgent string) {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.ClientIP, rd.UserAgent
	}
	return "", ""
}
