package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

func TestAuthRoundTrip(t *testing.T) {
	as, err := NewAuthService(logger.Nop(), "s3cret", "memequiz")
	require.NoError(t, err)
	userID := uuid.New()

	tok, err := as.IssueToken(userID, time.Hour)
	require.NoError(t, err)

	base := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{ClientIP: "10.1.1.1"})
	ctx, err := as.SetContextFromToken(base, tok)
	require.NoError(t, err)
	assert.Equal(t, &userID, ctxutil.UserID(ctx))
	ip, _ := ctxutil.Client(ctx)
	assert.Equal(t, "10.1.1.1", ip)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	as, err := NewAuthService(logger.Nop(), "s3cret", "memequiz")
	require.NoError(t, err)
	other, err := NewAuthService(logger.Nop(), "different", "memequiz")
	require.NoError(t, err)

	expired, err := as.IssueToken(uuid.New(), -time.Minute)
	require.NoError(t, err)
	_, err = as.SetContextFromToken(context.Background(), expired)
	assert.Error(t, err)

	forged, err := other.IssueToken(uuid.New(), time.Hour)
	require.NoError(t, err)
	_, err = as.SetContextFromToken(context.Background(), forged)
	assert.Error(t, err)

	noneAlg := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: uuid.NewString()})
	unsigned, err := noneAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = as.SetContextFromToken(context.Background(), unsigned)
	assert.Error(t, err)

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		Issuer:    "memequiz",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	s, err := bad.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = as.SetContextFromToken(context.Background(), s)
	assert.Error(t, err)

	_, err = NewAuthService(logger.Nop(), " ", "")
	assert.Error(t, err)
}
