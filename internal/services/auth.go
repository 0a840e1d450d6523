package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

// AuthService verifies bearer tokens issued by the account service. Login and
// signup live elsewhere; this process only needs the user id.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueToken(userID uuid.UUID, ttl time.Duration) (string, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

type authService struct {
	log    *logger.Logger
	secret []byte
	issuer string
}

func NewAuthService(log *logger.Logger, secret, issuer string) (AuthService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("missing env var JWT_SECRET_KEY")
	}
	return &authService{
		log:    log.With("service", "AuthService"),
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

func (as *authService) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    as.issuer,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.secret)
}

// SetContextFromToken attaches the token's user to the request data already
// in ctx, creating it when absent.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if as.issuer != "" {
		opts = append(opts, jwt.WithIssuer(as.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(*jwt.Token) (any, error) {
		return as.secret, nil
	}, opts...)
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}

	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		rd = &ctxutil.RequestData{}
		ctx = ctxutil.WithRequestData(ctx, rd)
	}
	rd.UserID = userID
	rd.TokenID = claims.ID
	return ctx, nil
}
