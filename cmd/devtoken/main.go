// Command devtoken mints a bearer token for local testing of the
// authenticated endpoints.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/yungbote/memequiz-backend/internal/platform/envutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	var rawUser string
	var ttl time.Duration
	flag.StringVar(&rawUser, "user", "", "user id to embed (random when empty)")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	userID := uuid.New()
	if s := strings.TrimSpace(rawUser); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			fmt.Printf("invalid -user: %v\n", err)
			os.Exit(2)
		}
		userID = id
	}

	auth, err := services.NewAuthService(logger.Nop(), envutil.String("JWT_SECRET_KEY", ""), envutil.String("JWT_ISSUER", ""))
	if err != nil {
		fmt.Printf("init auth: %v\n", err)
		os.Exit(1)
	}
	token, err := auth.IssueToken(userID, ttl)
	if err != nil {
		fmt.Printf("issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("user_id=%s\n%s\n", userID, token)
}
