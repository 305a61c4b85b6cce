// Command token mints a bearer token for scripts and local development.
// Sign-in lives outside this service; the API only verifies tokens signed
// with JWT_SECRET.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"pangan/internal/auth"
	"pangan/internal/config"
)

func main() {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	userID := fs.String("user", "", "user id (default: random uuid)")
	email := fs.String("email", "", "email claim")
	role := fs.String("role", auth.RoleContributor, "guest, contributor or admin")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	fs.Parse(os.Args[1:])

	token, err := mint(*userID, *email, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func mint(userID, email, role string, ttl time.Duration) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		return "", err
	}
	return issue(cfg.JWTSecret, userID, email, role, ttl)
}

func issue(secret, userID, email, role string, ttl time.Duration) (string, error) {
	switch role {
	case auth.RoleGuest, auth.RoleContributor, auth.RoleAdmin:
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	if userID == "" {
		userID = uuid.NewString()
	}
	return auth.GenerateToken(secret, userID, email, role, ttl)
}
