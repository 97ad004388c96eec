// Command token mints an access token for local development.
//
// Usage:
//
//	token --sub=user-1 --role=editor
//
// Requires AUTH_JWT_SECRET; AUTH_JWT_ISSUER and AUTH_ACCESS_TOKEN_TTL are
// honored as in the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/heartmarshall/featureflags-backend/internal/auth"
	"github.com/heartmarshall/featureflags-backend/internal/config"
	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

func main() {
	sub := flag.String("sub", "", "actor id placed in the token subject")
	role := flag.String("role", "viewer", "actor role")
	flag.Parse()

	if *sub == "" {
		fmt.Fprintln(os.Stderr, "Usage: token --sub=user-1 [--role=editor]")
		os.Exit(1)
	}

	var cfg config.AuthConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("read auth config: %v", err)
	}

	jwt := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)

	token, err := jwt.GenerateAccessToken(domain.NewPerson(*sub, *role))
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	fmt.Println(token)
}
