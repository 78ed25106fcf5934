package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/nhc-it/assetlend-backend/pkg/auth"
	"github.com/nhc-it/assetlend-backend/pkg/config"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

// devtoken mints a bearer token for local testing against the api.
func main() {
	_ = godotenv.Load()

	userFlag := flag.String("user", "", "user id (uuid); a random one is generated when empty")
	roleFlag := flag.String("role", string(enums.UserRoleNormal), "admin|staff|normal")
	flag.Parse()

	// only the JWT section is needed, so the rest of the config may be absent
	var jwtCfg config.JWTConfig
	if err := envconfig.Process(config.EnvPrefix, &jwtCfg); err != nil {
		fail("parsing jwt config: %v", err)
	}

	role, err := enums.ParseUserRole(*roleFlag)
	if err != nil {
		fail("%v", err)
	}

	userID := uuid.New()
	if *userFlag != "" {
		if userID, err = uuid.Parse(*userFlag); err != nil {
			fail("invalid -user: %v", err)
		}
	}

	token, err := auth.MintAccessToken(jwtCfg, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		fail("minting token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "user_id=%s role=%s\n", userID, role)
	fmt.Println(token)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
