package config

import (
	"os"
	"time"
)

// parseEnv overlays values from the environment. SECRET_KEY is the one
// variable deployments are required to set.
//
// Recognized variables:
//
//	ADDRESS            HTTP bind address
//	DATABASE_DSN       PostgreSQL DSN
//	SECRET_KEY         JWT signing secret
//	ACCESS_TOKEN_TTL   duration, e.g. "30m"
//	REFRESH_TOKEN_TTL  duration, e.g. "720h"
//	TOTP_ISSUER        issuer label for authenticator apps
func parseEnv(config *Config) {
	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
	if v := os.Getenv("TOTP_ISSUER"); v != "" {
		config.TOTPIssuer = v
	}
}
