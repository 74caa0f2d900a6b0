package config

import (
	"encoding/json"
	"os"

	"github.com/lostgates/identity/internal/flagx"
	"github.com/lostgates/identity/internal/timex"
)

// JsonConfig is the DTO for JSON config files. Duration fields accept both
// "30m" strings and integer nanoseconds; values are copied into the
// runtime Config after unmarshalling.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	SetupTokenValidityDuration   timex.Duration `json:"setup_token_validity_duration"`
	PendingTokenValidityDuration timex.Duration `json:"pending_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	TOTPIssuer                   string         `json:"totp_issuer"`
}

// parseJson loads values from the JSON file given via -c/-config. When no
// file is specified nothing changes; an unreadable or invalid file panics,
// since starting with half-applied configuration is worse than not
// starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.SetupTokenValidityDuration.Duration != 0 {
		config.SetupTokenValidityDuration = c.SetupTokenValidityDuration.Duration
	}
	if c.PendingTokenValidityDuration.Duration != 0 {
		config.PendingTokenValidityDuration = c.PendingTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration != 0 {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.TOTPIssuer != "" {
		config.TOTPIssuer = c.TOTPIssuer
	}
}
