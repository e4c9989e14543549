/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"tls cert alone", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"port too high", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"unknown storage", func(c *Config) { c.storage = "mongo" }, "invalid storage backend"},
		{"no password", func(c *Config) { c.adminPassword = "" }, "--admin-password"},
		{"document path", func(c *Config) { c.stateFile = "../state.json" }, "invalid document name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfigOrigins(t *testing.T) {
	cfg := &Config{allowedOrigins: []string{
		"https://lucasveiga02.github.io/killergame-frontend/",
		"http://localhost:5173",
		" ",
	}}

	assert.Equal(t, map[string]bool{
		"https://lucasveiga02.github.io": true,
		"http://localhost:5173":          true,
	}, cfg.origins())
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("KILLERGAME_PORT", "9090")
	t.Setenv("KILLERGAME_ADMIN_PASSWORD", "s3cret")
	t.Setenv("KILLERGAME_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, "s3cret", cfg.adminPassword)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.allowedOrigins)
	assert.Equal(t, "state.json", cfg.stateFile)
	assert.Equal(t, storageFile, cfg.storage)
}

func TestConfigFlagNormalization(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags([]string{"--admin_password=letmein", "--data-dir", "/srv/killer"}))

	assert.Equal(t, "letmein", cfg.adminPassword)
	assert.Equal(t, "/srv/killer", cfg.dataDir)
}
