package octavia_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/octavia-db/octavia-go/errors"
	"github.com/octavia-db/octavia-go/octavia"
)

func TestNewConfig_Endpoint(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		path string
		want string
	}{
		{"default path", "https://db.example.com", "", "https://db.example.com/octavia-db"},
		{"trailing slash stripped", "https://db.example.com/", "", "https://db.example.com/octavia-db"},
		{"several trailing slashes", "https://db.example.com///", "/api", "https://db.example.com/api"},
		{"leading slash added", "http://localhost:8080", "db", "http://localhost:8080/db"},
		{"path kept", "http://localhost:8080", "/v1/db", "http://localhost:8080/v1/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := octavia.NewConfig(octavia.Options{URI: tt.uri, Path: tt.path})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Endpoint())
		})
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	_, err := octavia.NewConfig(octavia.Options{})
	require.Error(t, err)
	assert.True(t, domainerrors.IsValidationError(err))

	_, err = octavia.NewConfig(octavia.Options{URI: "/"})
	require.Error(t, err)

	_, err = octavia.NewConfig(octavia.Options{URI: "db.example.com"})
	require.Error(t, err)
	assert.True(t, domainerrors.IsValidationError(err))
}

func TestNewConfig_Headers(t *testing.T) {
	cfg, err := octavia.NewConfig(octavia.Options{
		URI:   "https://db.example.com",
		Token: "tk",
	})
	require.NoError(t, err)
	assert.Equal(t, "tk", cfg.Token())
	assert.Equal(t, map[string]string{
		"Content-Type": "application/json",
		"token":        "tk",
	}, cfg.Headers())

	cfg, err = octavia.NewConfig(octavia.Options{
		URI:     "https://db.example.com",
		Token:   "tk",
		Headers: map[string]string{"token": "override", "X-Tenant": "acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Content-Type": "application/json",
		"token":        "override",
		"X-Tenant":     "acme",
	}, cfg.Headers())
}

func TestNewConfig_CopiesInput(t *testing.T) {
	headers := map[string]string{"X-Tenant": "acme"}
	cfg, err := octavia.NewConfig(octavia.Options{
		URI:      "https://db.example.com",
		Database: "ssd",
		Headers:  headers,
	})
	require.NoError(t, err)

	headers["X-Tenant"] = "changed"
	assert.Equal(t, "acme", cfg.Headers()["X-Tenant"])

	returned := cfg.Headers()
	returned["X-Tenant"] = "mutated"
	assert.Equal(t, "acme", cfg.Headers()["X-Tenant"])

	clone := cfg.Clone()
	assert.Equal(t, cfg.Endpoint(), clone.Endpoint())
	assert.Equal(t, "ssd", clone.Database())
}
