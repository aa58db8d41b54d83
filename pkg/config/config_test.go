package config

import (
	"os"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Test Server defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 1000 {
		t.Errorf("Expected max connections 1000, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("Expected request timeout 30s, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.EnableTLS {
		t.Error("Expected TLS disabled by default")
	}

	// Test Vamana defaults
	if cfg.Vamana.Alpha != 1.2 {
		t.Errorf("Expected Alpha=1.2, got %v", cfg.Vamana.Alpha)
	}
	if cfg.Vamana.R != 32 {
		t.Errorf("Expected R=32, got %d", cfg.Vamana.R)
	}
	if cfg.Vamana.RSmall != 16 {
		t.Errorf("Expected RSmall=16, got %d", cfg.Vamana.RSmall)
	}
	if cfg.Vamana.L != 150 {
		t.Errorf("Expected L=150, got %d", cfg.Vamana.L)
	}
	if cfg.Vamana.Tau != 20 {
		t.Errorf("Expected Tau=20, got %d", cfg.Vamana.Tau)
	}
	if cfg.Vamana.Dimensions != 100 {
		t.Errorf("Expected Dimensions=100, got %d", cfg.Vamana.Dimensions)
	}

	// Test Search defaults
	if cfg.Search.DefaultK != 10 {
		t.Errorf("Expected DefaultK=10, got %d", cfg.Search.DefaultK)
	}
	if cfg.Search.DefaultL != 150 {
		t.Errorf("Expected DefaultL=150, got %d", cfg.Search.DefaultL)
	}

	// Test Index defaults
	if cfg.Index.DataDir != "./data" {
		t.Errorf("Expected data dir ./data, got %s", cfg.Index.DataDir)
	}
	if cfg.Index.GroundtruthHasHeader {
		t.Error("Expected groundtruth header disabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	envVars := []string{
		"VAMANA_HOST", "VAMANA_PORT", "VAMANA_MAX_CONNECTIONS",
		"VAMANA_REQUEST_TIMEOUT", "VAMANA_ENABLE_TLS",
		"VAMANA_ALPHA", "VAMANA_R", "VAMANA_R_SMALL", "VAMANA_R_STITCHED",
		"VAMANA_L", "VAMANA_TAU", "VAMANA_DIMENSIONS",
		"VAMANA_SEARCH_K", "VAMANA_SEARCH_L",
		"VAMANA_DATA_DIR", "VAMANA_GROUNDTRUTH_HAS_HEADER",
	}

	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	os.Setenv("VAMANA_HOST", "127.0.0.1")
	os.Setenv("VAMANA_PORT", "9090")
	os.Setenv("VAMANA_MAX_CONNECTIONS", "5000")
	os.Setenv("VAMANA_REQUEST_TIMEOUT", "60s")
	os.Setenv("VAMANA_ENABLE_TLS", "true")

	os.Setenv("VAMANA_ALPHA", "1.5")
	os.Setenv("VAMANA_R", "24")
	os.Setenv("VAMANA_R_SMALL", "12")
	os.Setenv("VAMANA_R_STITCHED", "40")
	os.Setenv("VAMANA_L", "200")
	os.Setenv("VAMANA_TAU", "50")
	os.Setenv("VAMANA_DIMENSIONS", "128")

	os.Setenv("VAMANA_SEARCH_K", "20")
	os.Setenv("VAMANA_SEARCH_L", "300")

	os.Setenv("VAMANA_DATA_DIR", "/var/lib/vamana")
	os.Setenv("VAMANA_GROUNDTRUTH_HAS_HEADER", "true")

	cfg := LoadFromEnv()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 5000 {
		t.Errorf("Expected max connections 5000, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.RequestTimeout != 60*time.Second {
		t.Errorf("Expected request timeout 60s, got %v", cfg.Server.RequestTimeout)
	}
	if !cfg.Server.EnableTLS {
		t.Error("Expected TLS enabled")
	}

	if cfg.Vamana.Alpha != 1.5 {
		t.Errorf("Expected Alpha=1.5, got %v", cfg.Vamana.Alpha)
	}
	if cfg.Vamana.R != 24 {
		t.Errorf("Expected R=24, got %d", cfg.Vamana.R)
	}
	if cfg.Vamana.RSmall != 12 {
		t.Errorf("Expected RSmall=12, got %d", cfg.Vamana.RSmall)
	}
	if cfg.Vamana.RStitched != 40 {
		t.Errorf("Expected RStitched=40, got %d", cfg.Vamana.RStitched)
	}
	if cfg.Vamana.L != 200 {
		t.Errorf("Expected L=200, got %d", cfg.Vamana.L)
	}
	if cfg.Vamana.Tau != 50 {
		t.Errorf("Expected Tau=50, got %d", cfg.Vamana.Tau)
	}
	if cfg.Vamana.Dimensions != 128 {
		t.Errorf("Expected Dimensions=128, got %d", cfg.Vamana.Dimensions)
	}

	if cfg.Search.DefaultK != 20 {
		t.Errorf("Expected DefaultK=20, got %d", cfg.Search.DefaultK)
	}
	if cfg.Search.DefaultL != 300 {
		t.Errorf("Expected DefaultL=300, got %d", cfg.Search.DefaultL)
	}

	if cfg.Index.DataDir != "/var/lib/vamana" {
		t.Errorf("Expected data dir /var/lib/vamana, got %s", cfg.Index.DataDir)
	}
	if !cfg.Index.GroundtruthHasHeader {
		t.Error("Expected groundtruth header enabled")
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	originalPort := os.Getenv("VAMANA_PORT")
	defer func() {
		if originalPort == "" {
			os.Unsetenv("VAMANA_PORT")
		} else {
			os.Setenv("VAMANA_PORT", originalPort)
		}
	}()

	os.Setenv("VAMANA_PORT", "invalid")
	cfg := LoadFromEnv()

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080 for invalid value, got %d", cfg.Server.Port)
	}
}

func TestLoadFromEnv_DefaultsWhenNotSet(t *testing.T) {
	envVars := []string{
		"VAMANA_HOST", "VAMANA_PORT", "VAMANA_ALPHA", "VAMANA_R",
		"VAMANA_DATA_DIR", "VAMANA_GROUNDTRUTH_HAS_HEADER",
	}

	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	}()

	cfg := LoadFromEnv()
	defaults := Default()

	if cfg.Server.Host != defaults.Server.Host {
		t.Errorf("Expected default host, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != defaults.Server.Port {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Vamana.R != defaults.Vamana.R {
		t.Errorf("Expected default R, got %d", cfg.Vamana.R)
	}
	if cfg.Index.DataDir != defaults.Index.DataDir {
		t.Errorf("Expected default data dir, got %s", cfg.Index.DataDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "Valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "Invalid port (too low)",
			config: &Config{
				Server: ServerConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "Invalid port (too high)",
			config: &Config{
				Server: ServerConfig{Port: 70000},
			},
			wantErr: true,
		},
		{
			name: "Invalid alpha",
			config: &Config{
				Server: ServerConfig{Port: 8080, MaxConnections: 1},
				Vamana: VamanaConfig{Alpha: 0.5, R: 32, RSmall: 16, RStitched: 32, L: 150, Tau: 20, Dimensions: 100},
				Search: SearchConfig{DefaultK: 10, DefaultL: 150},
				Index:  IndexConfig{DataDir: "./data"},
			},
			wantErr: true,
		},
		{
			name: "Invalid dimensions",
			config: &Config{
				Server: ServerConfig{Port: 8080, MaxConnections: 1},
				Vamana: VamanaConfig{Alpha: 1.2, R: 32, RSmall: 16, RStitched: 32, L: 150, Tau: 20, Dimensions: 0},
				Search: SearchConfig{DefaultK: 10, DefaultL: 150},
				Index:  IndexConfig{DataDir: "./data"},
			},
			wantErr: true,
		},
		{
			name: "L smaller than K",
			config: &Config{
				Server: ServerConfig{Port: 8080, MaxConnections: 1},
				Vamana: VamanaConfig{Alpha: 1.2, R: 32, RSmall: 16, RStitched: 32, L: 150, Tau: 20, Dimensions: 100},
				Search: SearchConfig{DefaultK: 50, DefaultL: 10},
				Index:  IndexConfig{DataDir: "./data"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{
		Host: "localhost",
		Port: 8080,
	}

	addr := cfg.Address()
	expected := "localhost:8080"

	if addr != expected {
		t.Errorf("Expected address %s, got %s", expected, addr)
	}

	defaultCfg := Default()
	addr = defaultCfg.Server.Address()
	expected = "0.0.0.0:8080"

	if addr != expected {
		t.Errorf("Expected default address %s, got %s", expected, addr)
	}
}
