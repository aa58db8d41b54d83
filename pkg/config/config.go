package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration
type Config struct {
	Server ServerConfig
	Vamana VamanaConfig
	Search SearchConfig
	Index  IndexConfig
}

// ServerConfig holds REST server configuration
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 8080)
	MaxConnections  int           // Max concurrent connections
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// VamanaConfig holds Filtered/Stitched-Vamana build parameters
type VamanaConfig struct {
	Alpha     float64 // diversification factor (default: 1.2)
	R         int      // out-degree cap for Filtered-Vamana (default: 32)
	RSmall    int      // per-filter subgraph out-degree cap for Stitched-Vamana (default: 16)
	RStitched int      // post-stitch out-degree cap (default: 32)
	L         int      // build-time search list size (default: 150)
	Tau       int      // medoid sample size (default: 20)
	Dimensions int     // vector dimensions (default: 100)
}

// SearchConfig holds query-time search defaults
type SearchConfig struct {
	DefaultK         int // default top-K (default: 10)
	DefaultL         int // default search list size (default: 150)
	DefaultStepLimit int // 0 means unbounded
}

// IndexConfig holds on-disk dataset and graph file locations
type IndexConfig struct {
	DataDir       string // Data directory path
	BaseFile      string // base vector file name
	QueryFile     string // query vector file name
	GraphFile     string // serialized graph file name
	GroundtruthFile string // groundtruth file name
	GroundtruthHasHeader bool // whether the groundtruth file carries a leading K header
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		Vamana: VamanaConfig{
			Alpha:      1.2,
			R:          32,
			RSmall:     16,
			RStitched:  32,
			L:          150,
			Tau:        20,
			Dimensions: 100,
		},
		Search: SearchConfig{
			DefaultK:         10,
			DefaultL:         150,
			DefaultStepLimit: 0,
		},
		Index: IndexConfig{
			DataDir:              "./data",
			BaseFile:             "base.bin",
			QueryFile:            "query.bin",
			GraphFile:            "graph.bin",
			GroundtruthFile:      "groundtruth.bin",
			GroundtruthHasHeader: false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := Default()

	// Server configuration
	if host := os.Getenv("VAMANA_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("VAMANA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("VAMANA_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("VAMANA_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("VAMANA_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("VAMANA_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("VAMANA_TLS_KEY")
	}

	// Vamana build configuration
	if alpha := os.Getenv("VAMANA_ALPHA"); alpha != "" {
		if a, err := strconv.ParseFloat(alpha, 64); err == nil {
			cfg.Vamana.Alpha = a
		}
	}
	if r := os.Getenv("VAMANA_R"); r != "" {
		if rVal, err := strconv.Atoi(r); err == nil {
			cfg.Vamana.R = rVal
		}
	}
	if rSmall := os.Getenv("VAMANA_R_SMALL"); rSmall != "" {
		if rVal, err := strconv.Atoi(rSmall); err == nil {
			cfg.Vamana.RSmall = rVal
		}
	}
	if rStitched := os.Getenv("VAMANA_R_STITCHED"); rStitched != "" {
		if rVal, err := strconv.Atoi(rStitched); err == nil {
			cfg.Vamana.RStitched = rVal
		}
	}
	if l := os.Getenv("VAMANA_L"); l != "" {
		if lVal, err := strconv.Atoi(l); err == nil {
			cfg.Vamana.L = lVal
		}
	}
	if tau := os.Getenv("VAMANA_TAU"); tau != "" {
		if tVal, err := strconv.Atoi(tau); err == nil {
			cfg.Vamana.Tau = tVal
		}
	}
	if dims := os.Getenv("VAMANA_DIMENSIONS"); dims != "" {
		if d, err := strconv.Atoi(dims); err == nil {
			cfg.Vamana.Dimensions = d
		}
	}

	// Search configuration
	if k := os.Getenv("VAMANA_SEARCH_K"); k != "" {
		if kVal, err := strconv.Atoi(k); err == nil {
			cfg.Search.DefaultK = kVal
		}
	}
	if l := os.Getenv("VAMANA_SEARCH_L"); l != "" {
		if lVal, err := strconv.Atoi(l); err == nil {
			cfg.Search.DefaultL = lVal
		}
	}

	// Index/data configuration
	if dataDir := os.Getenv("VAMANA_DATA_DIR"); dataDir != "" {
		cfg.Index.DataDir = dataDir
	}
	if gtHeader := os.Getenv("VAMANA_GROUNDTRUTH_HAS_HEADER"); gtHeader == "true" {
		cfg.Index.GroundtruthHasHeader = true
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}

	// Vamana validation
	if c.Vamana.Alpha < 1 {
		return fmt.Errorf("invalid alpha: %v (must be >= 1)", c.Vamana.Alpha)
	}
	if c.Vamana.R < 1 {
		return fmt.Errorf("invalid R: %d (must be > 0)", c.Vamana.R)
	}
	if c.Vamana.RSmall < 1 || c.Vamana.RStitched < 1 {
		return fmt.Errorf("invalid Stitched-Vamana degree caps: RSmall=%d RStitched=%d (must be > 0)", c.Vamana.RSmall, c.Vamana.RStitched)
	}
	if c.Vamana.L < 1 {
		return fmt.Errorf("invalid L: %d (must be > 0)", c.Vamana.L)
	}
	if c.Vamana.Tau < 1 {
		return fmt.Errorf("invalid tau: %d (must be >= 1)", c.Vamana.Tau)
	}
	if c.Vamana.Dimensions < 1 {
		return fmt.Errorf("invalid dimensions: %d (must be > 0)", c.Vamana.Dimensions)
	}

	// Search validation
	if c.Search.DefaultK < 1 {
		return fmt.Errorf("invalid default K: %d (must be > 0)", c.Search.DefaultK)
	}
	if c.Search.DefaultL < c.Search.DefaultK {
		return fmt.Errorf("invalid default L: %d (must be >= K=%d)", c.Search.DefaultL, c.Search.DefaultK)
	}

	// Index validation
	if c.Index.DataDir == "" {
		return fmt.Errorf("data directory not specified")
	}

	return nil
}

// Address returns the server address (host:port)
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
