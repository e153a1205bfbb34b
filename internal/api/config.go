package api

// Config holds server configuration.
type Config struct {
	Port           int
	IndexPath      string    // catalog database path ("" disables /search)
	AllowedOrigins []string  // CORS allowed origins (empty = allow all)
	TLS            TLSConfig // TLS configuration
}

// TLSConfig holds TLS/HTTPS configuration.
type TLSConfig struct {
	Enabled  bool   // Enable HTTPS
	CertFile string // Path to TLS certificate file
	KeyFile  string // Path to TLS private key file
}

// ServerConfig is the active server configuration.
var ServerConfig Config
