package config

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Addr string `json:"addr"`
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8001"
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = 5
	}
}
