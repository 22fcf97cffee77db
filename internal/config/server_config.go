package config

// ServerConfig defines the HTTP listener
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty" validate:"min=1,max=65535"`
}

// NewDefaultServerConfig creates default server configuration
func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host: DefaultServerHost,
		Port: DefaultServerPort,
	}
}
