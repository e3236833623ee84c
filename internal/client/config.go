package client

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ClientConfig represents the complete client configuration
type ClientConfig struct {
	Server   ServerConnection
	Protocol ProtocolSettings
	UI       UISettings
}

// ServerConnection contains server connection settings
type ServerConnection struct {
	Host         string
	Secure       bool
	DialTimeout  int // seconds
	PingInterval int // seconds
}

// ProtocolSettings tunes the wire encoding for older servers
type ProtocolSettings struct {
	IndexAsString bool
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel string
	LogFile  string
	Color    bool
	Mouse    bool
}

// The file form uses pointers so that omitted blocks and attributes keep
// their defaults, including bools that default to true.
type fileConfig struct {
	Server   *fileServer   `hcl:"server,block"`
	Protocol *fileProtocol `hcl:"protocol,block"`
	UI       *fileUI       `hcl:"ui,block"`
}

type fileServer struct {
	Host         *string `hcl:"host,optional"`
	Secure       *bool   `hcl:"secure,optional"`
	DialTimeout  *int    `hcl:"dial_timeout,optional"`
	PingInterval *int    `hcl:"ping_interval,optional"`
}

type fileProtocol struct {
	IndexAsString *bool `hcl:"index_as_string,optional"`
}

type fileUI struct {
	LogLevel *string `hcl:"log_level,optional"`
	LogFile  *string `hcl:"log_file,optional"`
	Color    *bool   `hcl:"color,optional"`
	Mouse    *bool   `hcl:"mouse,optional"`
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Server: ServerConnection{
			Host:         "localhost:8080",
			Secure:       false,
			DialTimeout:  10,
			PingInterval: 54,
		},
		Protocol: ProtocolSettings{
			IndexAsString: false,
		},
		UI: UISettings{
			LogLevel: "warn",
			LogFile:  "tictactoe-client.log",
			Color:    true,
			Mouse:    true,
		},
	}
}

// LoadClientConfig loads client configuration from HCL file. A missing file
// yields the defaults.
func LoadClientConfig(filename string) (*ClientConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultClientConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := DefaultClientConfig()

	if s := raw.Server; s != nil {
		setString(&config.Server.Host, s.Host)
		setBool(&config.Server.Secure, s.Secure)
		setInt(&config.Server.DialTimeout, s.DialTimeout)
		setInt(&config.Server.PingInterval, s.PingInterval)
	}
	if p := raw.Protocol; p != nil {
		setBool(&config.Protocol.IndexAsString, p.IndexAsString)
	}
	if u := raw.UI; u != nil {
		setString(&config.UI.LogLevel, u.LogLevel)
		setString(&config.UI.LogFile, u.LogFile)
		setBool(&config.UI.Color, u.Color)
		setBool(&config.UI.Mouse, u.Mouse)
	}

	return config, nil
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	if _, err := Endpoint(c.Server.Host, c.Server.Secure); err != nil {
		return fmt.Errorf("server host: %w", err)
	}

	if c.Server.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive")
	}

	if c.Server.PingInterval <= 0 {
		return fmt.Errorf("ping interval must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	if c.UI.LogFile == "" {
		return fmt.Errorf("log file is required")
	}

	return nil
}

// Options converts the configuration into client options
func (c *ClientConfig) Options() Options {
	return Options{
		Host:          c.Server.Host,
		Secure:        c.Server.Secure,
		DialTimeout:   time.Duration(c.Server.DialTimeout) * time.Second,
		PingInterval:  time.Duration(c.Server.PingInterval) * time.Second,
		IndexAsString: c.Protocol.IndexAsString,
	}
}
