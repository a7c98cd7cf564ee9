package metadata

import (
	"fmt"
	"time"
)

const (
	DefaultCatalogPort    = 443
	DefaultCatalogTimeout = 5 * time.Minute
	DefaultCatalogName    = "hive_metastore"
)

// Config holds the Spark SQL endpoint configuration used to reach the metastore.
type Config struct {
	Host     string
	Port     int
	HTTPPath string
	Token    string
	Catalog  string
	Timeout  time.Duration
}

func NewConfig(host string, port int, httpPath string, token string) *Config {
	return &Config{
		Host:     host,
		Port:     port,
		HTTPPath: httpPath,
		Token:    token,
		Catalog:  DefaultCatalogName,
		Timeout:  DefaultCatalogTimeout,
	}
}

// Address returns host:port for logging; it never includes the token.
func (config *Config) Address() string {
	return fmt.Sprintf("%s:%d%s", config.Host, config.Port, config.HTTPPath)
}

// Validate reports the first missing mandatory setting.
func (config *Config) Validate() error {
	switch {
	case config.Host == "":
		return fmt.Errorf("catalog host is required")
	case config.Port <= 0:
		return fmt.Errorf("catalog port must be positive, got %d", config.Port)
	case config.Token == "":
		return fmt.Errorf("catalog access token is required")
	}
	return nil
}
