package health

import "time"

// Config настройки healthcheck сервера
type Config struct {
	ServiceName  string
	Version      string
	Port         string
	Timeout      time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Option настраивает конфигурацию сервера
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		ServiceName:  "book-search-service",
		Version:      "unknown",
		Port:         ":8091",
		Timeout:      5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
	}
}

func WithPort(port string) Option {
	return func(c *Config) {
		c.Port = port
	}
}

func WithCheckTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}
