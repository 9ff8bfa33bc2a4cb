// Package setup creates the project configuration file from the embedded
// template. Running it twice is safe: an existing file is never touched.
package setup

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/liftoff-sh/liftoff/internal/log"
)

//go:embed liftoff.example.yaml
var configTemplate []byte

// ServiceConfig is the configuration for the setup service.
type ServiceConfig struct {
	// Path is where the configuration file lives.
	Path   string
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Path == "" {
		return fmt.Errorf("config path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Setup"})
	return nil
}

// Service handles configuration file bootstrapping.
type Service struct {
	path   string
	logger log.Logger
}

// NewService creates a new setup service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{path: cfg.Path, logger: cfg.Logger}, nil
}

// EnsureConfig writes the template config file when missing. Returns whether
// the file was created.
func (s *Service) EnsureConfig() (created bool, err error) {
	if _, err := os.Stat(s.path); err == nil {
		s.logger.Debugf("Config file %s already exists, leaving untouched", s.path)
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("could not check config file: %w", err)
	}

	if err := os.WriteFile(s.path, configTemplate, 0644); err != nil {
		return false, fmt.Errorf("could not write config file: %w", err)
	}

	s.logger.Infof("Created config file %s", s.path)
	return true, nil
}

// Template returns the embedded configuration template.
func Template() []byte {
	return configTemplate
}
