package server

import (
	"fmt"
	"log/slog"

	"github.com/toolgate/toolgate/consent"
	"github.com/toolgate/toolgate/resource"
	"github.com/toolgate/toolgate/schema"
	"github.com/toolgate/toolgate/tool"
)

// Option is a function that configures the server.
type Option func(s *Server) error

// WithImplementation sets the server identity.
func WithImplementation(implementation schema.Implementation) Option {
	return func(s *Server) error {
		s.info = implementation
		return nil
	}
}

// WithCapabilities overrides the declared server capability set.
func WithCapabilities(capabilities schema.Capabilities) Option {
	return func(s *Server) error {
		s.capabilities = capabilities.Clone()
		return nil
	}
}

// WithRegistry sets the tool registry.
func WithRegistry(registry *tool.Registry) Option {
	return func(s *Server) error {
		s.registry = registry
		return nil
	}
}

// WithProvider adds a resource provider, keyed by its name.
func WithProvider(provider *resource.Provider) Option {
	return func(s *Server) error {
		if _, ok := s.providers[provider.Name()]; ok {
			return fmt.Errorf("provider %q already registered", provider.Name())
		}
		s.providers[provider.Name()] = provider
		return nil
	}
}

// WithGate sets the consent gate.
func WithGate(gate *consent.Gate) Option {
	return func(s *Server) error {
		s.gate = gate
		return nil
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}
