// Package server implements the request dispatch core: envelope validation,
// capability negotiation, consent gating and routing to the tool registry and
// resource providers. A request moves through validation, authorization,
// execution and response assembly; every failure path yields a structured
// error response and never terminates the server.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/viant/jsonrpc/transport"
	"github.com/toolgate/toolgate/consent"
	"github.com/toolgate/toolgate/internal/collection"
	"github.com/toolgate/toolgate/resource"
	"github.com/toolgate/toolgate/schema"
	"github.com/toolgate/toolgate/tool"
)

// Server is the dispatch core shared by all transports and callers.
type Server struct {
	capabilities schema.Capabilities
	info         schema.Implementation
	registry     *tool.Registry
	providers    map[string]*resource.Provider
	gate         *consent.Gate
	logger       *slog.Logger

	// negotiated capability sets keyed by client id
	sessions *collection.SyncMap[string, schema.Capabilities]
}

func defaultCapabilities() schema.Capabilities {
	return schema.Capabilities{
		schema.CapabilityTools:             true,
		schema.CapabilityResources:         true,
		schema.CapabilitySubscriptions:     true,
		schema.CapabilityConsent:           true,
		schema.CapabilityAuthorization:     true,
		schema.CapabilityBatch:             true,
		schema.CapabilityProgress:          false,
		schema.CapabilityResourceStreaming: true,
		schema.CapabilityResourceCaching:   true,
	}
}

// New creates a Server instance.
func New(options ...Option) (*Server, error) {
	s := &Server{
		capabilities: defaultCapabilities(),
		info:         schema.Implementation{Name: "toolgate", Version: "0.1"},
		providers:    map[string]*resource.Provider{},
		logger:       slog.Default(),
		sessions:     collection.NewSyncMap[string, schema.Capabilities](),
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	if s.registry == nil {
		s.registry = tool.NewRegistry()
	}
	if s.gate == nil {
		s.gate = consent.NewGate(nil, consent.WithLogger(s.logger))
	}
	unknown, err := s.capabilities.Validate()
	if err != nil {
		return nil, err
	}
	for _, name := range unknown {
		s.logger.Warn("unknown server capability declared", "capability", name)
	}
	return s, nil
}

// Gate exposes the consent gate, e.g. for violation inspection.
func (s *Server) Gate() *consent.Gate {
	return s.gate
}

// Provider returns the resource provider serving uri, matched by the provider
// name segment of resource://<provider>/<path>.
func (s *Server) provider(uri string) (*resource.Provider, error) {
	rest, ok := strings.CutPrefix(uri, resource.URIScheme+"://")
	if !ok {
		return nil, errors.New("unsupported resource uri scheme: " + uri)
	}
	name, _, _ := strings.Cut(rest, "/")
	if provider, ok := s.providers[name]; ok {
		return provider, nil
	}
	return nil, errors.New("unknown resource provider: " + name)
}

// NewHandler creates a transport-bound handler instance.
func (s *Server) NewHandler(ctx context.Context, transport transport.Transport) transport.Handler {
	return s.newHandler(ctx, transport)
}

func (s *Server) newHandler(ctx context.Context, notifier transport.Notifier) *Handler {
	// a caller bound at transport setup identifies the whole session
	return &Handler{Server: s, Notifier: notifier, caller: consent.CallerFromContext(ctx)}
}
