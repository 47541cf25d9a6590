package server

import (
	"context"
	"fmt"

	"github.com/viant/jsonrpc"
	"github.com/toolgate/toolgate/consent"
	"github.com/toolgate/toolgate/schema"
)

// ListCapabilities handles the capabilities/list method
func (h *Handler) ListCapabilities(ctx context.Context, request *jsonrpc.Request) (*schema.ListCapabilitiesResult, *jsonrpc.Error) {
	return &schema.ListCapabilitiesResult{
		Capabilities: h.capabilities.Clone(),
		ServerInfo:   h.info,
	}, nil
}

// Negotiate handles the capabilities/negotiate method: the session capability
// set is the boolean AND of the server and client declarations.
func (h *Handler) Negotiate(ctx context.Context, request *jsonrpc.Request) (*schema.NegotiateResult, *jsonrpc.Error) {
	params := &schema.NegotiateParams{}
	if err := unmarshalParams(request, params); err != nil {
		return nil, err
	}
	unknown, err := params.Capabilities.Validate()
	if err != nil {
		return nil, jsonrpc.NewInvalidParamsError(fmt.Sprintf("invalid capabilities: %v", err), request.Params)
	}
	for _, name := range unknown {
		h.logger.Warn("unknown client capability", "capability", name)
	}
	negotiated := h.capabilities.Negotiate(params.Capabilities)
	if caller := consent.CallerFromContext(ctx); caller != nil && caller.ClientID != "" {
		h.sessions.Put(caller.ClientID, negotiated)
	}
	return &schema.NegotiateResult{Capabilities: negotiated, ServerInfo: h.info}, nil
}

// SessionCapabilities returns the negotiated capability set for a client; the
// server declaration applies while no negotiation happened.
func (s *Server) SessionCapabilities(clientID string) schema.Capabilities {
	if negotiated, ok := s.sessions.Get(clientID); ok {
		return negotiated.Clone()
	}
	return s.capabilities.Clone()
}
