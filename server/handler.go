package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/toolgate/toolgate/consent"
	"github.com/toolgate/toolgate/resource"
	"github.com/toolgate/toolgate/schema"
	"github.com/toolgate/toolgate/tool"
)

// Handler represents a per-transport dispatch handler
type Handler struct {
	transport.Notifier
	*Server

	// session-scoped identity; a caller on the request context takes precedence
	caller *consent.Caller
}

// Serve handles a single incoming request: validate, authorize, execute,
// respond. Each denial or failure terminates only this request.
func (h *Handler) Serve(parent context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	if request.Method == "" {
		response.Error = jsonrpc.NewInvalidRequest("method is required", nil)
		return
	}
	ctx := parent
	caller := consent.CallerFromContext(ctx)
	if caller == nil {
		caller = h.caller
	}
	if caller != nil {
		required := h.requiredTier(request)
		if rpcErr := h.gate.Verify(caller, request.Method, required); rpcErr != nil {
			response.Error = rpcErr
			return
		}
		ctx = consent.WithCaller(ctx, caller)
	}

	switch request.Method {
	case schema.MethodPing:
		h.setResponse(response, &schema.PingResult{}, nil)
	case schema.MethodCapabilitiesList:
		result, err := h.ListCapabilities(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodCapabilitiesNegotiate:
		result, err := h.Negotiate(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodToolsList:
		result, err := h.ListTools(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodToolsGet:
		result, err := h.GetTool(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodToolsCall:
		result, err := h.CallTool(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodResourcesList:
		result, err := h.ListResources(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodResourcesRead:
		result, err := h.ReadResource(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodResourcesReadRange:
		result, err := h.ReadResourceRange(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodStreamOpen:
		result, err := h.OpenStream(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodStreamNext:
		result, err := h.NextChunk(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodStreamClose:
		result, err := h.CloseStream(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodSubscribe:
		result, err := h.Subscribe(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodUnsubscribe:
		result, err := h.Unsubscribe(ctx, request)
		h.setResponse(response, result, err)
	default:
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method: %v not found", request.Method), request.Params)
	}
}

// requiredTier resolves the nominal tier for the method and escalates it for
// dangerous tools and sensitive resources.
func (h *Handler) requiredTier(request *jsonrpc.Request) consent.Tier {
	required := h.gate.RequiredTier(request.Method)
	if required >= consent.TierElevated {
		return required
	}
	switch request.Method {
	case schema.MethodToolsCall:
		var params schema.CallToolParams
		if err := json.Unmarshal(request.Params, &params); err == nil {
			if metadata, ok := h.registry.Get(params.Name); ok && metadata.Dangerous {
				return consent.TierElevated
			}
		}
	case schema.MethodResourcesList, schema.MethodResourcesRead,
		schema.MethodResourcesReadRange, schema.MethodStreamOpen,
		schema.MethodSubscribe, schema.MethodUnsubscribe:
		var params struct {
			Uri string `json:"uri"`
		}
		if err := json.Unmarshal(request.Params, &params); err == nil && params.Uri != "" {
			if provider, err := h.provider(params.Uri); err == nil && provider.IsSensitive(params.Uri) {
				return consent.TierElevated
			}
		}
	case schema.MethodStreamNext, schema.MethodStreamClose:
		var params struct {
			StreamId string `json:"streamId"`
		}
		if err := json.Unmarshal(request.Params, &params); err == nil && params.StreamId != "" {
			for _, provider := range h.providers {
				if uri, ok := provider.StreamURI(params.StreamId); ok {
					if provider.IsSensitive(uri) {
						return consent.TierElevated
					}
					break
				}
			}
		}
	}
	return required
}

// setResponse wraps the handler outcome into the response envelope; a result
// that fails to serialize downgrades to a minimal internal error rather than
// propagating a second failure.
func (h *Handler) setResponse(response *jsonrpc.Response, result interface{}, rpcError *jsonrpc.Error) {
	if rpcError != nil {
		response.Error = rpcError
		return
	}
	var err error
	response.Result, err = json.Marshal(result)
	if err != nil {
		h.logger.Error("failed to serialize result", "error", err)
		response.Result = nil
		response.Error = jsonrpc.NewInternalError("failed to serialize result", nil)
	}
}

// toError maps domain errors onto stable wire error codes.
func (h *Handler) toError(err error) *jsonrpc.Error {
	switch {
	case errors.Is(err, resource.ErrNotFound):
		return &jsonrpc.Error{Code: schema.ResourceNotFound, Message: err.Error()}
	case errors.Is(err, resource.ErrUnknownStream):
		return &jsonrpc.Error{Code: schema.ResourceNotFound, Message: err.Error()}
	case errors.Is(err, resource.ErrInvalidRange),
		errors.Is(err, resource.ErrNotSubscribed),
		errors.Is(err, tool.ErrUnknownTool):
		return jsonrpc.NewInvalidParamsError(err.Error(), nil)
	}
	var execErr *tool.ExecutionError
	if errors.As(err, &execErr) {
		data, _ := json.Marshal(map[string]string{"tool": execErr.Tool, "cause": execErr.Err.Error()})
		return jsonrpc.NewInternalError(execErr.Error(), data)
	}
	return jsonrpc.NewInternalError(err.Error(), nil)
}

// OnNotification handles incoming notifications; no response is produced.
func (h *Handler) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	h.logger.Debug("notification received", "method", notification.Method)
}
