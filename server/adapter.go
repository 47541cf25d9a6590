package server

import (
	"context"
	"encoding/json"

	"github.com/viant/jsonrpc"
	"github.com/toolgate/toolgate/schema"
)

// Adapter exposes the dispatcher as an in-process client, for embedding and
// tests.
type Adapter struct {
	handler *Handler
}

// AsClient returns an in-process client over the server.
func (s *Server) AsClient(ctx context.Context) *Adapter {
	return &Adapter{handler: s.newHandler(ctx, nil)}
}

func call[R any](ctx context.Context, a *Adapter, method string, params interface{}) (*R, error) {
	request, err := jsonrpc.NewRequest(method, params)
	if err != nil {
		return nil, err
	}
	response := &jsonrpc.Response{}
	a.handler.Serve(ctx, request, response)
	if response.Error != nil {
		return nil, response.Error
	}
	var result R
	if err = json.Unmarshal(response.Result, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping pings the server
func (a *Adapter) Ping(ctx context.Context) (*schema.PingResult, error) {
	return call[schema.PingResult](ctx, a, schema.MethodPing, nil)
}

// ListCapabilities lists the server capability declaration
func (a *Adapter) ListCapabilities(ctx context.Context) (*schema.ListCapabilitiesResult, error) {
	return call[schema.ListCapabilitiesResult](ctx, a, schema.MethodCapabilitiesList, nil)
}

// Negotiate negotiates session capabilities
func (a *Adapter) Negotiate(ctx context.Context, capabilities schema.Capabilities) (*schema.NegotiateResult, error) {
	return call[schema.NegotiateResult](ctx, a, schema.MethodCapabilitiesNegotiate, &schema.NegotiateParams{Capabilities: capabilities})
}

// ListTools lists registered tools
func (a *Adapter) ListTools(ctx context.Context) (*schema.ListToolsResult, error) {
	return call[schema.ListToolsResult](ctx, a, schema.MethodToolsList, nil)
}

// GetTool returns a single tool description
func (a *Adapter) GetTool(ctx context.Context, name string) (*schema.GetToolResult, error) {
	return call[schema.GetToolResult](ctx, a, schema.MethodToolsGet, &schema.GetToolParams{Name: name})
}

// CallTool invokes a tool
func (a *Adapter) CallTool(ctx context.Context, params *schema.CallToolParams) (*schema.CallToolResult, error) {
	return call[schema.CallToolResult](ctx, a, schema.MethodToolsCall, params)
}

// ListResources lists resources under a path
func (a *Adapter) ListResources(ctx context.Context, uri string) (*schema.ListResourcesResult, error) {
	return call[schema.ListResourcesResult](ctx, a, schema.MethodResourcesList, &schema.ListResourcesParams{Uri: uri})
}

// ReadResource reads a whole resource
func (a *Adapter) ReadResource(ctx context.Context, params *schema.ReadResourceParams) (*schema.ReadResourceResult, error) {
	return call[schema.ReadResourceResult](ctx, a, schema.MethodResourcesRead, params)
}

// ReadRange reads a byte range of a resource
func (a *Adapter) ReadRange(ctx context.Context, uri, rangeSpec string) (*schema.ReadRangeResult, error) {
	return call[schema.ReadRangeResult](ctx, a, schema.MethodResourcesReadRange, &schema.ReadRangeParams{Uri: uri, Range: rangeSpec})
}

// OpenStream opens a chunked transfer
func (a *Adapter) OpenStream(ctx context.Context, params *schema.OpenStreamParams) (*schema.OpenStreamResult, error) {
	return call[schema.OpenStreamResult](ctx, a, schema.MethodStreamOpen, params)
}

// NextChunk advances a stream
func (a *Adapter) NextChunk(ctx context.Context, streamId string) (*schema.NextChunkResult, error) {
	return call[schema.NextChunkResult](ctx, a, schema.MethodStreamNext, &schema.NextChunkParams{StreamId: streamId})
}

// CloseStream closes a stream
func (a *Adapter) CloseStream(ctx context.Context, streamId string) (*schema.CloseStreamResult, error) {
	return call[schema.CloseStreamResult](ctx, a, schema.MethodStreamClose, &schema.CloseStreamParams{StreamId: streamId})
}

// Subscribe subscribes a callback to a resource
func (a *Adapter) Subscribe(ctx context.Context, uri, callbackId string) (*schema.SubscribeResult, error) {
	return call[schema.SubscribeResult](ctx, a, schema.MethodSubscribe, &schema.SubscribeParams{Uri: uri, CallbackId: callbackId})
}

// Unsubscribe removes a callback registration
func (a *Adapter) Unsubscribe(ctx context.Context, uri, callbackId string) (*schema.UnsubscribeResult, error) {
	return call[schema.UnsubscribeResult](ctx, a, schema.MethodUnsubscribe, &schema.UnsubscribeParams{Uri: uri, CallbackId: callbackId})
}
