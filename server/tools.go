package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/jsonrpc"
	"github.com/toolgate/toolgate/schema"
)

func unmarshalParams(request *jsonrpc.Request, target interface{}) *jsonrpc.Error {
	if len(request.Params) == 0 {
		return jsonrpc.NewInvalidParamsError("params are required", nil)
	}
	if err := json.Unmarshal(request.Params, target); err != nil {
		return jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params)
	}
	return nil
}

// ListTools handles the tools/list method
func (h *Handler) ListTools(ctx context.Context, request *jsonrpc.Request) (*schema.ListToolsResult, *jsonrpc.Error) {
	return &schema.ListToolsResult{Tools: h.registry.List()}, nil
}

// GetTool handles the tools/get method
func (h *Handler) GetTool(ctx context.Context, request *jsonrpc.Request) (*schema.GetToolResult, *jsonrpc.Error) {
	params := &schema.GetToolParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	metadata, ok := h.registry.Get(params.Name)
	if !ok {
		return nil, jsonrpc.NewInvalidParamsError("unknown tool: "+params.Name, nil)
	}
	return &schema.GetToolResult{Tool: metadata}, nil
}

// CallTool handles the tools/call method; execution failures are caught at
// this boundary and wrapped, the original message preserved.
func (h *Handler) CallTool(ctx context.Context, request *jsonrpc.Request) (*schema.CallToolResult, *jsonrpc.Error) {
	params := &schema.CallToolParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	result, err := h.registry.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		return nil, h.toError(err)
	}
	return &schema.CallToolResult{Result: result}, nil
}
