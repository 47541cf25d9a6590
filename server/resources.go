package server

import (
	"context"

	"github.com/viant/jsonrpc"
	"github.com/toolgate/toolgate/resource"
	"github.com/toolgate/toolgate/schema"
)

// ListResources handles the resources/list method
func (h *Handler) ListResources(ctx context.Context, request *jsonrpc.Request) (*schema.ListResourcesResult, *jsonrpc.Error) {
	params := &schema.ListResourcesParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	provider, err := h.provider(params.Uri)
	if err != nil {
		return nil, schema.NewResourceNotFound(params.Uri)
	}
	resources, err := provider.List(ctx, params.Uri)
	if err != nil {
		return nil, h.toError(err)
	}
	return &schema.ListResourcesResult{Resources: resources}, nil
}

// ReadResource handles the resources/read method
func (h *Handler) ReadResource(ctx context.Context, request *jsonrpc.Request) (*schema.ReadResourceResult, *jsonrpc.Error) {
	params := &schema.ReadResourceParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	provider, err := h.provider(params.Uri)
	if err != nil {
		return nil, schema.NewResourceNotFound(params.Uri)
	}
	result, err := provider.Read(ctx, params.Uri, params.BypassCache)
	if err != nil {
		return nil, h.toError(err)
	}
	return result, nil
}

// ReadResourceRange handles the resources/readRange method
func (h *Handler) ReadResourceRange(ctx context.Context, request *jsonrpc.Request) (*schema.ReadRangeResult, *jsonrpc.Error) {
	params := &schema.ReadRangeParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	provider, err := h.provider(params.Uri)
	if err != nil {
		return nil, schema.NewResourceNotFound(params.Uri)
	}
	result, err := provider.ReadRange(ctx, params.Uri, params.Range)
	if err != nil {
		return nil, h.toError(err)
	}
	return result, nil
}

// OpenStream handles the resources/stream/open method
func (h *Handler) OpenStream(ctx context.Context, request *jsonrpc.Request) (*schema.OpenStreamResult, *jsonrpc.Error) {
	params := &schema.OpenStreamParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	provider, err := h.provider(params.Uri)
	if err != nil {
		return nil, schema.NewResourceNotFound(params.Uri)
	}
	result, err := provider.OpenStream(ctx, params.Uri, params.Range, params.Compress)
	if err != nil {
		return nil, h.toError(err)
	}
	return result, nil
}

// NextChunk handles the resources/stream/next method
func (h *Handler) NextChunk(ctx context.Context, request *jsonrpc.Request) (*schema.NextChunkResult, *jsonrpc.Error) {
	params := &schema.NextChunkParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	provider, rpcErr := h.streamProvider(params.StreamId)
	if rpcErr != nil {
		return nil, rpcErr
	}
	result, err := provider.NextChunk(ctx, params.StreamId)
	if err != nil {
		return nil, h.toError(err)
	}
	return result, nil
}

// streamProvider locates the provider tracking a stream id.
func (h *Handler) streamProvider(streamId string) (*resource.Provider, *jsonrpc.Error) {
	for _, provider := range h.providers {
		if provider.HasStream(streamId) {
			return provider, nil
		}
	}
	return nil, schema.NewUnknownStream(streamId)
}

// CloseStream handles the resources/stream/close method
func (h *Handler) CloseStream(ctx context.Context, request *jsonrpc.Request) (*schema.CloseStreamResult, *jsonrpc.Error) {
	params := &schema.CloseStreamParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	provider, rpcErr := h.streamProvider(params.StreamId)
	if rpcErr != nil {
		return nil, rpcErr
	}
	result, err := provider.CloseStream(params.StreamId)
	if err != nil {
		return nil, h.toError(err)
	}
	return result, nil
}

// Subscribe handles the resources/subscribe method
func (h *Handler) Subscribe(ctx context.Context, request *jsonrpc.Request) (*schema.SubscribeResult, *jsonrpc.Error) {
	params := &schema.SubscribeParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	provider, err := h.provider(params.Uri)
	if err != nil {
		return nil, schema.NewResourceNotFound(params.Uri)
	}
	provider.Subscribe(params.Uri, params.CallbackId)
	return &schema.SubscribeResult{}, nil
}

// Unsubscribe handles the resources/unsubscribe method
func (h *Handler) Unsubscribe(ctx context.Context, request *jsonrpc.Request) (*schema.UnsubscribeResult, *jsonrpc.Error) {
	params := &schema.UnsubscribeParams{}
	if rpcErr := unmarshalParams(request, params); rpcErr != nil {
		return nil, rpcErr
	}
	provider, err := h.provider(params.Uri)
	if err != nil {
		return nil, schema.NewResourceNotFound(params.Uri)
	}
	if err := provider.Unsubscribe(params.Uri, params.CallbackId); err != nil {
		return nil, h.toError(err)
	}
	return &schema.UnsubscribeResult{}, nil
}
