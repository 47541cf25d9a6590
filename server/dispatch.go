package server

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/viant/jsonrpc"
)

// Dispatch processes a raw envelope or batch of envelopes and returns the
// marshaled response payload; nil is returned when nothing is owed (the input
// was a notification, or a batch of only notifications).
func (s *Server) Dispatch(ctx context.Context, payload []byte) []byte {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return s.dispatchBatch(ctx, trimmed)
	}
	response := s.dispatchOne(ctx, trimmed)
	if response == nil {
		return nil
	}
	return marshalResponse(response)
}

// envelope is the caller-facing request shape; the jsonrpc version field is
// optional on the way in and filled before dispatch.
type envelope struct {
	Id     interface{}     `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// dispatchOne runs a single raw envelope through the dispatch algorithm and
// returns nil for notifications.
func (s *Server) dispatchOne(ctx context.Context, payload []byte) *jsonrpc.Response {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		// id may be unknown at this point
		return &jsonrpc.Response{
			Jsonrpc: jsonrpc.Version,
			Error:   jsonrpc.NewInvalidRequest("malformed request envelope: "+err.Error(), nil),
		}
	}
	request := &jsonrpc.Request{
		Jsonrpc: jsonrpc.Version,
		Id:      env.Id,
		Method:  env.Method,
		Params:  env.Params,
	}
	// a malformed envelope without id still owes an error response
	notification := request.Id == nil && request.Method != ""
	response := &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: request.Id}
	handler := &Handler{Server: s}
	handler.Serve(ctx, request, response)
	if notification {
		return nil
	}
	return response
}

// dispatchBatch processes each batch element independently and concurrently;
// a malformed element yields its own error response without aborting siblings,
// and notification elements contribute no response.
func (s *Server) dispatchBatch(ctx context.Context, payload []byte) []byte {
	var elements []json.RawMessage
	if err := json.Unmarshal(payload, &elements); err != nil || len(elements) == 0 {
		return marshalResponse(&jsonrpc.Response{
			Jsonrpc: jsonrpc.Version,
			Error:   jsonrpc.NewInvalidRequest("batch must be a non-empty array", nil),
		})
	}
	responses := make([]*jsonrpc.Response, len(elements))
	var waitGroup sync.WaitGroup
	for i := range elements {
		waitGroup.Add(1)
		go func(index int, element []byte) {
			defer waitGroup.Done()
			responses[index] = s.dispatchOne(ctx, element)
		}(i, elements[i])
	}
	waitGroup.Wait()

	var results []*jsonrpc.Response
	for _, response := range responses {
		if response != nil {
			results = append(results, response)
		}
	}
	if len(results) == 0 {
		return nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return marshalResponse(&jsonrpc.Response{
			Jsonrpc: jsonrpc.Version,
			Error:   jsonrpc.NewInternalError("failed to serialize batch response", nil),
		})
	}
	return data
}

func marshalResponse(response *jsonrpc.Response) []byte {
	data, err := json.Marshal(response)
	if err != nil {
		// minimal generic envelope, detail deliberately dropped
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"internal error"}}`)
	}
	return data
}
