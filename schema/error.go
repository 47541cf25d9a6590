package schema

import (
	"encoding/json"

	"github.com/viant/jsonrpc"
)

// Stable caller-visible error codes. The -32xxx range follows JSON-RPC; the
// -3200x codes are server-defined.
const (
	ConsentDenied    = -32000
	ResourceNotFound = -32001
	Unauthorized     = -32002
)

// NewConsentDenied creates a consent verification failure
func NewConsentDenied(operation, reason string) *jsonrpc.Error {
	data, _ := json.Marshal(map[string]string{"operation": operation, "reason": reason})
	return &jsonrpc.Error{
		Code:    ConsentDenied,
		Message: "Consent verification failed: " + reason,
		Data:    data,
	}
}

// NewUnauthorized creates an authorization failure
func NewUnauthorized(operation, reason string) *jsonrpc.Error {
	data, _ := json.Marshal(map[string]string{"operation": operation, "reason": reason})
	return &jsonrpc.Error{
		Code:    Unauthorized,
		Message: "Authorization failed: " + reason,
		Data:    data,
	}
}

// NewResourceNotFound creates a resource not found
func NewResourceNotFound(uri string) *jsonrpc.Error {
	data, _ := json.Marshal(map[string]string{"uri": uri})
	return &jsonrpc.Error{Code: ResourceNotFound, Message: "Resource not found", Data: data}
}

// NewUnknownStream creates an unknown stream error
func NewUnknownStream(streamId string) *jsonrpc.Error {
	data, _ := json.Marshal(map[string]string{"streamId": streamId})
	return &jsonrpc.Error{Code: ResourceNotFound, Message: "Unknown stream: " + streamId, Data: data}
}
