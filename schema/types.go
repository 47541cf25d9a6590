package schema

import "time"

// Implementation identifies the server implementation.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// PingResult is returned by the ping method.
type PingResult struct{}

// ListCapabilitiesResult advertises the server capability set.
type ListCapabilitiesResult struct {
	Capabilities Capabilities   `json:"capabilities"`
	ServerInfo   Implementation `json:"serverInfo"`
}

// NegotiateParams carries the client capability declaration.
type NegotiateParams struct {
	Capabilities Capabilities `json:"capabilities"`
}

// NegotiateResult carries the session capability set.
type NegotiateResult struct {
	Capabilities Capabilities   `json:"capabilities"`
	ServerInfo   Implementation `json:"serverInfo"`
}

// Tool describes a registered tool.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Dangerous   bool   `json:"dangerous,omitempty"`
}

// ListToolsResult lists registered tools.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// GetToolParams selects a tool by name.
type GetToolParams struct {
	Name string `json:"name"`
}

// GetToolResult carries a single tool description.
type GetToolResult struct {
	Tool Tool `json:"tool"`
}

// CallToolParams invokes a tool with arguments.
type CallToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// CallToolResult carries the tool return value.
type CallToolResult struct {
	Result interface{} `json:"result"`
}

// Resource describes a listable resource entry.
type Resource struct {
	Name     string    `json:"name"`
	Uri      string    `json:"uri"`
	Kind     string    `json:"kind"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	MimeType *string   `json:"mimeType,omitempty"`
}

// ListResourcesParams selects a provider path to list.
type ListResourcesParams struct {
	Uri string `json:"uri"`
}

// ListResourcesResult lists resources under a path.
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ResourceContent carries resource bytes; binary payloads travel base64 encoded
// in Blob, textual ones in Text.
type ResourceContent struct {
	Uri      string  `json:"uri"`
	MimeType *string `json:"mimeType,omitempty"`
	Text     string  `json:"text,omitempty"`
	Blob     string  `json:"blob,omitempty"`
}

// ReadResourceParams reads a whole resource.
type ReadResourceParams struct {
	Uri         string `json:"uri"`
	BypassCache bool   `json:"bypassCache,omitempty"`
}

// ReadResourceResult carries whole resource content.
type ReadResourceResult struct {
	Content ResourceContent `json:"content"`
	Size    int64           `json:"size"`
	Cached  bool            `json:"cached,omitempty"`
}

// RangeInfo reports the resolved byte range of a ranged read.
type RangeInfo struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Total int64 `json:"total"`
}

// ReadRangeParams reads a byte range of a resource.
type ReadRangeParams struct {
	Uri   string `json:"uri"`
	Range string `json:"range"`
}

// ReadRangeResult carries a content slice plus its resolved range.
type ReadRangeResult struct {
	Content ResourceContent `json:"content"`
	Range   RangeInfo       `json:"range"`
}

// OpenStreamParams opens a chunked transfer over a resource.
type OpenStreamParams struct {
	Uri      string  `json:"uri"`
	Range    *string `json:"range,omitempty"`
	Compress *bool   `json:"compress,omitempty"`
}

// OpenStreamResult describes the created stream; no content travels here.
type OpenStreamResult struct {
	StreamId    string    `json:"streamId"`
	Uri         string    `json:"uri"`
	Range       RangeInfo `json:"range"`
	ChunkSize   int       `json:"chunkSize"`
	Compression string    `json:"compression,omitempty"`
}

// NextChunkParams advances a stream cursor.
type NextChunkParams struct {
	StreamId string `json:"streamId"`
}

// NextChunkResult carries one chunk; Data is base64 encoded, compressed when the
// stream was opened with compression.
type NextChunkResult struct {
	StreamId string            `json:"streamId"`
	Data     string            `json:"data"`
	Position int64             `json:"position"`
	Complete bool              `json:"complete"`
	Stats    *CompressionStats `json:"stats,omitempty"`
}

// CompressionStats reports the outcome of a compression attempt.
type CompressionStats struct {
	Algorithm      string  `json:"algorithm"`
	OriginalSize   int     `json:"originalSize"`
	CompressedSize int     `json:"compressedSize"`
	Ratio          float64 `json:"ratio"`
	Error          string  `json:"error,omitempty"`
}

// CloseStreamParams closes a stream.
type CloseStreamParams struct {
	StreamId string `json:"streamId"`
}

// CloseStreamResult acknowledges a stream close.
type CloseStreamResult struct {
	Closed bool `json:"closed"`
}

// SubscribeParams registers a callback for resource change notifications.
type SubscribeParams struct {
	Uri        string `json:"uri"`
	CallbackId string `json:"callbackId"`
}

// SubscribeResult acknowledges a subscription.
type SubscribeResult struct{}

// UnsubscribeParams removes a callback registration.
type UnsubscribeParams struct {
	Uri        string `json:"uri"`
	CallbackId string `json:"callbackId"`
}

// UnsubscribeResult acknowledges an unsubscription.
type UnsubscribeResult struct{}
