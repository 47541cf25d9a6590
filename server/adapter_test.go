package server

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/jsonrpc"
	"github.com/toolgate/toolgate/consent"
	"github.com/toolgate/toolgate/schema"
)

func TestAdapterPingAndCapabilities(t *testing.T) {
	fixture := newTestFixture(t)
	client := fixture.server.AsClient(context.Background())

	_, err := client.Ping(context.Background())
	assert.NoError(t, err)

	listed, err := client.ListCapabilities(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, "toolgate-test", listed.ServerInfo.Name)
		assert.True(t, listed.Capabilities[schema.CapabilityTools])
		assert.False(t, listed.Capabilities[schema.CapabilityProgress])
	}
}

func TestAdapterNegotiate(t *testing.T) {
	fixture := newTestFixture(t)
	caller := &consent.Caller{ClientID: "client-n", Role: "admin", Consent: consent.TierFull}
	ctx := consent.WithCaller(context.Background(), caller)
	client := fixture.server.AsClient(ctx)

	// client omits streaming and disables subscriptions; both must land false
	negotiated, err := client.Negotiate(ctx, schema.Capabilities{
		schema.CapabilityTools:         true,
		schema.CapabilityResources:     true,
		schema.CapabilitySubscriptions: false,
		schema.CapabilityBatch:         true,
	})
	if assert.NoError(t, err) {
		assert.True(t, negotiated.Capabilities[schema.CapabilityTools])
		assert.True(t, negotiated.Capabilities[schema.CapabilityBatch])
		assert.False(t, negotiated.Capabilities[schema.CapabilitySubscriptions])
		assert.False(t, negotiated.Capabilities[schema.CapabilityResourceStreaming])
	}

	session := fixture.server.SessionCapabilities("client-n")
	assert.Equal(t, negotiated.Capabilities, session)
}

func TestAdapterNegotiateMissingMandatory(t *testing.T) {
	fixture := newTestFixture(t)
	client := fixture.server.AsClient(context.Background())

	_, err := client.Negotiate(context.Background(), schema.Capabilities{
		schema.CapabilityTools: true,
	})
	if assert.Error(t, err) {
		rpcErr, ok := err.(*jsonrpc.Error)
		if assert.True(t, ok) {
			assert.Equal(t, jsonrpc.InvalidParams, rpcErr.Code)
		}
	}
}

func TestAdapterTools(t *testing.T) {
	fixture := newTestFixture(t)
	client := fixture.server.AsClient(context.Background())

	listed, err := client.ListTools(context.Background())
	if assert.NoError(t, err) && assert.Len(t, listed.Tools, 2) {
		assert.Equal(t, "echo", listed.Tools[0].Name)
		assert.Equal(t, "shell", listed.Tools[1].Name)
		assert.True(t, listed.Tools[1].Dangerous)
	}

	described, err := client.GetTool(context.Background(), "echo")
	if assert.NoError(t, err) {
		assert.Equal(t, "echo", described.Tool.Name)
	}

	result, err := client.CallTool(context.Background(), &schema.CallToolParams{
		Name:      "echo",
		Arguments: map[string]interface{}{"value": "hello"},
	})
	if assert.NoError(t, err) {
		echoed, ok := result.Result.(map[string]interface{})
		if assert.True(t, ok) {
			assert.Equal(t, "hello", echoed["value"])
		}
	}
}

func TestAdapterCachedRead(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.write(t, "doc.txt", []byte("cached content"))
	client := fixture.server.AsClient(context.Background())

	first, err := client.ReadResource(context.Background(), &schema.ReadResourceParams{Uri: "resource://file/doc.txt"})
	if assert.NoError(t, err) {
		assert.False(t, first.Cached)
		assert.Equal(t, "cached content", first.Content.Text)
	}

	// remove the backing file; the second read must come from cache
	assert.NoError(t, os.Remove(filepath.Join(fixture.baseDir, "doc.txt")))

	second, err := client.ReadResource(context.Background(), &schema.ReadResourceParams{Uri: "resource://file/doc.txt"})
	if assert.NoError(t, err) {
		assert.True(t, second.Cached)
		assert.Equal(t, first.Content.Text, second.Content.Text)
	}

	// a bypass read must hit the store and fail now that the file is gone
	_, err = client.ReadResource(context.Background(), &schema.ReadResourceParams{Uri: "resource://file/doc.txt", BypassCache: true})
	assert.Error(t, err)
}

func TestAdapterReadRange(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.write(t, "digits.txt", []byte("0123456789"))
	client := fixture.server.AsClient(context.Background())

	ranged, err := client.ReadRange(context.Background(), "resource://file/digits.txt", "2-5")
	if assert.NoError(t, err) {
		assert.Equal(t, "2345", ranged.Content.Text)
		assert.Equal(t, int64(2), ranged.Range.Start)
		assert.Equal(t, int64(6), ranged.Range.End)
		assert.Equal(t, int64(10), ranged.Range.Total)
	}

	_, err = client.ReadRange(context.Background(), "resource://file/digits.txt", "9-2")
	if assert.Error(t, err) {
		rpcErr, ok := err.(*jsonrpc.Error)
		if assert.True(t, ok) {
			assert.Equal(t, jsonrpc.InvalidParams, rpcErr.Code)
		}
	}
}

func TestAdapterStreamLifecycle(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.write(t, "stream.txt", []byte("0123456789"))
	client := fixture.server.AsClient(context.Background())

	compress := false
	opened, err := client.OpenStream(context.Background(), &schema.OpenStreamParams{
		Uri:      "resource://file/stream.txt",
		Compress: &compress,
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.NotEmpty(t, opened.StreamId)
	assert.Equal(t, 4, opened.ChunkSize)
	assert.Equal(t, int64(10), opened.Range.Total)

	var reassembled []byte
	for {
		chunk, err := client.NextChunk(context.Background(), opened.StreamId)
		if !assert.NoError(t, err) {
			return
		}
		if chunk.Data != "" {
			decoded, err := base64.StdEncoding.DecodeString(chunk.Data)
			assert.NoError(t, err)
			reassembled = append(reassembled, decoded...)
		}
		if chunk.Complete {
			break
		}
	}
	assert.Equal(t, "0123456789", string(reassembled))

	// the stream dropped itself on completion
	_, err = client.NextChunk(context.Background(), opened.StreamId)
	if assert.Error(t, err) {
		rpcErr, ok := err.(*jsonrpc.Error)
		if assert.True(t, ok) {
			assert.Equal(t, schema.ResourceNotFound, rpcErr.Code)
		}
	}
}

func TestAdapterStreamExplicitClose(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.write(t, "stream.txt", []byte("0123456789"))
	client := fixture.server.AsClient(context.Background())

	compress := false
	opened, err := client.OpenStream(context.Background(), &schema.OpenStreamParams{
		Uri:      "resource://file/stream.txt",
		Compress: &compress,
	})
	if !assert.NoError(t, err) {
		return
	}

	closed, err := client.CloseStream(context.Background(), opened.StreamId)
	if assert.NoError(t, err) {
		assert.True(t, closed.Closed)
	}

	_, err = client.CloseStream(context.Background(), opened.StreamId)
	assert.Error(t, err)
}

func TestAdapterSubscriptions(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.write(t, "watched.txt", []byte("v1"))
	client := fixture.server.AsClient(context.Background())

	_, err := client.Subscribe(context.Background(), "resource://file/watched.txt", "cb-1")
	assert.NoError(t, err)

	_, err = client.Unsubscribe(context.Background(), "resource://file/watched.txt", "cb-1")
	assert.NoError(t, err)

	_, err = client.Unsubscribe(context.Background(), "resource://file/watched.txt", "cb-1")
	if assert.Error(t, err) {
		rpcErr, ok := err.(*jsonrpc.Error)
		if assert.True(t, ok) {
			assert.Equal(t, jsonrpc.InvalidParams, rpcErr.Code)
		}
	}
}

func TestWriteMethodNotRouted(t *testing.T) {
	fixture := newTestFixture(t)
	response := dispatchJSON(t, fixture.server, context.Background(), `{"id":11,"method":"resources/write","params":{"uri":"resource://file/x"}}`)
	if assert.NotNil(t, response) && assert.NotNil(t, response.Error) {
		assert.Equal(t, -32601, response.Error.Code)
	}
}
