package resource

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/toolgate/toolgate/schema"
)

// ErrUnknownStream marks a stream id that is not tracked, either never created
// or already closed.
var ErrUnknownStream = errors.New("unknown stream")

// DefaultChunkSize applies when streaming config leaves chunk size unset.
const DefaultChunkSize = 64 * 1024

// StreamingConfig controls chunked transfers.
type StreamingConfig struct {
	Enabled     bool
	ChunkSize   int
	BufferSize  int
	IdleTTL     time.Duration
	Compression CompressionConfig
}

// stream is a single-reader sequential cursor over a ranged resource read.
// The table holding streams is synchronized; an individual stream is owned by
// whoever holds its id.
type stream struct {
	id         string
	uri        string
	reader     io.ReadCloser
	buffered   io.Reader
	position   int64
	end        int64
	chunkSize  int
	compress   bool
	algorithm  string
	level      int
	lastAccess atomic.Int64
}

func (s *stream) touch() {
	s.lastAccess.Store(time.Now().UnixNano())
}

func (s *stream) close() {
	if s.reader != nil {
		_ = s.reader.Close()
	}
}

// OpenStream creates an active stream over uri, optionally ranged and
// compressed. No content is transferred at creation time.
func (p *Provider) OpenStream(ctx context.Context, uri string, rangeSpec *string, compressOverride *bool) (*schema.OpenStreamResult, error) {
	storageURL, _, err := p.resolve(uri)
	if err != nil {
		return nil, err
	}
	object, err := p.fs.Object(ctx, storageURL, p.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	total := object.Size()
	start, end := int64(0), total
	if rangeSpec != nil && *rangeSpec != "" {
		if start, end, err = ParseRange(*rangeSpec, total); err != nil {
			return nil, err
		}
	}

	mimeType := mimeTypeFor(object.Name())
	compress := p.compressor.ShouldCompress(end-start, mimeType, compressOverride)

	reader, err := p.fs.OpenURL(ctx, storageURL, p.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	buffered := bufferReader(reader, p.config.Streaming.BufferSize)
	if start > 0 {
		if _, err = io.CopyN(io.Discard, buffered, start); err != nil {
			_ = reader.Close()
			return nil, fmt.Errorf("seeking stream start for %v: %w", uri, err)
		}
	}

	s := &stream{
		id:        uuid.New().String(),
		uri:       uri,
		reader:    reader,
		buffered:  buffered,
		position:  start,
		end:       end,
		chunkSize: p.chunkSize(),
	}
	if compress {
		s.compress = true
		s.algorithm = p.compressor.Algorithm()
		s.level = p.compressor.Level()
	}
	s.touch()
	p.streams.Put(s.id, s)

	result := &schema.OpenStreamResult{
		StreamId:  s.id,
		Uri:       uri,
		Range:     schema.RangeInfo{Start: start, End: end, Total: total},
		ChunkSize: s.chunkSize,
	}
	if compress {
		result.Compression = s.algorithm
	}
	return result, nil
}

// NextChunk reads up to the stream chunk size from the cursor position. The
// chunk that reaches the range boundary carries Complete=true and the stream
// is removed; any read error also removes the stream before propagating.
func (p *Provider) NextChunk(ctx context.Context, streamId string) (*schema.NextChunkResult, error) {
	s, ok := p.streams.Get(streamId)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStream, streamId)
	}
	if s.position >= s.end {
		p.dropStream(s)
		return &schema.NextChunkResult{StreamId: streamId, Position: s.position, Complete: true}, nil
	}

	size := int64(s.chunkSize)
	if remaining := s.end - s.position; remaining < size {
		size = remaining
	}
	chunk := make([]byte, size)
	if _, err := io.ReadFull(s.buffered, chunk); err != nil {
		p.dropStream(s)
		return nil, fmt.Errorf("reading stream %v at %d: %w", s.uri, s.position, err)
	}
	s.position += size
	s.touch()

	result := &schema.NextChunkResult{
		StreamId: streamId,
		Position: s.position,
		Complete: s.position >= s.end,
	}
	if s.compress {
		data, stats := p.compressor.Compress(chunk, s.algorithm, s.level)
		result.Data = data
		result.Stats = &stats
	} else {
		result.Data = base64.StdEncoding.EncodeToString(chunk)
	}
	if result.Complete {
		p.dropStream(s)
	}
	return result, nil
}

// CloseStream removes an active stream.
func (p *Provider) CloseStream(streamId string) (*schema.CloseStreamResult, error) {
	s, ok := p.streams.Remove(streamId)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStream, streamId)
	}
	s.close()
	return &schema.CloseStreamResult{Closed: true}, nil
}

// HasStream reports whether streamId is tracked by this provider.
func (p *Provider) HasStream(streamId string) bool {
	_, ok := p.streams.Get(streamId)
	return ok
}

// StreamURI returns the uri a tracked stream was opened over.
func (p *Provider) StreamURI(streamId string) (string, bool) {
	if s, ok := p.streams.Get(streamId); ok {
		return s.uri, true
	}
	return "", false
}

// ActiveStreams returns the number of tracked streams.
func (p *Provider) ActiveStreams() int {
	return p.streams.Len()
}

func (p *Provider) dropStream(s *stream) {
	p.streams.Delete(s.id)
	s.close()
}

func (p *Provider) chunkSize() int {
	if p.config.Streaming.ChunkSize > 0 {
		return p.config.Streaming.ChunkSize
	}
	return DefaultChunkSize
}

func bufferReader(reader io.Reader, size int) io.Reader {
	if size > 0 {
		return bufio.NewReaderSize(reader, size)
	}
	return reader
}

// StartIdleSweep evicts streams untouched for longer than the configured idle
// TTL. Sweeping is off unless streaming.IdleTTL is set; it stops with ctx.
func (p *Provider) StartIdleSweep(ctx context.Context) {
	ttl := p.config.Streaming.IdleTTL
	if ttl <= 0 {
		return
	}
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.sweepIdle(ttl)
			}
		}
	}()
}

func (p *Provider) sweepIdle(ttl time.Duration) {
	deadline := time.Now().Add(-ttl).UnixNano()
	var stale []*stream
	p.streams.Range(func(id string, s *stream) bool {
		if s.lastAccess.Load() < deadline {
			stale = append(stale, s)
		}
		return true
	})
	for _, s := range stale {
		p.logger.Debug("closing idle stream", "stream", s.id, "uri", s.uri)
		p.dropStream(s)
	}
}
