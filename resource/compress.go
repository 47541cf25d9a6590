package resource

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/toolgate/toolgate/schema"
)

// Compression algorithm names.
const (
	AlgorithmGzip = "gzip"
	AlgorithmZlib = "zlib"
	AlgorithmNone = "none"
)

// DefaultExcludeTypes are mime families that are already compressed.
var DefaultExcludeTypes = []string{
	"image/", "video/", "audio/",
	"application/zip", "application/gzip", "application/x-7z-compressed",
	"application/x-rar-compressed", "application/x-tar",
}

// CompressionConfig controls the compression engine.
type CompressionConfig struct {
	Enabled      bool
	MinSize      int64
	Algorithm    string
	Level        int
	ExcludeTypes []string
}

// Compressor decides whether outgoing resource bytes are worth compressing and
// performs the compression. Output is base64 encoded so compressed binary is
// transport safe; a compression failure falls back to the original bytes and
// never fails the read.
type Compressor struct {
	config CompressionConfig
	logger *slog.Logger
}

// NewCompressor creates a compression engine from config.
func NewCompressor(config CompressionConfig, logger *slog.Logger) *Compressor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Algorithm == "" {
		config.Algorithm = AlgorithmGzip
	}
	if config.Level == 0 {
		config.Level = gzip.DefaultCompression
	}
	if len(config.ExcludeTypes) == 0 {
		config.ExcludeTypes = DefaultExcludeTypes
	}
	return &Compressor{config: config, logger: logger}
}

// Algorithm returns the configured default algorithm.
func (c *Compressor) Algorithm() string {
	return c.config.Algorithm
}

// Level returns the configured compression level.
func (c *Compressor) Level() int {
	return c.config.Level
}

// ShouldCompress decides whether content of the given size and mime type gets
// compressed. An explicit override always wins.
func (c *Compressor) ShouldCompress(size int64, mimeType string, override *bool) bool {
	if override != nil {
		return *override
	}
	if !c.config.Enabled {
		return false
	}
	if size < c.config.MinSize {
		return false
	}
	for _, excluded := range c.config.ExcludeTypes {
		if strings.HasPrefix(mimeType, excluded) {
			return false
		}
	}
	return true
}

// Compress encodes content with the given algorithm and returns the base64
// encoded result plus stats. On failure the original content is returned
// base64 encoded with Algorithm "none" and the error noted in stats.
func (c *Compressor) Compress(content []byte, algorithm string, level int) (string, schema.CompressionStats) {
	stats := schema.CompressionStats{Algorithm: algorithm, OriginalSize: len(content)}
	compressed, err := deflate(content, algorithm, level)
	if err != nil {
		c.logger.Warn("compression failed, sending uncompressed", "algorithm", algorithm, "error", err)
		stats.Algorithm = AlgorithmNone
		stats.CompressedSize = len(content)
		stats.Ratio = 1
		stats.Error = err.Error()
		return base64.StdEncoding.EncodeToString(content), stats
	}
	stats.CompressedSize = len(compressed)
	if stats.OriginalSize > 0 {
		stats.Ratio = float64(stats.CompressedSize) / float64(stats.OriginalSize)
	}
	return base64.StdEncoding.EncodeToString(compressed), stats
}

// Decompress reverses Compress for the given algorithm; "none" just decodes.
func (c *Compressor) Decompress(encoded string, algorithm string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var reader io.ReadCloser
	switch algorithm {
	case AlgorithmNone, "":
		return data, nil
	case AlgorithmGzip:
		reader, err = gzip.NewReader(bytes.NewReader(data))
	case AlgorithmZlib:
		reader, err = zlib.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %q", algorithm)
	}
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func deflate(content []byte, algorithm string, level int) ([]byte, error) {
	var buffer bytes.Buffer
	var writer io.WriteCloser
	var err error
	switch algorithm {
	case AlgorithmGzip:
		writer, err = gzip.NewWriterLevel(&buffer, level)
	case AlgorithmZlib:
		writer, err = zlib.NewWriterLevel(&buffer, level)
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %q", algorithm)
	}
	if err != nil {
		return nil, err
	}
	if _, err = writer.Write(content); err != nil {
		_ = writer.Close()
		return nil, err
	}
	if err = writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
