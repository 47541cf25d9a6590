package resource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/toolgate/toolgate/internal/collection"
	"github.com/toolgate/toolgate/schema"
)

// URIScheme prefixes every resource identifier: resource://<provider>/<path>.
const URIScheme = "resource"

var (
	// ErrNotFound marks an absent resource or path.
	ErrNotFound = errors.New("resource not found")
	// ErrNotSubscribed marks an unsubscribe for a callback that never subscribed.
	ErrNotSubscribed = errors.New("not subscribed")
)

// Config describes one provider instance and the behavior of its cache,
// streaming and sensitivity classification.
type Config struct {
	Name    string
	BaseURL string
	Options []storage.Option

	CacheEnabled bool
	Cache        CacheConfig

	Streaming StreamingConfig

	SensitivePrefixes   []string
	SensitiveExtensions []string
}

// Provider lists, reads, streams and subscribes to URI addressed resources
// backed by an external byte store. It owns the cache, the compression engine
// and the active stream table.
type Provider struct {
	config     *Config
	fs         afs.Service
	cache      *Cache
	compressor *Compressor
	streams    *collection.SyncMap[string, *stream]
	logger     *slog.Logger

	subMux        sync.Mutex
	subscriptions map[string]map[string]struct{}
}

// New creates a provider from config.
func New(config *Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	provider := &Provider{
		config:        config,
		fs:            afs.New(),
		compressor:    NewCompressor(config.Streaming.Compression, logger),
		streams:       collection.NewSyncMap[string, *stream](),
		logger:        logger,
		subscriptions: map[string]map[string]struct{}{},
	}
	if config.CacheEnabled {
		provider.cache = NewCache(config.Cache, logger)
	}
	return provider
}

// Name returns the provider name selected by resource URIs.
func (p *Provider) Name() string {
	return p.config.Name
}

// Compressor exposes the compression engine, e.g. for client side round trips.
func (p *Provider) Compressor() *Compressor {
	return p.compressor
}

// resolve translates resource://<name>/<path> into a storage URL. The path is
// canonicalized so every spelling of a location classifies and resolves the
// same way; a path escaping the provider base is not served.
func (p *Provider) resolve(uri string) (storageURL, relative string, err error) {
	prefix := URIScheme + "://" + p.config.Name + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", "", fmt.Errorf("%w: %q is not served by provider %q", ErrNotFound, uri, p.config.Name)
	}
	relative = path.Clean(strings.TrimPrefix(uri, prefix))
	if relative == ".." || strings.HasPrefix(relative, "../") {
		return "", "", fmt.Errorf("%w: %q escapes the provider base", ErrNotFound, uri)
	}
	if relative == "." || relative == "/" {
		relative = ""
	}
	relative = strings.TrimPrefix(relative, "/")
	return strings.TrimSuffix(p.config.BaseURL, "/") + "/" + relative, relative, nil
}

// List returns resource descriptors under the given URI path.
func (p *Provider) List(ctx context.Context, uri string) ([]schema.Resource, error) {
	storageURL, _, err := p.resolve(uri)
	if err != nil {
		return nil, err
	}
	objects, err := p.fs.List(ctx, storageURL, p.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	var resources []schema.Resource
	for _, object := range objects {
		resources = append(resources, p.describe(uri, object))
	}
	return resources, nil
}

func (p *Provider) describe(baseUri string, object storage.Object) schema.Resource {
	kind := "file"
	if object.IsDir() {
		kind = "directory"
	}
	resource := schema.Resource{
		Name:     object.Name(),
		Uri:      strings.TrimSuffix(baseUri, "/") + "/" + object.Name(),
		Kind:     kind,
		Size:     object.Size(),
		Modified: object.ModTime(),
	}
	if !object.IsDir() {
		if mimeType := mimeTypeFor(object.Name()); mimeType != "" {
			resource.MimeType = &mimeType
		}
	}
	return resource
}

// Read returns the whole content of uri, served from the cache when possible.
// A bypass never reads nor populates the cache.
func (p *Provider) Read(ctx context.Context, uri string, bypassCache bool) (*schema.ReadResourceResult, error) {
	if !bypassCache && p.cache != nil {
		if content, mimeType, ok := p.cache.Get(uri); ok {
			result := p.readResult(uri, content, mimeType)
			result.Cached = true
			return result, nil
		}
	}
	storageURL, _, err := p.resolve(uri)
	if err != nil {
		return nil, err
	}
	content, err := p.fs.DownloadWithURL(ctx, storageURL, p.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	mimeType := mimeTypeFor(uri)
	if !bypassCache && p.cache != nil {
		p.cache.Put(uri, content, mimeType)
	}
	return p.readResult(uri, content, mimeType), nil
}

func (p *Provider) readResult(uri string, content []byte, mimeType string) *schema.ReadResourceResult {
	return &schema.ReadResourceResult{
		Content: makeContent(uri, content, mimeType),
		Size:    int64(len(content)),
	}
}

// ReadRange returns a byte slice of uri; ranged reads always bypass the whole
// object cache.
func (p *Provider) ReadRange(ctx context.Context, uri, rangeSpec string) (*schema.ReadRangeResult, error) {
	storageURL, _, err := p.resolve(uri)
	if err != nil {
		return nil, err
	}
	content, err := p.fs.DownloadWithURL(ctx, storageURL, p.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	total := int64(len(content))
	start, end, err := ParseRange(rangeSpec, total)
	if err != nil {
		return nil, err
	}
	return &schema.ReadRangeResult{
		Content: makeContent(uri, content[start:end], mimeTypeFor(uri)),
		Range:   schema.RangeInfo{Start: start, End: end, Total: total},
	}, nil
}

// Subscribe registers callbackId for change notifications on uri; subscribing
// twice with the same id is a no-op success.
func (p *Provider) Subscribe(uri, callbackId string) {
	p.subMux.Lock()
	defer p.subMux.Unlock()
	callbacks, ok := p.subscriptions[uri]
	if !ok {
		callbacks = map[string]struct{}{}
		p.subscriptions[uri] = callbacks
	}
	callbacks[callbackId] = struct{}{}
}

// Unsubscribe removes callbackId from uri.
func (p *Provider) Unsubscribe(uri, callbackId string) error {
	p.subMux.Lock()
	defer p.subMux.Unlock()
	callbacks, ok := p.subscriptions[uri]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, uri)
	}
	if _, ok := callbacks[callbackId]; !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, uri)
	}
	delete(callbacks, callbackId)
	if len(callbacks) == 0 {
		delete(p.subscriptions, uri)
	}
	return nil
}

// Subscribers returns the callback ids registered for uri.
func (p *Provider) Subscribers(uri string) []string {
	p.subMux.Lock()
	defer p.subMux.Unlock()
	var result []string
	for callbackId := range p.subscriptions[uri] {
		result = append(result, callbackId)
	}
	return result
}

// IsSensitive reports whether the uri path matches a configured sensitive
// prefix or extension; the gate forces elevated consent for such resources.
func (p *Provider) IsSensitive(uri string) bool {
	_, relative, err := p.resolve(uri)
	if err != nil {
		return false
	}
	relative = strings.ToLower(relative)
	for _, prefix := range p.config.SensitivePrefixes {
		if strings.HasPrefix(relative, strings.ToLower(prefix)) {
			return true
		}
	}
	ext := filepath.Ext(relative)
	for _, sensitive := range p.config.SensitiveExtensions {
		if strings.EqualFold(ext, sensitive) {
			return true
		}
	}
	return false
}

func makeContent(uri string, data []byte, mimeType string) schema.ResourceContent {
	content := schema.ResourceContent{Uri: uri}
	if mimeType != "" {
		content.MimeType = &mimeType
	}
	if isBinary(data) {
		content.Blob = base64.StdEncoding.EncodeToString(data)
	} else {
		content.Text = string(data)
	}
	return content
}

func mimeTypeFor(name string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return mimeType
}

// isBinary returns true if data has non-printable ratio > 30%.
func isBinary(data []byte) bool {
	const maxBytes = 8000
	n := maxBytes
	if len(data) < n {
		n = len(data)
	}
	if n == 0 {
		return false
	}
	non := 0
	for i := 0; i < n; i++ {
		b := data[i]
		if (b < 32 || b > 126) && b != '\n' && b != '\r' && b != '\t' {
			non++
		}
	}
	return float64(non)/float64(n) > 0.3
}
