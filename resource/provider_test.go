package resource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestProvider(t *testing.T, config *Config) (*Provider, string) {
	t.Helper()
	baseDir := t.TempDir()
	if config == nil {
		config = &Config{}
	}
	config.Name = "file"
	config.BaseURL = baseDir
	return New(config, nil), baseDir
}

func writeTestFile(t *testing.T, baseDir, name string, content []byte) {
	t.Helper()
	location := filepath.Join(baseDir, name)
	assert.NoError(t, os.MkdirAll(filepath.Dir(location), 0o755))
	assert.NoError(t, os.WriteFile(location, content, 0o644))
}

func TestProviderList(t *testing.T) {
	provider, baseDir := newTestProvider(t, nil)
	writeTestFile(t, baseDir, "docs/a.txt", []byte("aaaa"))
	writeTestFile(t, baseDir, "docs/b.txt", []byte("bb"))

	resources, err := provider.List(context.Background(), "resource://file/docs")
	assert.NoError(t, err)
	names := map[string]int64{}
	for _, item := range resources {
		if item.Kind == "file" {
			names[item.Name] = item.Size
		}
	}
	assert.Equal(t, int64(4), names["a.txt"])
	assert.Equal(t, int64(2), names["b.txt"])
}

func TestProviderListMissingPath(t *testing.T) {
	provider, _ := newTestProvider(t, nil)
	_, err := provider.List(context.Background(), "resource://file/absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProviderReadUsesCache(t *testing.T) {
	provider, baseDir := newTestProvider(t, &Config{
		CacheEnabled: true,
		Cache:        CacheConfig{MaxSize: 2, TTL: 300 * time.Second, MaxSizePerResource: 1024},
	})
	writeTestFile(t, baseDir, "a.txt", []byte("0123456789"))

	first, err := provider.Read(context.Background(), "resource://file/a.txt", false)
	assert.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "0123456789", first.Content.Text)

	// removing the backing file proves the second read never hits the store
	assert.NoError(t, os.Remove(filepath.Join(baseDir, "a.txt")))

	second, err := provider.Read(context.Background(), "resource://file/a.txt", false)
	assert.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "0123456789", second.Content.Text)
}

func TestProviderReadBypassSkipsCache(t *testing.T) {
	provider, baseDir := newTestProvider(t, &Config{
		CacheEnabled: true,
		Cache:        CacheConfig{MaxSize: 2, TTL: 300 * time.Second, MaxSizePerResource: 1024},
	})
	writeTestFile(t, baseDir, "a.txt", []byte("v1"))

	result, err := provider.Read(context.Background(), "resource://file/a.txt", true)
	assert.NoError(t, err)
	assert.Equal(t, "v1", result.Content.Text)
	assert.Equal(t, 0, provider.cache.Len(), "bypass never populates the cache")

	writeTestFile(t, baseDir, "a.txt", []byte("v2"))
	result, err = provider.Read(context.Background(), "resource://file/a.txt", true)
	assert.NoError(t, err)
	assert.Equal(t, "v2", result.Content.Text, "bypass never reads the cache")
}

func TestProviderReadMissing(t *testing.T) {
	provider, _ := newTestProvider(t, nil)
	_, err := provider.Read(context.Background(), "resource://file/absent.txt", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProviderReadWrongProvider(t *testing.T) {
	provider, _ := newTestProvider(t, nil)
	_, err := provider.Read(context.Background(), "resource://other/a.txt", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProviderReadRange(t *testing.T) {
	provider, baseDir := newTestProvider(t, &Config{
		CacheEnabled: true,
		Cache:        CacheConfig{MaxSize: 2, TTL: 300 * time.Second, MaxSizePerResource: 1024},
	})
	writeTestFile(t, baseDir, "a.txt", []byte("0123456789"))

	result, err := provider.ReadRange(context.Background(), "resource://file/a.txt", "2-5")
	assert.NoError(t, err)
	assert.Equal(t, "2345", result.Content.Text)
	assert.Equal(t, int64(2), result.Range.Start)
	assert.Equal(t, int64(6), result.Range.End)
	assert.Equal(t, int64(10), result.Range.Total)
	assert.Equal(t, 0, provider.cache.Len(), "ranged reads bypass the cache")

	_, err = provider.ReadRange(context.Background(), "resource://file/a.txt", "oops")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestProviderSubscriptions(t *testing.T) {
	provider, _ := newTestProvider(t, nil)
	uri := "resource://file/a.txt"

	provider.Subscribe(uri, "cb-1")
	provider.Subscribe(uri, "cb-1") // duplicate is a no-op success
	provider.Subscribe(uri, "cb-2")
	assert.ElementsMatch(t, []string{"cb-1", "cb-2"}, provider.Subscribers(uri))

	assert.NoError(t, provider.Unsubscribe(uri, "cb-1"))
	assert.ErrorIs(t, provider.Unsubscribe(uri, "cb-1"), ErrNotSubscribed)
	assert.ErrorIs(t, provider.Unsubscribe("resource://file/other.txt", "cb-2"), ErrNotSubscribed)
}

func TestProviderIsSensitive(t *testing.T) {
	provider, _ := newTestProvider(t, &Config{
		SensitivePrefixes:   []string{"secrets/", ".ssh/"},
		SensitiveExtensions: []string{".pem", ".key"},
	})
	assert.True(t, provider.IsSensitive("resource://file/secrets/db.txt"))
	assert.True(t, provider.IsSensitive("resource://file/.ssh/id_rsa"))
	assert.True(t, provider.IsSensitive("resource://file/certs/server.pem"))
	assert.True(t, provider.IsSensitive("resource://file/certs/server.KEY"))
	assert.False(t, provider.IsSensitive("resource://file/docs/readme.md"))
	assert.False(t, provider.IsSensitive("resource://other/secrets/db.txt"))
}

func TestProviderIsSensitiveNonCanonicalPath(t *testing.T) {
	provider, _ := newTestProvider(t, &Config{
		SensitivePrefixes: []string{"secrets/"},
	})
	// every spelling of a sensitive location classifies the same way
	assert.True(t, provider.IsSensitive("resource://file/./secrets/db.txt"))
	assert.True(t, provider.IsSensitive("resource://file/x/../secrets/db.txt"))
	assert.True(t, provider.IsSensitive("resource://file/secrets/./db.txt"))
	assert.True(t, provider.IsSensitive("resource://file//secrets/db.txt"))
	assert.False(t, provider.IsSensitive("resource://file/secrets/../docs/a.txt"))
}

func TestProviderRejectsBaseEscape(t *testing.T) {
	provider, baseDir := newTestProvider(t, nil)
	writeTestFile(t, baseDir, "a.txt", []byte("inside"))

	for _, uri := range []string{
		"resource://file/../outside.txt",
		"resource://file/a/../../outside.txt",
		"resource://file/..",
	} {
		_, err := provider.Read(context.Background(), uri, false)
		assert.ErrorIs(t, err, ErrNotFound, uri)
	}

	// canonical spellings of an inside path still resolve
	result, err := provider.Read(context.Background(), "resource://file/x/../a.txt", false)
	assert.NoError(t, err)
	assert.Equal(t, "inside", result.Content.Text)
}
