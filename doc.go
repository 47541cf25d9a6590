// Package toolgate provides a consent-gated RPC core exposing named tools and
// URI addressed resources.
//
// The server package dispatches request envelopes, negotiates capabilities and
// routes operations through the consent gate to the tool registry and the
// resource providers. The resource package owns the cache, compression engine
// and chunked streaming; the consent package decides the tier an operation
// requires and whether a caller holds it.
package toolgate
