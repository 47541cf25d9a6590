package schema

// Capability names negotiated between client and server.
const (
	CapabilityTools             = "tools"
	CapabilityResources         = "resources"
	CapabilitySubscriptions     = "subscriptions"
	CapabilityConsent           = "consent"
	CapabilityAuthorization     = "authorization"
	CapabilityBatch             = "batch"
	CapabilityProgress          = "progress"
	CapabilityResourceStreaming = "resource_streaming"
	CapabilityResourceCaching   = "resource_caching"
)

// Capabilities is a feature flag set declared by either side of a session.
type Capabilities map[string]bool

// KnownCapabilities lists every capability this server understands.
var KnownCapabilities = []string{
	CapabilityTools,
	CapabilityResources,
	CapabilitySubscriptions,
	CapabilityConsent,
	CapabilityAuthorization,
	CapabilityBatch,
	CapabilityProgress,
	CapabilityResourceStreaming,
	CapabilityResourceCaching,
}

// Validate checks the mandatory keys and returns any unknown ones; unknown keys
// are tolerated, the caller decides whether to log them.
func (c Capabilities) Validate() (unknown []string, err error) {
	for _, required := range []string{CapabilityTools, CapabilityResources} {
		if _, ok := c[required]; !ok {
			return nil, &MissingCapabilityError{Name: required}
		}
	}
	known := make(map[string]bool, len(KnownCapabilities))
	for _, name := range KnownCapabilities {
		known[name] = true
	}
	for name := range c {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown, nil
}

// Negotiate computes the session capability set as the boolean AND of the
// server and client declarations; keys absent on the client side count as false.
func (c Capabilities) Negotiate(client Capabilities) Capabilities {
	result := make(Capabilities, len(c))
	for name, enabled := range c {
		result[name] = enabled && client[name]
	}
	return result
}

// Clone returns a copy of the capability set.
func (c Capabilities) Clone() Capabilities {
	result := make(Capabilities, len(c))
	for name, enabled := range c {
		result[name] = enabled
	}
	return result
}

// MissingCapabilityError indicates a mandatory capability key was absent.
type MissingCapabilityError struct {
	Name string
}

func (e *MissingCapabilityError) Error() string {
	return "missing mandatory capability: " + e.Name
}
