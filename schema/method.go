package schema

const (
	MethodPing                  = "ping"
	MethodCapabilitiesList      = "capabilities/list"
	MethodCapabilitiesNegotiate = "capabilities/negotiate"
	MethodToolsList             = "tools/list"
	MethodToolsGet              = "tools/get"
	MethodToolsCall             = "tools/call"
	MethodResourcesList         = "resources/list"
	MethodResourcesRead         = "resources/read"
	MethodResourcesReadRange    = "resources/readRange"
	MethodResourcesWrite        = "resources/write"
	MethodStreamOpen            = "resources/stream/open"
	MethodStreamNext            = "resources/stream/next"
	MethodStreamClose           = "resources/stream/close"
	MethodSubscribe             = "resources/subscribe"
	MethodUnsubscribe           = "resources/unsubscribe"
)
