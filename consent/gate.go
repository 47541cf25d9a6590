package consent

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/toolgate/toolgate/schema"
)

// DefaultMaxViolationsHistory bounds the violation log when not configured.
const DefaultMaxViolationsHistory = 100

// Violation records a denied operation for audit.
type Violation struct {
	Timestamp time.Time `json:"timestamp"`
	ClientID  string    `json:"clientId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Operation string    `json:"operation"`
}

// Config controls gate behavior; Roles maps a role name to the highest tier it
// may exercise.
type Config struct {
	MaxViolationsHistory int
	Roles                map[string]Tier
}

// Gate decides the tier an operation requires and whether a caller holds it.
// The decision is stateless per call; only the violation history persists.
type Gate struct {
	roles      map[string]Tier
	maxHistory int
	logger     *slog.Logger

	mux        sync.Mutex
	violations []Violation
	now        func() time.Time
}

// Option customizes a Gate.
type Option func(*Gate)

// WithLogger sets the gate logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate creates a Gate from config.
func NewGate(config *Config, options ...Option) *Gate {
	gate := &Gate{
		roles:      map[string]Tier{},
		maxHistory: DefaultMaxViolationsHistory,
		logger:     slog.Default(),
		now:        time.Now,
	}
	if config != nil {
		if config.MaxViolationsHistory > 0 {
			gate.maxHistory = config.MaxViolationsHistory
		}
		for role, tier := range config.Roles {
			gate.roles[role] = tier
		}
	}
	for _, option := range options {
		option(gate)
	}
	return gate
}

// RequiredTier resolves the consent tier a method requires, prefix matched by
// method namespace. Dangerous tools and sensitive resources are escalated by
// the dispatcher on top of this nominal mapping.
func (g *Gate) RequiredTier(method string) Tier {
	switch {
	case method == schema.MethodPing:
		return TierReadOnly
	case strings.HasPrefix(method, "capabilities/"):
		return TierReadOnly
	case method == schema.MethodToolsCall:
		return TierBasic
	case strings.HasPrefix(method, "tools/"):
		return TierReadOnly
	case method == schema.MethodSubscribe, method == schema.MethodUnsubscribe:
		return TierBasic
	case strings.HasPrefix(method, schema.MethodResourcesWrite):
		return TierElevated
	case strings.HasPrefix(method, "resources/"):
		return TierReadOnly
	}
	g.logger.Warn("unrecognized method, requiring full consent", "method", method)
	return TierFull
}

// Verify checks consent first, then role authorization. A consent shortfall is
// a protocol-level denial; an authorization shortfall additionally appends a
// violation record. Either outcome terminates only the single request.
func (g *Gate) Verify(caller *Caller, method string, required Tier) *jsonrpc.Error {
	if caller == nil {
		return nil
	}
	if caller.Consent < required {
		g.logger.Info("consent denied",
			"client", caller.ClientID,
			"method", method,
			"required", required.String(),
			"granted", caller.Consent.String())
		return schema.NewConsentDenied(method, "requires "+required.String()+" consent, caller granted "+caller.Consent.String())
	}
	if ceiling := g.roleCeiling(caller.Role); ceiling < required {
		g.record(Violation{
			Timestamp: g.now(),
			ClientID:  caller.ClientID,
			Username:  caller.Username,
			Role:      caller.Role,
			Operation: method,
		})
		g.logger.Warn("authorization denied",
			"client", caller.ClientID,
			"role", caller.Role,
			"method", method,
			"required", required.String())
		return schema.NewUnauthorized(method, "role "+caller.Role+" may not perform "+required.String()+" operations")
	}
	return nil
}

func (g *Gate) roleCeiling(role string) Tier {
	if tier, ok := g.roles[role]; ok {
		return tier
	}
	return TierReadOnly
}

func (g *Gate) record(violation Violation) {
	g.mux.Lock()
	defer g.mux.Unlock()
	g.violations = append(g.violations, violation)
	if overflow := len(g.violations) - g.maxHistory; overflow > 0 {
		// slide down in place so evicted records are not pinned by the
		// backing array
		kept := copy(g.violations, g.violations[overflow:])
		for i := kept; i < len(g.violations); i++ {
			g.violations[i] = Violation{}
		}
		g.violations = g.violations[:kept]
	}
}

// Violations returns a snapshot of the recorded violations, oldest first.
func (g *Gate) Violations() []Violation {
	g.mux.Lock()
	defer g.mux.Unlock()
	result := make([]Violation, len(g.violations))
	copy(result, g.violations)
	return result
}
