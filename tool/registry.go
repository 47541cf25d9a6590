package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/toolgate/toolgate/schema"
)

// ErrUnknownTool marks an execution or lookup of an unregistered tool.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes a tool invocation.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// ExecutionError wraps a failure raised by a tool handler; the original
// message is preserved for the caller.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

type entry struct {
	metadata schema.Tool
	handler  Handler
}

// Registry holds the registered tools. It is constructed explicitly and passed
// to the server at startup; there is no process-wide registry.
type Registry struct {
	mux   sync.RWMutex
	tools map[string]*entry
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]*entry{}}
}

// Register adds a tool under metadata.Name.
func (r *Registry) Register(metadata schema.Tool, handler Handler) error {
	if metadata.Name == "" {
		return errors.New("tool name is required")
	}
	if handler == nil {
		return fmt.Errorf("tool %q has no handler", metadata.Name)
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	if _, ok := r.tools[metadata.Name]; ok {
		return fmt.Errorf("tool %q already registered", metadata.Name)
	}
	r.tools[metadata.Name] = &entry{metadata: metadata, handler: handler}
	r.order = append(r.order, metadata.Name)
	return nil
}

// List returns tool metadata in registration order.
func (r *Registry) List() []schema.Tool {
	r.mux.RLock()
	defer r.mux.RUnlock()
	result := make([]schema.Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name].metadata)
	}
	return result
}

// Get returns metadata for a single tool.
func (r *Registry) Get(name string) (schema.Tool, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	if e, ok := r.tools[name]; ok {
		return e.metadata, true
	}
	return schema.Tool{}, false
}

// Execute runs the named tool; handler failures surface as *ExecutionError.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	r.mux.RLock()
	e, ok := r.tools[name]
	r.mux.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	result, err := e.handler(ctx, args)
	if err != nil {
		return nil, &ExecutionError{Tool: name, Err: err}
	}
	return result, nil
}
