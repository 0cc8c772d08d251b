package checks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry holds all available checks and provides lookup functionality.
// It is thread-safe and supports registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	// byCategory provides fast lookup by category.
	byCategory map[Category][]*Tool
}

// NewRegistry creates a new empty check registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]*Tool),
		byCategory: make(map[Category][]*Tool),
	}
}

// Register adds a check to the registry.
// Returns an error if a check with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid check: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrCheckAlreadyRegistered, tool.Name)
	}

	if tool.Priority == 0 {
		tool.Priority = 50
	}

	r.tools[tool.Name] = tool
	r.byCategory[tool.Category] = append(r.byCategory[tool.Category], tool)
	return nil
}

// MustRegister registers a check and panics on error.
// Use this for static registration at startup.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register check %s: %v", tool.Name, err))
	}
}

// Get returns a check by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a check with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// GetByCategory returns all checks in a category, sorted by priority
// (descending).
func (r *Registry) GetByCategory(category Category) []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, len(r.byCategory[category]))
	copy(tools, r.byCategory[category])

	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Priority > tools[j].Priority
	})

	return tools
}

// All returns every registered check sorted by name.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns all registered check names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered checks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs a check by name against the given input.
// Returns ErrCheckNotFound if the check doesn't exist.
func (r *Registry) Execute(ctx context.Context, name string, in Input) (*ExecuteResult, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckNotFound, name)
	}
	return r.ExecuteTool(ctx, tool, in)
}

// ExecuteTool runs a specific check against the given input.
func (r *Registry) ExecuteTool(ctx context.Context, tool *Tool, in Input) (*ExecuteResult, error) {
	start := time.Now()

	if err := in.Alert.Validate(); err != nil {
		return &ExecuteResult{
			CheckName:  tool.Name,
			Err:        err,
			DurationMs: time.Since(start).Milliseconds(),
		}, err
	}

	result, err := tool.Execute(ctx, in)

	return &ExecuteResult{
		CheckName:  tool.Name,
		Result:     result,
		Err:        err,
		DurationMs: time.Since(start).Milliseconds(),
	}, err
}

// ExecuteAll runs every registered check sequentially and returns the
// results in name order. Individual check failures do not abort the run;
// the failed result carries the error.
func (r *Registry) ExecuteAll(ctx context.Context, in Input) []*ExecuteResult {
	tools := r.All()
	results := make([]*ExecuteResult, 0, len(tools))
	for _, tool := range tools {
		if ctx.Err() != nil {
			break
		}
		res, _ := r.ExecuteTool(ctx, tool, in)
		results = append(results, res)
	}
	return results
}
