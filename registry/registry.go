package registry

import (
	"sync"
)

// Registry owns an ordered, threadsafe set of tools and resources.
type Registry struct {
	mu        sync.RWMutex
	tools     []*ToolRegistration
	toolIdx   map[string]int
	resources []*ResourceRegistration
	resIdx    map[string]int

	toolsChanged     ChangeNotifier
	resourcesChanged ChangeNotifier
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		toolIdx: make(map[string]int),
		resIdx:  make(map[string]int),
	}
}

// AddTool registers t. A tool with the same name is replaced in place, keeping
// its original position. It reports whether the name was new.
func (r *Registry) AddTool(t *ToolRegistration) bool {
	if t == nil {
		return false
	}
	r.mu.Lock()
	i, exists := r.toolIdx[t.name]
	if exists {
		r.tools[i] = t
	} else {
		r.toolIdx[t.name] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	r.mu.Unlock()
	r.toolsChanged.Notify()
	return !exists
}

// RemoveTool removes a tool by name. Returns true if removed.
func (r *Registry) RemoveTool(name string) bool {
	r.mu.Lock()
	i, ok := r.toolIdx[name]
	if ok {
		r.tools = append(r.tools[:i], r.tools[i+1:]...)
		delete(r.toolIdx, name)
		for j := i; j < len(r.tools); j++ {
			r.toolIdx[r.tools[j].name] = j
		}
	}
	r.mu.Unlock()
	if ok {
		r.toolsChanged.Notify()
	}
	return ok
}

// Tool looks up a tool by name.
func (r *Registry) Tool(name string) (*ToolRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.toolIdx[name]
	if !ok {
		return nil, false
	}
	return r.tools[i], true
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*ToolRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ToolRegistration, len(r.tools))
	copy(out, r.tools)
	return out
}

// ToolCount returns the number of registered tools.
func (r *Registry) ToolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// AddResource registers res under its pattern, replacing any previous
// registration of the same pattern in place.
func (r *Registry) AddResource(res *ResourceRegistration) bool {
	if res == nil {
		return false
	}
	r.mu.Lock()
	i, exists := r.resIdx[res.pattern]
	if exists {
		r.resources[i] = res
	} else {
		r.resIdx[res.pattern] = len(r.resources)
		r.resources = append(r.resources, res)
	}
	r.mu.Unlock()
	r.resourcesChanged.Notify()
	return !exists
}

// Resource looks up a resource by its exact pattern.
func (r *Registry) Resource(pattern string) (*ResourceRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.resIdx[pattern]
	if !ok {
		return nil, false
	}
	return r.resources[i], true
}

// Resources returns the registered resources in registration order.
func (r *Registry) Resources() []*ResourceRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ResourceRegistration, len(r.resources))
	copy(out, r.resources)
	return out
}

// ResourceCount returns the number of registered resources.
func (r *Registry) ResourceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

// MatchResource finds the resource addressing uri. Concrete patterns win over
// templates; otherwise the earliest registration wins.
func (r *Registry) MatchResource(uri string) (*ResourceRegistration, map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.resIdx[uri]; ok && !r.resources[i].IsTemplate() {
		return r.resources[i], map[string]string{}, true
	}
	for _, res := range r.resources {
		if !res.IsTemplate() {
			continue
		}
		if vars, ok := res.Match(uri); ok {
			return res, vars, true
		}
	}
	return nil, nil, false
}

// ToolsChanged returns a subscriber signalled on every tool list change.
func (r *Registry) ToolsChanged() *ChangeNotifier { return &r.toolsChanged }

// ResourcesChanged returns a subscriber signalled on every resource list
// change.
func (r *Registry) ResourcesChanged() *ChangeNotifier { return &r.resourcesChanged }

// Close stops change notifications.
func (r *Registry) Close() {
	r.toolsChanged.Close()
	r.resourcesChanged.Close()
}
