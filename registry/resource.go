package registry

import (
	"context"
	"fmt"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/yosida95/uritemplate/v3"
)

// ReadFunc produces the contents of a resource. vars holds the values bound
// to the pattern's placeholders; it is empty for concrete URIs.
type ReadFunc func(ctx context.Context, uri string, vars map[string]string) (any, error)

// ResourceRegistration describes a registered resource.
type ResourceRegistration struct {
	pattern     string
	name        string
	description string
	mimeType    string
	tpl         *uritemplate.Template
	read        ReadFunc
}

// ResourceOption configures a ResourceRegistration.
type ResourceOption func(*ResourceRegistration)

// WithResourceName sets the listing name. Defaults to the pattern.
func WithResourceName(name string) ResourceOption {
	return func(r *ResourceRegistration) { r.name = name }
}

// WithResourceDescription sets the listing description.
func WithResourceDescription(desc string) ResourceOption {
	return func(r *ResourceRegistration) { r.description = desc }
}

// WithMIMEType sets the MIME type reported for the resource contents.
func WithMIMEType(mime string) ResourceOption {
	return func(r *ResourceRegistration) { r.mimeType = mime }
}

// NewResource registers a resource under pattern, which is either a concrete
// URI or an RFC 6570 template such as "task://{task_id}". It panics if the
// pattern does not parse.
func NewResource(pattern string, fn ReadFunc, opts ...ResourceOption) *ResourceRegistration {
	r, err := ParseResource(pattern, fn, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseResource is like NewResource but returns an error instead of
// panicking.
func ParseResource(pattern string, fn ReadFunc, opts ...ResourceOption) (*ResourceRegistration, error) {
	if pattern == "" {
		return nil, fmt.Errorf("registry: empty resource pattern")
	}
	if fn == nil {
		return nil, fmt.Errorf("registry: nil read function for %q", pattern)
	}
	tpl, err := uritemplate.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("registry: invalid resource pattern %q: %w", pattern, err)
	}
	r := &ResourceRegistration{
		pattern:  pattern,
		name:     pattern,
		mimeType: "text/plain",
		tpl:      tpl,
		read:     fn,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *ResourceRegistration) Pattern() string     { return r.pattern }
func (r *ResourceRegistration) Name() string        { return r.name }
func (r *ResourceRegistration) Description() string { return r.description }
func (r *ResourceRegistration) MIMEType() string    { return r.mimeType }

// IsTemplate reports whether the pattern contains placeholders.
func (r *ResourceRegistration) IsTemplate() bool {
	return len(r.tpl.Varnames()) > 0
}

// Match reports whether uri is addressed by this resource and returns the
// placeholder bindings.
func (r *ResourceRegistration) Match(uri string) (map[string]string, bool) {
	if !r.IsTemplate() {
		if uri == r.pattern {
			return map[string]string{}, true
		}
		return nil, false
	}
	values := r.tpl.Match(uri)
	if values == nil {
		return nil, false
	}
	vars := make(map[string]string, len(r.tpl.Varnames()))
	for _, name := range r.tpl.Varnames() {
		vars[name] = values.Get(name).String()
	}
	return vars, true
}

// Read invokes the reader.
func (r *ResourceRegistration) Read(ctx context.Context, uri string, vars map[string]string) (any, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	return r.read(ctx, uri, vars)
}

// Resource returns the listing entry for a concrete resource.
func (r *ResourceRegistration) Resource() mcp.Resource {
	return mcp.Resource{URI: r.pattern, Name: r.name, Description: r.description, MimeType: r.mimeType}
}

// Template returns the listing entry for a templated resource.
func (r *ResourceRegistration) Template() mcp.ResourceTemplate {
	return mcp.ResourceTemplate{URITemplate: r.pattern, Name: r.name, Description: r.description, MimeType: r.mimeType}
}
