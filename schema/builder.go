package schema

// Builder declares a Contract parameter by parameter.
type Builder struct {
	params   []Param
	required []string
	desc     string
}

// ParamOption configures a declared parameter.
type ParamOption func(*paramConfig)

type paramConfig struct {
	required bool
	desc     string
}

// Required marks a parameter as required.
func Required() ParamOption { return func(c *paramConfig) { c.required = true } }

// Describe attaches a description to a parameter.
func Describe(desc string) ParamOption { return func(c *paramConfig) { c.desc = desc } }

// Build starts a new Builder.
func Build() *Builder { return &Builder{} }

// Param declares a parameter of the given type.
func (b *Builder) Param(name string, t Type, opts ...ParamOption) *Builder {
	var cfg paramConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	b.params = append(b.params, Param{Name: name, Type: t, Description: cfg.desc})
	if cfg.required {
		b.required = append(b.required, name)
	}
	return b
}

func (b *Builder) String(name string, opts ...ParamOption) *Builder {
	return b.Param(name, TypeString, opts...)
}

func (b *Builder) Integer(name string, opts ...ParamOption) *Builder {
	return b.Param(name, TypeInteger, opts...)
}

func (b *Builder) Number(name string, opts ...ParamOption) *Builder {
	return b.Param(name, TypeNumber, opts...)
}

func (b *Builder) Boolean(name string, opts ...ParamOption) *Builder {
	return b.Param(name, TypeBoolean, opts...)
}

func (b *Builder) Array(name string, opts ...ParamOption) *Builder {
	return b.Param(name, TypeArray, opts...)
}

func (b *Builder) Object(name string, opts ...ParamOption) *Builder {
	return b.Param(name, TypeObject, opts...)
}

// Description sets the contract level description.
func (b *Builder) Description(desc string) *Builder {
	b.desc = desc
	return b
}

// Contract finalizes the declared parameters. It panics on duplicate names.
func (b *Builder) Contract() Contract {
	c := NewContract(b.params, b.required...)
	c.Description = b.desc
	return c
}
