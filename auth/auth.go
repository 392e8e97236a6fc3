package auth

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
)

// Provider yields the headers that authenticate an outbound request.
type Provider interface {
	Headers() (map[string]string, error)
	Validate() error
}

// Kind names a provider implementation.
type Kind string

const (
	KindAPIKey Kind = "api_key"
	KindBasic  Kind = "basic"
	KindToken  Kind = "token"
	KindNone   Kind = "none"
)

// Kinds lists the supported provider kinds.
func Kinds() []Kind { return []Kind{KindAPIKey, KindBasic, KindToken, KindNone} }

// Options carries the settings for every provider kind. Explicit values take
// precedence over their *Env counterparts.
type Options struct {
	APIKey       string
	APIKeyEnv    string
	HeaderName   string
	HeaderFormat string

	Username    string
	Password    string
	UsernameEnv string
	PasswordEnv string

	AccessToken  string
	RefreshToken string
	TokenEnv     string
	RefreshEnv   string
	TokenType    string

	// Lookup resolves environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

func (o Options) resolve(value, env string) string {
	if value != "" || env == "" {
		return value
	}
	lookup := o.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, _ := lookup(env)
	return v
}

// New constructs the provider named by kind.
func New(kind Kind, opts Options) (Provider, error) {
	switch kind {
	case KindAPIKey:
		return NewAPIKey(opts)
	case KindBasic:
		return NewBasic(opts)
	case KindToken:
		return NewToken(opts)
	case KindNone, "":
		return None{}, nil
	}
	return nil, mcperr.Configuration(fmt.Sprintf("Unknown auth type: %s", kind), "auth_type").
		WithDetail("available", Kinds())
}

// APIKey sends a key in a single header, "Authorization: Bearer <key>" by
// default.
type APIKey struct {
	key          string
	headerName   string
	headerFormat string
}

// NewAPIKey builds an APIKey provider. HeaderFormat must contain one %s verb.
func NewAPIKey(opts Options) (*APIKey, error) {
	a := &APIKey{
		key:          opts.resolve(opts.APIKey, opts.APIKeyEnv),
		headerName:   opts.HeaderName,
		headerFormat: opts.HeaderFormat,
	}
	if a.headerName == "" {
		a.headerName = "Authorization"
	}
	if a.headerFormat == "" {
		a.headerFormat = "Bearer %s"
	}
	if a.key == "" {
		return nil, mcperr.New(mcperr.KindAuthMissing, "API key not found").WithDetail("env_var", opts.APIKeyEnv)
	}
	return a, nil
}

func (a *APIKey) Validate() error {
	if a.key == "" {
		return mcperr.New(mcperr.KindAuthMissing, "API key not found")
	}
	return nil
}

func (a *APIKey) Headers() (map[string]string, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return map[string]string{a.headerName: fmt.Sprintf(a.headerFormat, a.key)}, nil
}

// Basic sends HTTP basic credentials.
type Basic struct {
	username string
	password string
}

// NewBasic builds a Basic provider. Both username and password are required.
func NewBasic(opts Options) (*Basic, error) {
	b := &Basic{
		username: opts.resolve(opts.Username, opts.UsernameEnv),
		password: opts.resolve(opts.Password, opts.PasswordEnv),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Basic) Validate() error {
	if b.username == "" || b.password == "" {
		return mcperr.New(mcperr.KindAuthMissing, "Both username and password are required for basic auth")
	}
	return nil
}

func (b *Basic) Headers() (map[string]string, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	creds := base64.StdEncoding.EncodeToString([]byte(b.username + ":" + b.password))
	return map[string]string{"Authorization": "Basic " + creds}, nil
}

// None adds no headers.
type None struct{}

func (None) Headers() (map[string]string, error) { return map[string]string{}, nil }
func (None) Validate() error                     { return nil }

func trimScheme(token string) string {
	if i := strings.IndexByte(token, ' '); i > 0 {
		return token[i+1:]
	}
	return token
}
