package octavia

import (
	"net/url"
	"strings"

	domainerrors "github.com/octavia-db/octavia-go/errors"
)

const (
	// DefaultPath is the endpoint path used when Options.Path is empty.
	DefaultPath = "/octavia-db"

	// HeaderContentType and HeaderToken are the headers every call carries.
	HeaderContentType = "Content-Type"
	HeaderToken       = "token"

	// HeaderRequestID correlates a call with server logs.
	HeaderRequestID = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// Options holds the caller-supplied connection settings.
type Options struct {
	// URI is the scheme and host of the Octavia service, e.g. https://db.example.com.
	URI string
	// Path is appended to URI. Defaults to DefaultPath.
	Path string
	// Token is sent in the "token" header.
	Token string
	// Database and Password are sent in every envelope.
	Database string
	Password string
	// Headers are merged over the default headers; entries here win.
	Headers map[string]string
}

// Config is the resolved, read-only connection configuration.
type Config struct {
	endpoint string
	token    string
	database string
	password string
	headers  map[string]string
}

// NewConfig validates opts and resolves the effective endpoint and headers.
func NewConfig(opts Options) (Config, error) {
	uri := strings.TrimRight(strings.TrimSpace(opts.URI), "/")
	if uri == "" {
		return Config{}, domainerrors.NewValidationError("uri is required", "")
	}

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	endpoint := uri + path
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return Config{}, domainerrors.NewConfigurationError("invalid endpoint", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, domainerrors.NewValidationError("uri must include scheme and host", uri)
	}

	headers := map[string]string{
		HeaderContentType: contentTypeJSON,
		HeaderToken:       opts.Token,
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return Config{
		endpoint: endpoint,
		token:    opts.Token,
		database: opts.Database,
		password: opts.Password,
		headers:  headers,
	}, nil
}

// Endpoint returns the URI every envelope is posted to.
func (c Config) Endpoint() string {
	return c.endpoint
}

// Database returns the database name sent with every envelope.
func (c Config) Database() string {
	return c.database
}

// Token returns the auth token.
func (c Config) Token() string {
	return c.token
}

// Headers returns a copy of the headers sent with every call.
func (c Config) Headers() map[string]string {
	return copyHeaders(c.headers)
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.headers = copyHeaders(c.headers)
	return c
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
