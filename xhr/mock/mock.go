package mock

import (
	"net/http"
	"strings"

	"github.com/fnmock/fnmock/xhr"
)

// Client implements xhr.Client with configurable responses and call recording.
type Client struct {
	responses map[string]*Response

	// DefaultResponse is returned when no method/URL-specific response exists.
	DefaultResponse *Response

	// Calls records each fetch observed by the mock.
	Calls []Call
}

// Response describes a synthetic fetch response.
type Response struct {
	// Status is the HTTP status code to return.
	Status int
	// Body is the raw payload returned to callers.
	Body []byte
	// Headers holds headers to include in the response.
	Headers http.Header
	// Error, when set, is returned instead of a response.
	Error error
}

// Call captures a single fetch issued through the mock.
type Call struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Config controls construction of a Client.
type Config struct {
	// DefaultResponse is used when no specific response has been configured.
	DefaultResponse *Response
}

// New creates a mock fetch client.
func New(cfg Config) *Client {
	def := cfg.DefaultResponse
	if def == nil {
		def = &Response{
			Status: http.StatusOK,
			Body:   []byte(`{"status":"success"}`),
		}
	}
	if def.Headers == nil {
		def.Headers = make(http.Header)
	}

	return &Client{
		responses:       make(map[string]*Response),
		DefaultResponse: def,
		Calls:           []Call{},
	}
}

var _ xhr.Client = (*Client)(nil)

func key(method, url string) string {
	if method == "" {
		method = http.MethodGet
	}
	return strings.ToUpper(method) + " " + url
}

// Fetch records the call and returns the configured response.
func (c *Client) Fetch(url string, opts xhr.Options) (*xhr.Response, error) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	c.Calls = append(c.Calls, Call{
		Method:  method,
		URL:     url,
		Headers: opts.Headers,
		Body:    append([]byte(nil), opts.Body...),
	})

	r, ok := c.responses[key(method, url)]
	if !ok {
		r = c.DefaultResponse
	}
	if r.Error != nil {
		return nil, r.Error
	}

	out := &xhr.Response{
		URL:        url,
		Status:     r.Status,
		StatusText: http.StatusText(r.Status),
		Headers:    make(http.Header, len(r.Headers)),
		Body:       append([]byte(nil), r.Body...),
	}
	for k, values := range r.Headers {
		for _, v := range values {
			out.Headers.Add(k, v)
		}
	}
	return out, nil
}

// On starts configuration of a response for a method and URL.
func (c *Client) On(method, url string) *ResponseBuilder {
	return &ResponseBuilder{client: c, key: key(method, url)}
}

// ResponseBuilder configures the response for one method and URL.
type ResponseBuilder struct {
	client *Client
	key    string
}

// Return sets the response for the configured method and URL.
func (b *ResponseBuilder) Return(r *Response) *Client {
	if r.Headers == nil {
		r.Headers = make(http.Header)
	}
	b.client.responses[b.key] = r
	return b.client
}

// ReturnError makes the configured method and URL fail with err.
func (b *ResponseBuilder) ReturnError(err error) *Client {
	b.client.responses[b.key] = &Response{Error: err}
	return b.client
}
