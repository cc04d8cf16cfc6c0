package xhr

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	proto "github.com/tarmac-project/protobuf-go/sdk/http"
	pb "google.golang.org/protobuf/proto"
)

// DefaultNamespace is the host call namespace used when Config.Namespace is empty.
const DefaultNamespace = "fnmock"

// Capability and function names used on the host call boundary.
const (
	Capability = "xhr"
	Function   = "fetch"
)

// Client performs fetches on behalf of handlers.
type Client interface {
	// Fetch issues a request to rawURL and returns the response.
	Fetch(rawURL string, opts Options) (*Response, error)
}

// Options mirrors the options object accepted by xhr.fetch.
type Options struct {
	// Method defaults to GET.
	Method string
	// Headers are sent as single-valued request headers.
	Headers map[string]string
	// Body is the raw request body.
	Body []byte
}

// Response is the result of a fetch.
type Response struct {
	// URL is the requested URL.
	URL string
	// Status is the numeric HTTP status code.
	Status int
	// StatusText is the HTTP status text (e.g., "OK").
	StatusText string
	// Headers holds response headers, keyed by canonical name.
	Headers http.Header
	// Body is the raw response payload.
	Body []byte
}

// OK reports whether Status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Config configures an HTTPClient.
type Config struct {
	// Namespace is the host call namespace. Defaults to DefaultNamespace.
	Namespace string
	// InsecureSkipVerify disables TLS verification on the host side.
	InsecureSkipVerify bool
	// HostCall overrides the host function used for requests. Defaults to a NetHost.
	HostCall func(string, string, string, []byte) ([]byte, error)
	// Timeout bounds requests executed by the default NetHost.
	Timeout time.Duration
}

var (
	// ErrInvalidURL indicates a malformed or unsupported URL.
	ErrInvalidURL = errors.New("invalid URL provided")

	// ErrInvalidMethod indicates an HTTP method that is not recognized.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrMarshalRequest wraps failures while encoding the request payload.
	ErrMarshalRequest = errors.New("failed to create request")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")

	// ErrHostCall wraps failures returned by the host function itself.
	ErrHostCall = errors.New("host call failed")

	// ErrHostError indicates the host reported a failed request.
	ErrHostError = errors.New("host returned an error")

	// ErrHostResponseInvalid indicates the host answered with a malformed response.
	ErrHostResponseInvalid = errors.New("host response invalid")
)

const (
	hostStatusOK       = int32(200)
	hostStatusPartial  = int32(206)
	hostStatusBadInput = int32(400)
	hostStatusMissing  = int32(404)
	hostStatusError    = int32(500)
)

// HTTPClient implements Client using host calls.
type HTTPClient struct {
	cfg      Config
	hostCall func(string, string, string, []byte) ([]byte, error)
}

var _ Client = (*HTTPClient)(nil)

// New creates an HTTPClient with the provided configuration.
func New(cfg Config) (*HTTPClient, error) {
	c := &HTTPClient{cfg: cfg}

	// Set default namespace if not provided
	if c.cfg.Namespace == "" {
		c.cfg.Namespace = DefaultNamespace
	}

	// Use a real network host unless one was provided
	if cfg.HostCall != nil {
		c.hostCall = cfg.HostCall
	} else {
		c.hostCall = NewNetHost(cfg.Timeout).HostCall
	}

	return c, nil
}

// Fetch validates the request, performs the host call and decodes the response.
func (c *HTTPClient) Fetch(rawURL string, opts Options) (*Response, error) {
	// Validate the URL
	u, err := url.Parse(rawURL)
	if err != nil || u == nil || u.Host == "" {
		return nil, ErrInvalidURL
	}

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !isValidMethod(method) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMethod, opts.Method)
	}

	// Create the Protobuf request
	req := &proto.HTTPClient{
		Method:   method,
		Url:      rawURL,
		Insecure: c.cfg.InsecureSkipVerify,
		Body:     opts.Body,
		Headers:  make(map[string]*proto.Header, len(opts.Headers)),
	}
	for k, v := range opts.Headers {
		req.Headers[k] = &proto.Header{Values: []string{v}}
	}

	b, err := pb.Marshal(req)
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	raw, err := c.hostCall(c.cfg.Namespace, Capability, Function, b)
	if err != nil {
		return nil, errors.Join(ErrHostCall, err)
	}

	var r proto.HTTPClientResponse
	if err := pb.Unmarshal(raw, &r); err != nil {
		return nil, errors.Join(ErrUnmarshalResponse, err)
	}

	status := r.GetStatus()
	if status == nil {
		return nil, ErrHostResponseInvalid
	}

	switch code := status.GetCode(); code {
	case hostStatusOK, hostStatusPartial:
	case hostStatusBadInput, hostStatusMissing, hostStatusError:
		detail := fmt.Sprintf("host status %d", code)
		if msg := status.GetStatus(); msg != "" {
			detail = fmt.Sprintf("%s: %s", detail, msg)
		}
		return nil, errors.Join(ErrHostError, errors.New(detail))
	default:
		return nil, errors.Join(
			ErrHostResponseInvalid,
			fmt.Errorf("unexpected host status code %d", code),
		)
	}

	out := &Response{
		URL:        rawURL,
		Status:     int(r.GetCode()),
		StatusText: http.StatusText(int(r.GetCode())),
		Headers:    make(http.Header),
		Body:       r.GetBody(),
	}
	for name, header := range r.GetHeaders() {
		out.Headers[http.CanonicalHeaderKey(name)] = header.GetValues()
	}

	return out, nil
}

func isValidMethod(method string) bool {
	switch method {
	case http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodConnect,
		http.MethodOptions,
		http.MethodTrace:
		return true
	default:
		return false
	}
}
