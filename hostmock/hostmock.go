package hostmock

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedNamespace is returned when the namespace is not as expected.
	ErrUnexpectedNamespace = errors.New("unexpected namespace")

	// ErrUnexpectedCapability is returned when the capability is not as expected.
	ErrUnexpectedCapability = errors.New("unexpected capability")

	// ErrUnexpectedFunction is returned when the function is not as expected.
	ErrUnexpectedFunction = errors.New("unexpected function")

	// ErrOperationFailed is returned when Fail is set without a custom error.
	ErrOperationFailed = errors.New("operation failed")
)

// Config describes the host call a Mock expects and how it answers. Empty Expected*
// fields match anything.
type Config struct {
	// ExpectedNamespace is the namespace the capability client must use.
	ExpectedNamespace string

	// ExpectedCapability is the capability name the client must route to.
	ExpectedCapability string

	// ExpectedFunction is the function name within the capability.
	ExpectedFunction string

	// PayloadValidator inspects the serialized request.
	PayloadValidator func([]byte) error

	// Response returns canned response bytes.
	Response func() []byte

	// Responder computes the response from the request payload. It takes precedence
	// over Response.
	Responder func([]byte) ([]byte, error)

	// Error is returned when Fail is set.
	Error error

	// Fail makes every call fail with Error, or ErrOperationFailed when Error is nil.
	Fail bool
}

// Call records one host call received by a Mock.
type Call struct {
	Namespace  string
	Capability string
	Function   string
	Payload    []byte
}

// Mock is a scripted host that capability clients can call instead of a real one.
type Mock struct {
	cfg Config

	// Calls records every host call in order, including rejected ones.
	Calls []Call
}

// New creates a Mock from cfg.
func New(cfg Config) (*Mock, error) {
	return &Mock{cfg: cfg, Calls: []Call{}}, nil
}

// HostCall validates the routing and payload of a call and returns the scripted
// response.
func (m *Mock) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	m.Calls = append(m.Calls, Call{
		Namespace:  namespace,
		Capability: capability,
		Function:   function,
		Payload:    append([]byte(nil), payload...),
	})

	if m.cfg.Fail {
		if m.cfg.Error != nil {
			return nil, m.cfg.Error
		}
		return nil, ErrOperationFailed
	}

	if err := expect(ErrUnexpectedNamespace, "namespace", m.cfg.ExpectedNamespace, namespace); err != nil {
		return nil, err
	}
	if err := expect(ErrUnexpectedCapability, "capability", m.cfg.ExpectedCapability, capability); err != nil {
		return nil, err
	}
	if err := expect(ErrUnexpectedFunction, "function", m.cfg.ExpectedFunction, function); err != nil {
		return nil, err
	}

	if m.cfg.PayloadValidator != nil {
		if err := m.cfg.PayloadValidator(payload); err != nil {
			return nil, err
		}
	}

	if m.cfg.Responder != nil {
		return m.cfg.Responder(payload)
	}
	if m.cfg.Response != nil {
		return m.cfg.Response(), nil
	}
	return nil, nil
}

func expect(sentinel error, what, want, got string) error {
	if want == "" || want == got {
		return nil
	}
	return fmt.Errorf("%w: expected %s %s, got %s", sentinel, what, want, got)
}
