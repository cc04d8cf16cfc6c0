package pubnub

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fnmock/fnmock/deferred"
	"github.com/fnmock/fnmock/internal/jsval"
)

// Operation names recorded in Calls.
const (
	OpTime           = "time"
	OpPublish        = "publish"
	OpFire           = "fire"
	OpHistory        = "history"
	OpWhereNow       = "whereNow"
	OpHereNow        = "hereNow"
	OpGetState       = "getState"
	OpSetState       = "setState"
	OpGrant          = "grant"
	OpAddChannels    = "addChannels"
	OpRemoveChannels = "removeChannels"
)

var (
	// ErrObjectRequired is returned when publish is called without an argument.
	ErrObjectRequired = errors.New("Object is required")

	// ErrInvalidJSON is returned when a publish argument has no message.
	ErrInvalidJSON = errors.New("Invalid JSON")

	// ErrHistoryOptions is returned when history is called without an options object.
	ErrHistoryOptions = errors.New("Cannot read property 'extraOptions'")

	// ErrUUIDRequired is returned by presence operations called without a uuid.
	ErrUUIDRequired = errors.New("'uuid' is required")

	// ErrGrantTarget is returned when grant names neither channels nor channel groups.
	ErrGrantTarget = errors.New("Object with property 'channels' or 'channelGroups' is required")

	// ErrChannelGroupArgs is returned when a channel group operation lacks its target.
	ErrChannelGroupArgs = errors.New("'channels' and 'channelGroup' are required")
)

// PublishError is the rejection for a publish whose payload carries no message. Its
// message is the vendor status tuple [0, "Invalid JSON", timetoken].
type PublishError struct {
	Timetoken string
}

// Error implements error.
func (e *PublishError) Error() string {
	return jsval.String(e.Tuple())
}

// Unwrap returns ErrInvalidJSON.
func (e *PublishError) Unwrap() error { return ErrInvalidJSON }

// Tuple returns the vendor status tuple.
func (e *PublishError) Tuple() []any {
	return []any{int64(0), "Invalid JSON", e.Timetoken}
}

// Config configures a Mock.
type Config struct {
	// Clock supplies the current time for timetokens. Defaults to time.Now.
	Clock func() time.Time
}

// Call records an operation performed against the mock.
type Call struct {
	Op   string
	Args any
}

// Mock implements the messaging, presence and access-control surface.
type Mock struct {
	clock func() time.Time
	last  int64

	// Calls stores a history of operations for assertions.
	Calls []Call
}

// New creates a Mock.
func New(cfg Config) *Mock {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Mock{clock: clock, Calls: []Call{}}
}

// Timetoken returns the next timetoken.
func (m *Mock) Timetoken() int64 {
	tt := m.clock().UnixNano() / 100
	if tt <= m.last {
		tt = m.last + 1
	}
	m.last = tt
	return tt
}

// Time resolves the current timetoken.
func (m *Mock) Time() *deferred.Deferred {
	m.record(OpTime, nil)
	return deferred.Resolve(m.Timetoken())
}

// Publish resolves [1, "Sent", timetoken] when obj carries a message.
func (m *Mock) Publish(obj any) *deferred.Deferred {
	m.record(OpPublish, obj)
	return m.publish(OpPublish, obj)
}

// Fire behaves like Publish.
func (m *Mock) Fire(obj any) *deferred.Deferred {
	m.record(OpFire, obj)
	return m.publish(OpFire, obj)
}

func (m *Mock) publish(op string, obj any) *deferred.Deferred {
	if !jsval.Truthy(obj) {
		return deferred.Reject(fmt.Errorf("[%s] %w", op, ErrObjectRequired))
	}

	ts := strconv.FormatInt(m.Timetoken(), 10)

	o, ok := jsval.Object(obj)
	if !ok || !jsval.Truthy(o["message"]) {
		return deferred.Reject(&PublishError{Timetoken: ts})
	}

	return deferred.Resolve([]any{int64(1), "Sent", ts})
}

// History resolves a single empty message bracketed by the current timetoken.
func (m *Mock) History(obj any) *deferred.Deferred {
	m.record(OpHistory, obj)
	if !isObject(obj) {
		return deferred.Reject(ErrHistoryOptions)
	}

	tt := m.Timetoken()
	return deferred.Resolve(map[string]any{
		"messages":       []any{map[string]any{}},
		"startTimeToken": tt,
		"endTimeToken":   tt,
	})
}

// WhereNow resolves an empty channel list for obj.uuid.
func (m *Mock) WhereNow(obj any) *deferred.Deferred {
	m.record(OpWhereNow, obj)
	if _, err := requireUUID(OpWhereNow, obj); err != nil {
		return deferred.Reject(err)
	}

	return deferred.Resolve(map[string]any{
		"status":  int64(200),
		"message": "OK",
		"payload": map[string]any{
			"channels": []any{},
		},
		"service": "Presence",
	})
}

// HereNow resolves a fixed empty-occupancy payload.
func (m *Mock) HereNow(obj any) *deferred.Deferred {
	m.record(OpHereNow, obj)
	return deferred.Resolve(map[string]any{
		"status":  int64(200),
		"message": "OK",
		"payload": map[string]any{
			"channels":        map[string]any{},
			"total_channels":  int64(0),
			"total_occupancy": int64(0),
		},
		"service": "Presence",
	})
}

// GetState resolves an empty state echoing the uuid and channels.
func (m *Mock) GetState(obj any) *deferred.Deferred {
	m.record(OpGetState, obj)
	return m.state(OpGetState, obj)
}

// SetState resolves an empty state echoing the uuid and channels.
func (m *Mock) SetState(obj any) *deferred.Deferred {
	m.record(OpSetState, obj)
	return m.state(OpSetState, obj)
}

func (m *Mock) state(op string, obj any) *deferred.Deferred {
	o, err := requireUUID(op, obj)
	if err != nil {
		return deferred.Reject(err)
	}

	channels := o["channels"]
	if !jsval.Truthy(channels) {
		channels = []any{}
	}

	return deferred.Resolve(map[string]any{
		"status":  int64(200),
		"message": "OK",
		"payload": map[string]any{},
		"uuid":    uuidString(o["uuid"]),
		"channel": channels,
		"service": "Presence",
	})
}

// Grant resolves an access-manager success payload when obj names channels or channel
// groups.
func (m *Mock) Grant(obj any) *deferred.Deferred {
	m.record(OpGrant, obj)
	o, ok := jsval.Object(obj)
	if !ok || (!jsval.Truthy(o["channels"]) && !jsval.Truthy(o["channelGroups"])) {
		return deferred.Reject(fmt.Errorf("[%s] %w", OpGrant, ErrGrantTarget))
	}

	return deferred.Resolve(map[string]any{
		"message": "Success",
		"payload": map[string]any{
			"level":          "",
			"subscribe_key":  "",
			"ttl":            int64(1),
			"channel":        "",
			"auths":          map[string]any{},
			"channel-groups": "",
		},
		"service": "Access Manager",
		"status":  int64(200),
	})
}

// AddChannels acknowledges adding obj.channels to obj.channelGroup.
func (m *Mock) AddChannels(obj any) *deferred.Deferred {
	m.record(OpAddChannels, obj)
	return m.channelGroup(OpAddChannels, obj)
}

// RemoveChannels acknowledges removing obj.channels from obj.channelGroup.
func (m *Mock) RemoveChannels(obj any) *deferred.Deferred {
	m.record(OpRemoveChannels, obj)
	return m.channelGroup(OpRemoveChannels, obj)
}

func (m *Mock) channelGroup(op string, obj any) *deferred.Deferred {
	o, ok := jsval.Object(obj)
	if !ok || !jsval.Truthy(o["channels"]) || !jsval.Truthy(o["channelGroup"]) {
		return deferred.Reject(fmt.Errorf("[%s] %w", op, ErrChannelGroupArgs))
	}

	return deferred.Resolve(map[string]any{
		"status":  int64(200),
		"message": "OK",
		"service": "channel-registry",
		"error":   false,
	})
}

func (m *Mock) record(op string, args any) {
	m.Calls = append(m.Calls, Call{Op: op, Args: args})
}

func requireUUID(op string, obj any) (map[string]any, error) {
	o, ok := jsval.Object(obj)
	if !ok {
		return nil, fmt.Errorf("[%s] %w", op, ErrUUIDRequired)
	}
	if _, ok := o["uuid"]; !ok {
		return nil, fmt.Errorf("[%s] %w", op, ErrUUIDRequired)
	}
	return o, nil
}

// uuidString renders a present uuid. A null uuid is still present and reads "null".
func uuidString(v any) string {
	if v == nil {
		return "null"
	}
	return jsval.String(v)
}

// isObject reports whether obj is an object or an array.
func isObject(obj any) bool {
	switch t := obj.(type) {
	case map[string]any:
		return t != nil
	case []any:
		return t != nil
	default:
		return false
	}
}
