package entity

import (
	"errors"
	"fmt"
)

// ErrUnknownPhase is returned when an envelope names a phase outside the lifecycle
var ErrUnknownPhase = errors.New("unknown lifecycle phase")

// Phase is one of the five notification kinds in a request's lifecycle
type Phase string

const (
	PhaseInitiation      Phase = "initiation"
	PhaseHeadersSent     Phase = "headers_sent"
	PhaseHeadersReceived Phase = "headers_received"
	PhaseCompleted       Phase = "completed"
	PhaseError           Phase = "error"
)

// LifecycleEvent is implemented by the five phase variants below
type LifecycleEvent interface {
	RequestID() string
	Phase() Phase
}

// HTTPHeader is a single name/value pair as reported by the host
type HTTPHeader struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// RawBodyChunk holds one chunk of an undecoded request body
type RawBodyChunk struct {
	Bytes []byte `json:"bytes,omitempty"` // base64 on the wire
}

// EventBody is the request body attached to an initiation notification
type EventBody struct {
	Raw      []RawBodyChunk      `json:"raw,omitempty"`
	FormData map[string][]string `json:"formData,omitempty"`
}

// InitiationEvent opens a request's lifecycle
type InitiationEvent struct {
	ID     string
	URL    string
	Method string
	Type   string
	Body   *EventBody
}

func (e InitiationEvent) RequestID() string { return e.ID }
func (e InitiationEvent) Phase() Phase      { return PhaseInitiation }

// HeadersSentEvent carries the request headers visible at send time
type HeadersSentEvent struct {
	ID      string
	Headers []HTTPHeader
}

func (e HeadersSentEvent) RequestID() string { return e.ID }
func (e HeadersSentEvent) Phase() Phase      { return PhaseHeadersSent }

// HeadersReceivedEvent carries the response headers
type HeadersReceivedEvent struct {
	ID      string
	Headers []HTTPHeader
}

func (e HeadersReceivedEvent) RequestID() string { return e.ID }
func (e HeadersReceivedEvent) Phase() Phase      { return PhaseHeadersReceived }

// CompletedEvent carries the final status code
type CompletedEvent struct {
	ID         string
	StatusCode int
}

func (e CompletedEvent) RequestID() string { return e.ID }
func (e CompletedEvent) Phase() Phase      { return PhaseCompleted }

// ErrorEvent reports a request that failed at the network level
type ErrorEvent struct {
	ID      string
	Message string
}

func (e ErrorEvent) RequestID() string { return e.ID }
func (e ErrorEvent) Phase() Phase      { return PhaseError }

// EventEnvelope is the wire shape accepted by the ingest endpoint.
// Only the fields relevant to Phase are read.
type EventEnvelope struct {
	Phase           Phase        `json:"phase"`
	RequestID       string       `json:"requestId"`
	URL             string       `json:"url,omitempty"`
	Method          string       `json:"method,omitempty"`
	Type            string       `json:"type,omitempty"`
	RequestBody     *EventBody   `json:"requestBody,omitempty"`
	RequestHeaders  []HTTPHeader `json:"requestHeaders,omitempty"`
	ResponseHeaders []HTTPHeader `json:"responseHeaders,omitempty"`
	StatusCode      int          `json:"statusCode,omitempty"`
	Error           string       `json:"error,omitempty"`
}

// ToEvent converts the envelope into its typed variant
func (e EventEnvelope) ToEvent() (LifecycleEvent, error) {
	switch e.Phase {
	case PhaseInitiation:
		return InitiationEvent{
			ID:     e.RequestID,
			URL:    e.URL,
			Method: e.Method,
			Type:   e.Type,
			Body:   e.RequestBody,
		}, nil
	case PhaseHeadersSent:
		return HeadersSentEvent{ID: e.RequestID, Headers: e.RequestHeaders}, nil
	case PhaseHeadersReceived:
		return HeadersReceivedEvent{ID: e.RequestID, Headers: e.ResponseHeaders}, nil
	case PhaseCompleted:
		return CompletedEvent{ID: e.RequestID, StatusCode: e.StatusCode}, nil
	case PhaseError:
		return ErrorEvent{ID: e.RequestID, Message: e.Error}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, e.Phase)
	}
}
