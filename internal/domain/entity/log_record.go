package entity

import (
	"bytes"
	"encoding/json"
	"maps"
)

// BinaryBodySentinel replaces request bodies whose raw bytes are not valid UTF-8 text.
const BinaryBodySentinel = "[Binary Data]"

// LogRecord is one captured network request, merged from all of its lifecycle phases
type LogRecord struct {
	ID              string            `json:"id"`
	URL             string            `json:"url,omitempty"`
	Method          string            `json:"method,omitempty"`
	RequestType     string            `json:"type,omitempty"`
	Timestamp       int64             `json:"timestamp,omitempty"` // milliseconds since epoch
	RequestHeaders  map[string]string `json:"requestHeaders,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	RequestBody     *RequestBody      `json:"requestBody,omitempty"`
	Status          int               `json:"status"` // 0 until the request completes
	Error           string            `json:"error,omitempty"`
}

// LogUpdate is a partial LogRecord. Nil fields are absent and leave the
// existing value untouched when applied.
type LogUpdate struct {
	ID              string
	URL             *string
	Method          *string
	RequestType     *string
	Timestamp       *int64
	RequestHeaders  map[string]string
	ResponseHeaders map[string]string
	RequestBody     *RequestBody
	Status          *int
	Error           *string
}

// NewLogRecord creates a record holding only the fields present in the update
func NewLogRecord(u *LogUpdate) LogRecord {
	record := LogRecord{ID: u.ID}
	record.Apply(u)
	return record
}

// Apply overwrites the record's fields with every field present in the update.
// Header maps are replaced as a whole, not merged key by key.
func (r *LogRecord) Apply(u *LogUpdate) {
	if u.URL != nil {
		r.URL = *u.URL
	}
	if u.Method != nil {
		r.Method = *u.Method
	}
	if u.RequestType != nil {
		r.RequestType = *u.RequestType
	}
	if u.Timestamp != nil {
		r.Timestamp = *u.Timestamp
	}
	if u.RequestHeaders != nil {
		r.RequestHeaders = u.RequestHeaders
	}
	if u.ResponseHeaders != nil {
		r.ResponseHeaders = u.ResponseHeaders
	}
	if u.RequestBody != nil {
		r.RequestBody = u.RequestBody
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
	if u.Error != nil {
		r.Error = *u.Error
	}
}

// Clone returns a copy that shares no maps with the original
func (r LogRecord) Clone() LogRecord {
	out := r
	out.RequestHeaders = maps.Clone(r.RequestHeaders)
	out.ResponseHeaders = maps.Clone(r.ResponseHeaders)
	if r.RequestBody != nil {
		body := *r.RequestBody
		body.FormData = maps.Clone(r.RequestBody.FormData)
		out.RequestBody = &body
	}
	return out
}

// RequestBody is either decoded text, a form-field mapping or the binary sentinel
type RequestBody struct {
	Text     string
	FormData map[string][]string
	Binary   bool
}

// TextBody wraps decoded UTF-8 text
func TextBody(text string) *RequestBody {
	return &RequestBody{Text: text}
}

// FormBody wraps structured form fields
func FormBody(fields map[string][]string) *RequestBody {
	return &RequestBody{FormData: fields}
}

// BinaryBody marks a body that could not be decoded as text
func BinaryBody() *RequestBody {
	return &RequestBody{Binary: true}
}

// String renders the body the way it is shown to users
func (b *RequestBody) String() string {
	switch {
	case b == nil:
		return ""
	case b.Binary:
		return BinaryBodySentinel
	case b.FormData != nil:
		data, _ := json.Marshal(b.FormData)
		return string(data)
	default:
		return b.Text
	}
}

func (b RequestBody) MarshalJSON() ([]byte, error) {
	switch {
	case b.Binary:
		return json.Marshal(BinaryBodySentinel)
	case b.FormData != nil:
		return json.Marshal(b.FormData)
	default:
		return json.Marshal(b.Text)
	}
}

func (b *RequestBody) UnmarshalJSON(data []byte) error {
	*b = RequestBody{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return json.Unmarshal(trimmed, &b.FormData)
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return err
	}
	if text == BinaryBodySentinel {
		b.Binary = true
		return nil
	}
	b.Text = text
	return nil
}
