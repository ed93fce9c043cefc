package entity

// StoreChange is delivered to store subscribers after a write commits.
// OldValue is nil when the key did not exist before.
type StoreChange struct {
	Key      string `json:"key"`
	OldValue []byte `json:"oldValue,omitempty"`
	NewValue []byte `json:"newValue,omitempty"`
}

// IndicatorState is the visible recording badge
type IndicatorState struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}
