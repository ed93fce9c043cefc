package capture

import (
	"sync"

	"traffic-recorder/internal/domain/entity"
)

const (
	RecordingBadgeText  = "REC"
	RecordingBadgeColor = "#ef4444"
)

// Indicator is the visible badge that tells the user recording is on
type Indicator interface {
	SetBadgeText(text string)
	SetBadgeColor(color string)
}

// BadgeIndicator keeps the badge in memory so it can be served over the API
type BadgeIndicator struct {
	mu    sync.RWMutex
	state entity.IndicatorState
}

func NewBadgeIndicator() *BadgeIndicator {
	return &BadgeIndicator{}
}

func (b *BadgeIndicator) SetBadgeText(text string) {
	b.mu.Lock()
	b.state.Text = text
	b.mu.Unlock()
}

func (b *BadgeIndicator) SetBadgeColor(color string) {
	b.mu.Lock()
	b.state.Color = color
	b.mu.Unlock()
}

func (b *BadgeIndicator) State() entity.IndicatorState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// SyncIndicator shows the badge while recording and clears its text otherwise.
// The color is left as is when turning off.
func SyncIndicator(indicator Indicator, recording bool) {
	if recording {
		indicator.SetBadgeText(RecordingBadgeText)
		indicator.SetBadgeColor(RecordingBadgeColor)
		return
	}
	indicator.SetBadgeText("")
}
