package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixedClock advances by step on every call.
func fixedClock(step time.Duration) func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestBar_Summary(t *testing.T) {
	tests := []struct {
		name string
		set  func(*Bar)
		want string
	}{
		{"ready", func(*Bar) {}, "Ready"},
		{"asking", func(b *Bar) { b.Asking() }, "Asking..."},
		{"answered plural", func(b *Bar) { b.Asking(); b.Answered(3) }, "3 sources in 1.5s"},
		{"answered singular", func(b *Bar) { b.Asking(); b.Answered(1) }, "1 source in 1.5s"},
		{"error with message", func(b *Bar) { b.Failed("service temporarily unavailable") }, "Error: service temporarily unavailable"},
		{"error without message", func(b *Bar) { b.Failed("") }, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.now = fixedClock(1500 * time.Millisecond)
			bar.SetWidth(200)
			tt.set(bar)

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_HintsFollowState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.Contains(t, bar.View(), "previous question")

	bar.Asking()
	bar.Answered(2)
	assert.Contains(t, bar.View(), "next source")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.Failed("boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Contains(t, bar.View(), "Ready")
}
