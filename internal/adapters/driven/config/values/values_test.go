package values

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{42, 42},
		{int64(7), 7},
		{float64(3.9), 3},
		{" 12 ", 12},
		{"x", 0},
		{nil, 0},
		{true, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Int(tt.in), "%v", tt.in)
	}
}

func TestFloat(t *testing.T) {
	assert.InDelta(t, 0.3, Float(0.3), 1e-9)
	assert.InDelta(t, 2.0, Float(int64(2)), 1e-9)
	assert.InDelta(t, 0.7, Float("0.7"), 1e-9)
	assert.Zero(t, Float("warm"))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(true))
	assert.True(t, Bool("true"))
	assert.True(t, Bool("1"))
	assert.False(t, Bool("no"))
	assert.False(t, Bool(1))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 12*time.Second, Duration("12s"))
	assert.Equal(t, 90*time.Minute, Duration("1h30m"))
	assert.Equal(t, 5*time.Second, Duration("5"))
	assert.Equal(t, 3*time.Second, Duration(int64(3)))
	assert.Zero(t, Duration("soon"))
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, StringSlice([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "c"}, StringSlice([]any{"a", 1, "c"}))
	assert.Equal(t, []string{"x", "y"}, StringSlice(" x, ,y "))
	assert.Nil(t, StringSlice(""))
	assert.Nil(t, StringSlice(3))
}

func TestFlattenAndNest(t *testing.T) {
	nested := map[string]any{
		"llm": map[string]any{"provider": "azure", "model": "gpt-35-turbo"},
		"top": 1,
	}
	flat := Flatten(nested, "")
	assert.Equal(t, map[string]any{
		"llm.provider": "azure",
		"llm.model":    "gpt-35-turbo",
		"top":          1,
	}, flat)
	assert.Equal(t, nested, Nest(flat))
}
