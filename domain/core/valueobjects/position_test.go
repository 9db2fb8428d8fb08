package valueobjects

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPosition(t *testing.T) {
	tests := []struct {
		name    string
		x, y    float64
		wantErr bool
	}{
		{name: "origin", x: 0, y: 0},
		{name: "negative coordinates", x: -100.5, y: -200.75},
		{name: "very large coordinates", x: 1e10, y: -1e10},
		{name: "NaN x coordinate", x: math.NaN(), y: 0, wantErr: true},
		{name: "infinite y coordinate", x: 0, y: math.Inf(-1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := NewPosition(tt.x, tt.y)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid coordinates")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.x, pos.X())
			assert.Equal(t, tt.y, pos.Y())
		})
	}
}

func TestPosition_TranslateAndDelta(t *testing.T) {
	from := MustPosition(10, 20)
	to := MustPosition(15, 5)

	dx, dy := from.Delta(to)
	assert.Equal(t, 5.0, dx)
	assert.Equal(t, -15.0, dy)

	moved, err := from.Translate(dx, dy)
	require.NoError(t, err)
	assert.True(t, moved.Equals(to))

	_, err = from.Translate(math.Inf(1), 0)
	assert.Error(t, err)
}

func TestPosition_JSON(t *testing.T) {
	data, err := json.Marshal(MustPosition(1.5, -2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1.5,"y":-2}`, string(data))

	var pos Position
	require.NoError(t, json.Unmarshal([]byte(`{"x":3,"y":4}`), &pos))
	assert.Equal(t, MustPosition(3, 4), pos)

	assert.Error(t, json.Unmarshal([]byte(`{"x":"a"}`), &pos))
}
