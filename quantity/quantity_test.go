package quantity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantkit/quantkit/quantity"
)

func TestBoundsValidate(t *testing.T) {
	tests := []struct {
		name   string
		bounds quantity.Bounds
		ok     bool
	}{
		{"typical", quantity.Bounds{Min: 0, Max: 5, Step: 1}, true},
		{"nonZeroFloor", quantity.Bounds{Min: 2, Max: 10, Step: 2}, true},
		{"negativeMin", quantity.Bounds{Min: -1, Max: 5, Step: 1}, false},
		{"maxEqualsMin", quantity.Bounds{Min: 3, Max: 3, Step: 1}, false},
		{"maxBelowMin", quantity.Bounds{Min: 5, Max: 2, Step: 1}, false},
		{"zeroStep", quantity.Bounds{Min: 0, Max: 5, Step: 0}, false},
		{"negativeStep", quantity.Bounds{Min: 0, Max: 5, Step: -2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestBoundsClamp(t *testing.T) {
	b := quantity.Bounds{Min: 2, Max: 8, Step: 1}

	assert.Equal(t, 2, b.Clamp(-100))
	assert.Equal(t, 2, b.Clamp(1))
	assert.Equal(t, 2, b.Clamp(2))
	assert.Equal(t, 5, b.Clamp(5))
	assert.Equal(t, 8, b.Clamp(8))
	assert.Equal(t, 8, b.Clamp(999))
}

func TestBoundsContains(t *testing.T) {
	b := quantity.Bounds{Min: 0, Max: 5, Step: 1}

	assert.True(t, b.Contains(0))
	assert.True(t, b.Contains(5))
	assert.False(t, b.Contains(-1))
	assert.False(t, b.Contains(6))
}

func TestBoundsEdges(t *testing.T) {
	b := quantity.Bounds{Min: 1, Max: 4, Step: 1}

	assert.True(t, b.AtMin(1))
	assert.True(t, b.AtMin(0))
	assert.False(t, b.AtMin(2))
	assert.True(t, b.AtMax(4))
	assert.True(t, b.AtMax(10))
	assert.False(t, b.AtMax(3))
}

func TestSeedValue(t *testing.T) {
	assert.Equal(t, 1,
		quantity.Bounds{Min: 0, Max: 5, Step: 1}.SeedValue())
	assert.Equal(t, 3,
		quantity.Bounds{Min: 0, Max: 5, Step: 3}.SeedValue())
	assert.Equal(t, 2,
		quantity.Bounds{Min: 2, Max: 5, Step: 1}.SeedValue())
	assert.Equal(t, 5,
		quantity.Bounds{Min: 0, Max: 5, Step: 8}.SeedValue())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := quantity.Snapshot{
		Quantity: 3,
		Min:      1,
		Max:      9,
		Step:     2,
		Expanded: true,
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored quantity.Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, s, restored)
	assert.Equal(t, quantity.Bounds{Min: 1, Max: 9, Step: 2},
		restored.Bounds())
}
