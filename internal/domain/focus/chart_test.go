package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartBars(t *testing.T) {
	bars := ChartBars(sessionsWithDurations(300, 600, 150))

	require.Len(t, bars, 3)
	assert.InDelta(t, 50.0, bars[0].Percent, 0.0001)
	assert.InDelta(t, 100.0, bars[1].Percent, 0.0001)
	assert.InDelta(t, 25.0, bars[2].Percent, 0.0001)
	assert.InDelta(t, 5.0, bars[0].Minutes, 0.0001)
	assert.Equal(t, []int{0, 1, 0}, []int{bars[0].Tone, bars[1].Tone, bars[2].Tone})
	assert.Equal(t, "Untitled Session", bars[0].Label)
}

func TestChartBars_ZeroDurations(t *testing.T) {
	bars := ChartBars(sessionsWithDurations(0, 0))

	require.Len(t, bars, 2)
	assert.Zero(t, bars[0].Percent)
	assert.Zero(t, bars[1].Percent)
}

func TestChartBars_Empty(t *testing.T) {
	assert.Empty(t, ChartBars(nil))
}
