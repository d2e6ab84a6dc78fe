package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formsense/repform/internal/exercise"
)

func TestSaveSeriesPNG(t *testing.T) {
	cfg := exercise.NewSquat().Config()
	path := filepath.Join(t.TempDir(), "series.png")

	// Zeroes are sentinel frames and must not break rendering.
	series := []float64{178, 150, 0, 100, 75, 100, 0, 150, 178}
	require.NoError(t, SaveSeriesPNG(path, cfg, series))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
