package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisok6893-rgb/renovation-advisor/internal/recommend"
)

func runRecommend(t *testing.T, cfgPath string, args ...string) recommend.Result {
	t.Helper()
	if cfgPath == "" {
		cfgPath = filepath.Join(t.TempDir(), "absent.toml")
	}
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(append([]string{"--config", cfgPath, "recommend"}, args...))
	require.NoError(t, root.Execute())

	var res recommend.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	return res
}

func TestRecommendCommand_FromRecordFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"yearBuilt":1960,"basementAreaSqFt":1000,"estimatedValue":250000}`), 0o600))

	res := runRecommend(t, "", "--record", path, "--sqft", "1200")

	assert.Equal(t, 1200, res.Attributes.SquareFootage)
	assert.Equal(t, 250000.0, res.EstimatedValue)
	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, "basement-finishing", res.Recommendations[0].ID)
}

func TestRecommendCommand_DefaultsWithoutRecord(t *testing.T) {
	res := runRecommend(t, "", "--value", "600000")

	assert.Equal(t, 600000.0, res.EstimatedValue)
	assert.Equal(t, 1500, res.Attributes.SquareFootage)
	assert.GreaterOrEqual(t, len(res.Recommendations), 5)
	assert.LessOrEqual(t, len(res.Recommendations), 12)
}

func TestRecommendCommand_ConfigLimitsAndCount(t *testing.T) {
	// An unreachable impact cap leaves the requested count in charge.
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[recommend]
default_count = 8
min_count = 5
max_count = 12
max_cumulative_impact = 1000.0
`), 0o600))

	assert.Len(t, runRecommend(t, cfgPath, "--count", "6").Recommendations, 6)
	assert.Len(t, runRecommend(t, cfgPath).Recommendations, 8)
}

func TestRecommendCommand_BadRecordFile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.toml"), "recommend", "--record", "/does/not/exist.json"})
	assert.Error(t, root.Execute())
}
