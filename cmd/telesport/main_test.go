package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = "../../assets/mock/olympic.json"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, "--data", dataset, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Countries: 5  Editions: 3")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[3], "United States", "medal order puts the top country first")

	out, err = run(t, "--data", dataset, "--sort", "alphabetical", "summary")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[3], "France")
}

func TestRenderAndCountryCommands(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "home.png")
	out, err := run(t, "--data", dataset, "render", "--out", home)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+home)
	st, err := os.Stat(home)
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	italy := filepath.Join(dir, "italy.png")
	out, err = run(t, "--data", dataset, "country", "Italy", "--out", italy)
	require.NoError(t, err)
	assert.Contains(t, out, "Entries: 3  Medals: 96  Athletes: 1128")
	_, err = os.Stat(italy)
	require.NoError(t, err)

	_, err = run(t, "--data", dataset, "country", "Atlantis", "--out", filepath.Join(dir, "x.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBadConfigIsRejected(t *testing.T) {
	_, err := run(t, "--data", dataset, "--sort", "random", "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = run(t, "--data", filepath.Join(t.TempDir(), "missing.json"), "--sort", "medals", "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestParsePoint(t *testing.T) {
	ev, err := parsePoint("12.5, 40")
	require.NoError(t, err)
	assert.Equal(t, 12.5, ev.X)
	assert.Equal(t, 40.0, ev.Y)
	for _, bad := range []string{"", "1", "a,2", "1,b"} {
		_, err := parsePoint(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, "united_states", fileName("United States"))
}
