package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/gnolang/acmatch/internal/config"
	"github.com/gnolang/acmatch/internal/engine"
	tt "github.com/gnolang/acmatch/internal/types"
	"github.com/gnolang/acmatch/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type mockScanEngine struct {
	mock.Mock
}

func (m *mockScanEngine) Run(filePath string) ([]tt.Match, error) {
	args := m.Called(filePath)
	return args.Get(0).([]tt.Match), args.Error(1)
}

func (m *mockScanEngine) RunSource(name string, source []byte) []tt.Match {
	args := m.Called(name, source)
	return args.Get(0).([]tt.Match)
}

func (m *mockScanEngine) IgnorePath(path string) {
	m.Called(path)
}

func createTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunScanProcess(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewProduction()
	dir := t.TempDir()
	file := createTempFile(t, dir, "a.txt", "nothing\nsee FIXME\n")

	eng, err := engine.New([]tt.PatternRule{
		{Pattern: "TODO", Label: "todo"},
		{Pattern: "FIXME", Label: "fixme"},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	err = runScanProcess(context.Background(), logger, eng, []string{"-", file},
		strings.NewReader("TODO: stdin"), &out, scan.Options{}, false, "")
	assert.ErrorIs(t, err, ErrMatchesFound)

	output := out.String()
	assert.Contains(t, output, "match: todo\n --> -:1:1\n")
	assert.Contains(t, output, "1 | TODO: stdin\n")
	assert.Contains(t, output, "match: fixme\n --> "+file+":2:5\n")
	assert.Contains(t, output, "2 | see FIXME\n")
	assert.Less(t, strings.Index(output, "match: todo"), strings.Index(output, "match: fixme"))
}

func TestRunScanProcessNoMatches(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createTempFile(t, dir, "a.go", "package a\n")

	eng, err := engine.New([]tt.PatternRule{{Pattern: "TODO"}})
	require.NoError(t, err)

	var out bytes.Buffer
	err = runScanProcess(context.Background(), zap.NewNop(), eng, []string{dir},
		strings.NewReader(""), &out, scan.Options{Extensions: []string{".go"}}, false, "")
	assert.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunScanProcessJSON(t *testing.T) {
	t.Parallel()
	expected := []tt.Match{
		{
			Pattern:  "he",
			Label:    "he",
			Filename: "-",
			Start:    token.Position{Filename: "-", Offset: 1, Line: 1, Column: 2},
			End:      token.Position{Filename: "-", Offset: 3, Line: 1, Column: 4},
		},
	}
	data := []byte("she")
	mockEngine := new(mockScanEngine)
	mockEngine.On("RunSource", "-", data).Return(expected)

	jsonPath := filepath.Join(t.TempDir(), "out.json")
	err := runScanProcess(context.Background(), zap.NewNop(), mockEngine, []string{"-"},
		bytes.NewReader(data), &bytes.Buffer{}, scan.Options{}, true, jsonPath)
	assert.ErrorIs(t, err, ErrMatchesFound)
	mockEngine.AssertExpectations(t)

	d, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var got map[string][]tt.Match
	require.NoError(t, json.Unmarshal(d, &got))
	assert.Equal(t, map[string][]tt.Match{"-": expected}, got)
}

func TestPrintMatchesMissingSource(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := printMatches(zap.NewNop(), &out, []tt.Match{{Filename: "/does/not/exist"}}, nil, false, "")
	assert.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "conf.yaml")

	got, err := initConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Patterns, cfg.Patterns)
}

func TestLoadConfigFallsBackToDefault(t *testing.T) {
	t.Parallel()
	cfg, err := loadConfig(config.DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewEnginePatternOverride(t *testing.T) {
	t.Parallel()
	eng, _, err := newEngine(config.DefaultPath, []string{"alpha", "beta"}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []tt.PatternRule{{Pattern: "alpha"}, {Pattern: "beta"}}, eng.Rules())

	_, _, err = newEngine(config.DefaultPath, []string{"caf\xc3\xa9"}, false, false)
	assert.Error(t, err)
}

func TestLookupCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"lookup", "-p", "he", "-p", "she", "she", "her"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, ErrMatchesFound)
	assert.Equal(t, "she\tshe\nher\t-\n", out.String())
}
