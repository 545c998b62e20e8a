package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/repository"
	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/storage"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/types"
)

// execute runs atomctl against statePath and returns its stdout.
func execute(t *testing.T, statePath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--state", statePath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, statePath string, args ...string) string {
	t.Helper()
	out, err := execute(t, statePath, args...)
	require.NoError(t, err, "atomctl %v", args)
	return out
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func firstCriterion(t *testing.T, statePath string, dim model.Dimension) model.Criterion {
	t.Helper()
	criteria := decodeJSON[[]model.Criterion](t, mustExecute(t, statePath, "criteria", "--dimension", string(dim), "--json"))
	require.NotEmpty(t, criteria)
	return criteria[0]
}

func TestMetricsOnFreshState(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")

	out := mustExecute(t, statePath, "metrics")
	assert.Contains(t, out, model.DefaultCompanyName)
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Tip: Save snapshots regularly to track trends over time.")

	_, err := os.Stat(statePath)
	assert.NoError(t, err, "seeded state should be written")
}

func TestScoreAndEvaluate(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	tsi := firstCriterion(t, statePath, model.DimensionTSI)

	mustExecute(t, statePath, "score", tsi.ID, "7", "--note", "two automation engineers")

	eval := decodeJSON[types.CompanyEvaluation](t, mustExecute(t, statePath, "metrics", "--json"))
	require.NotNil(t, eval.Metrics.TSI)
	assert.InDelta(t, 7.0, *eval.Metrics.TSI, 1e-9)
	assert.Nil(t, eval.Metrics.TQI)
	assert.Nil(t, eval.Metrics.Composite)

	mustExecute(t, statePath, "score", tsi.ID, "clear")
	eval = decodeJSON[types.CompanyEvaluation](t, mustExecute(t, statePath, "metrics", "--json"))
	assert.Nil(t, eval.Metrics.TSI)
}

func TestScoreErrors(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	tsi := firstCriterion(t, statePath, model.DimensionTSI)

	_, err := execute(t, statePath, "score", tsi.ID, "lots")
	assert.ErrorContains(t, err, "invalid score")

	_, err = execute(t, statePath, "score", "cr_missing", "5")
	assert.ErrorIs(t, err, repository.ErrCriterionNotFound)

	_, err = execute(t, statePath, "metrics", "--company", "co_missing")
	assert.ErrorIs(t, err, repository.ErrCompanyNotFound)
}

func TestSnapshotLifecycle(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")

	assert.Contains(t, mustExecute(t, statePath, "snapshot", "list"), "no snapshots")

	mustExecute(t, statePath, "snapshot", "capture")
	mustExecute(t, statePath, "snapshot", "capture")
	snaps := decodeJSON[[]model.Snapshot](t, mustExecute(t, statePath, "snapshot", "list", "--json"))
	assert.Len(t, snaps, 2)

	assert.Contains(t, mustExecute(t, statePath, "snapshot", "pop"), "removed")
	assert.Contains(t, mustExecute(t, statePath, "snapshot", "pop"), "removed")
	assert.Contains(t, mustExecute(t, statePath, "snapshot", "pop"), "no snapshots")
}

func TestSnapshotMarksChangedCriteria(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	mustExecute(t, statePath, "snapshot", "capture")

	// Editing a criterion changes the fingerprint.
	doc, err := storage.NewFileStorage(statePath).Load(context.Background())
	require.NoError(t, err)
	doc.Criteria[0].Weight = 3
	require.NoError(t, storage.NewFileStorage(statePath).Save(context.Background(), doc))

	assert.Contains(t, mustExecute(t, statePath, "snapshot", "list"), "(different criteria)")
}

func TestExportResetImport(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	exportPath := filepath.Join(dir, "backup.yaml")

	mustExecute(t, statePath, "companies", "add", "Globex")
	mustExecute(t, statePath, "export", "-o", exportPath)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Globex")

	assert.Contains(t, mustExecute(t, statePath, "reset"), "reset to defaults")
	companies := decodeJSON[[]model.Company](t, mustExecute(t, statePath, "companies", "--json"))
	assert.Len(t, companies, 1)

	assert.Contains(t, mustExecute(t, statePath, "import", exportPath), "imported 2 companies")
	out := mustExecute(t, statePath, "companies")
	assert.Contains(t, out, "* ")
	assert.Contains(t, out, "Globex")
}

func TestExportToStdout(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")

	doc, err := storage.Decode(bytes.NewReader([]byte(mustExecute(t, statePath, "export"))))
	require.NoError(t, err)
	assert.Equal(t, model.DocumentVersion, doc.Version)
}

func TestImportRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	mustExecute(t, statePath, "companies", "add", "Initech")

	badVersion := filepath.Join(dir, "v2.json")
	require.NoError(t, os.WriteFile(badVersion, []byte(`{"version":2}`), 0o600))
	_, err := execute(t, statePath, "import", badVersion)
	assert.ErrorIs(t, err, storage.ErrUnsupportedVersion)

	companies := decodeJSON[[]model.Company](t, mustExecute(t, statePath, "companies", "--json"))
	assert.Len(t, companies, 2, "document must survive a rejected import")
}

func TestCorruptStateIsNotOverwritten(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o600))

	_, err := execute(t, statePath, "reset")
	assert.ErrorIs(t, err, storage.ErrParse)

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestFingerprintIsStable(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")

	first := decodeJSON[types.Fingerprint](t, mustExecute(t, statePath, "fingerprint", "--json"))
	second := decodeJSON[types.Fingerprint](t, mustExecute(t, statePath, "fingerprint", "--json"))
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Hash)
	assert.Equal(t, first.Criteria, first.EnabledCriteria)
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		path    string
		want    storage.Format
		wantErr bool
	}{
		{name: "default json", want: storage.FormatJSON},
		{name: "yaml extension", path: "out.YAML", want: storage.FormatYAML},
		{name: "yml extension", path: "dir/out.yml", want: storage.FormatYAML},
		{name: "flag wins over extension", flag: "json", path: "out.yaml", want: storage.FormatJSON},
		{name: "unknown flag", flag: "toml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatFor(tt.flag, tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, storage.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScore(t *testing.T) {
	v, err := parseScore("CLEAR")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parseScore("4.5")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 4.5, *v)
}
