package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APP_ENV", "GRADEBOOK_STORE_DRIVER", "GRADEBOOK_DATA_FILE", "GRADEBOOK_LABEL_POLICY", "LOG_FORMAT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("LOG_LEVEL", "error")
}

func baseArgs(dir string) []string {
	return []string{
		"-env-file", filepath.Join(dir, "absent.env"),
		"-file", filepath.Join(dir, "students.json"),
	}
}

func TestRun_InteractiveSessionPersists(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()

	script := "1\nS1\nAlice\n2\nS1\n95 85\n"
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), baseArgs(dir), strings.NewReader(script), out))

	assert.Contains(t, out.String(), "No saved data found.")
	assert.Contains(t, out.String(), "Grades updated for Alice. Average is now 90.00.")
	assert.Contains(t, out.String(), "All changes saved. Goodbye!")

	data, err := os.ReadFile(filepath.Join(dir, "students.json"))
	require.NoError(t, err)

	var saved []map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "S1", saved[0]["student_id"])
	assert.Equal(t, "Alice", saved[0]["name"])

	// A second run sees the saved roster.
	out.Reset()
	require.NoError(t, run(context.Background(), baseArgs(dir), strings.NewReader("3\n2\nS1\n"), out))
	assert.NotContains(t, out.String(), "No saved data found.")
	assert.Contains(t, out.String(), "Alice")
	assert.Contains(t, out.String(), "Excellent")
}

func TestRun_ExportFlag(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "students.json"),
		[]byte(`[{"student_id":"S1","name":"Alice","grades":[70]}]`), 0o644))

	target := filepath.Join(dir, "out")
	args := append(baseArgs(dir), "-export", target, "-policy", "pass_fail")

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), args, strings.NewReader(""), out))

	assert.Equal(t, "Report exported to "+target+".xlsx.\n", out.String())
	assert.FileExists(t, target+".xlsx")
}

func TestRun_MalformedEntriesReported(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "students.json"),
		[]byte(`[{"student_id":"S1","name":"Alice","grades":[70]},{"student_id":"","name":"x","grades":[]}]`), 0o644))

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), baseArgs(dir), strings.NewReader(""), out))

	assert.Contains(t, out.String(), "Warning: ")
	assert.Contains(t, out.String(), "All changes saved. Goodbye!")
}

func TestRun_ExportToStdout(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "students.json"),
		[]byte(`[{"student_id":"S1","name":"Alice","grades":[70]}]`), 0o644))

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), append(baseArgs(dir), "-export", "-"), strings.NewReader(""), out))

	// The workbook is a zip archive and nothing else is written to stdout.
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("PK")))
	assert.NotContains(t, out.String(), "Report exported")
	assert.NoFileExists(t, filepath.Join(dir, "-.xlsx"))
}

func TestRun_CorruptStoreDegrades(t *testing.T) {
	for _, driver := range []string{"bbolt", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			quietEnv(t)
			dir := t.TempDir()
			path := filepath.Join(dir, "data.db")
			garbage := bytes.Repeat([]byte("this is not a database "), 500)
			require.NoError(t, os.WriteFile(path, garbage, 0o600))

			args := []string{"-env-file", filepath.Join(dir, "absent.env"), "-store", driver, "-file", path}
			out := &bytes.Buffer{}
			require.NoError(t, run(context.Background(), args, strings.NewReader("1\nS1\nAlice\n"), out))

			assert.Contains(t, out.String(), "Warning: could not load saved data")
			assert.Contains(t, out.String(), "Starting with an empty roster.")
			assert.Contains(t, out.String(), "Student 'Alice' registered successfully.")
			assert.Contains(t, out.String(), "Could not save data:")
			assert.Contains(t, out.String(), "Some changes may not have been saved. Goodbye!")

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, garbage, data, "the unreadable file is left alone")
		})
	}
}

func TestRun_DriverDefaultFilesAreSeparate(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	roster := []byte(`[{"student_id":"S1","name":"Alice","grades":[70]}]`)
	require.NoError(t, os.WriteFile("students.json", roster, 0o644))

	args := []string{"-env-file", "absent.env", "-store", "lines"}
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), args, strings.NewReader("1\nS2\nBob\n"), out))
	assert.Contains(t, out.String(), "No saved data found.")

	data, err := os.ReadFile("students.json")
	require.NoError(t, err)
	assert.Equal(t, roster, data)

	lines, err := os.ReadFile("students.txt")
	require.NoError(t, err)
	assert.Equal(t, "S2|Bob|\n", string(lines))
}

func TestRun_LinesStoreRejectsSeparator(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "students.txt")

	args := []string{"-env-file", filepath.Join(dir, "absent.env"), "-store", "lines", "-file", path}
	script := "1\nS1\nA|B\n1\nS2\nBob\n"
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), args, strings.NewReader(script), out))

	assert.Contains(t, out.String(), "Invalid input:")
	assert.NotContains(t, out.String(), "Student 'A|B' registered")
	assert.Contains(t, out.String(), "Student 'Bob' registered successfully.")
	assert.Contains(t, out.String(), "All changes saved. Goodbye!")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "S2|Bob|\n", string(data))
}

func TestRun_InvalidFlags(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()

	err := run(context.Background(), append(baseArgs(dir), "-store", "csv"), strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRADEBOOK_STORE_DRIVER")

	err = run(context.Background(), []string{"-h"}, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "INFO", parseLevel("INFO").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "WARN", parseLevel("").String())
}
