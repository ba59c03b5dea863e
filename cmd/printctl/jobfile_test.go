// cmd/printctl/jobfile_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printer-bridge/internal/command"
)

func writeJob(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadJobFileJSONObject(t *testing.T) {
	path := writeJob(t, "receipt.json", `{
  "charset": "germany",
  "commands": [
    {"data": "Hello", "style": {"bold": true}},
    {"action": "paper-feed", "args": {"height": 3}},
    {"action": "cut"}
  ]
}`)

	job, err := readJobFile(path)
	require.NoError(t, err)
	assert.Equal(t, "germany", job.Charset)
	require.Len(t, job.Commands, 3)

	commands, err := command.ParseAll(job.Commands)
	require.NoError(t, err)
	assert.Len(t, commands, 3)
}

func TestReadJobFileJSONList(t *testing.T) {
	path := writeJob(t, "receipt.json", ` [{"data": "Hello"}]`)

	job, err := readJobFile(path)
	require.NoError(t, err)
	assert.Empty(t, job.Charset)
	assert.Equal(t, "Hello", job.Commands[0]["data"])
}

func TestReadJobFileYAML(t *testing.T) {
	path := writeJob(t, "receipt.yml", `
charset: usa
commands:
  - data: Hello
    style:
      align: center
  - action: paper-feed
    args:
      height: 2
`)

	job, err := readJobFile(path)
	require.NoError(t, err)
	assert.Equal(t, "usa", job.Charset)
	require.Len(t, job.Commands, 2)

	args, ok := job.Commands[1]["args"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 2, args["height"])

	_, err = command.ParseAll(job.Commands)
	require.NoError(t, err)
}

func TestReadJobFileYAMLList(t *testing.T) {
	path := writeJob(t, "receipt.yaml", "- data: Hello\n- action: cut\n")

	job, err := readJobFile(path)
	require.NoError(t, err)
	assert.Len(t, job.Commands, 2)
}

func TestReadJobFileErrors(t *testing.T) {
	_, err := readJobFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read job file")

	_, err = readJobFile(writeJob(t, "receipt.txt", "data"))
	assert.ErrorContains(t, err, "unsupported job file extension")

	_, err = readJobFile(writeJob(t, "receipt.json", "{"))
	assert.ErrorContains(t, err, "failed to decode receipt.json")

	_, err = readJobFile(writeJob(t, "empty.yaml", "commands: []\n"))
	assert.ErrorContains(t, err, "has no commands")
}
