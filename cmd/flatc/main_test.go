package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWritesSingleStreamWithoutOutputDir(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := bytes.NewBufferString("Pair : flat { x:int32 y:int32 }")

	err := run([]string{"direct"}, in, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "package flatsgen")
	assert.Contains(t, stdout.String(), "type Pair_direct struct")
}

func TestRunFansOutOneFilePerFlatGivenOutputDir(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.flat")
	require.NoError(t, os.WriteFile(schemaPath, []byte("Pair : flat { x:int32 y:int32 } ; M : message of Pair"), 0o644))
	outDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	err := run([]string{"direct", schemaPath, "", outDir}, nil, &stdout, &stderr)
	require.NoError(t, err)

	pair, err := os.ReadFile(filepath.Join(outDir, "pair.go"))
	require.NoError(t, err)
	assert.Contains(t, string(pair), "type Pair_direct struct")

	m, err := os.ReadFile(filepath.Join(outDir, "m.go"))
	require.NoError(t, err)
	assert.Contains(t, string(m), "func PlaceM(")
	assert.Empty(t, stdout.String(), "fanout mode writes files, not stdout")
}

func TestRunWarnsOnViewCarryingTombstonedField(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := bytes.NewBufferString("S : flat { a:int32 deprecate b delete c d:int32 } ; V : view of S")

	err := run([]string{"view"}, in, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "view references a removed field")
	assert.Contains(t, stderr.String(), "field=b")
	assert.Contains(t, stderr.String(), "field=c")
}

func TestRunRejectsTooManyArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"direct", "a", "b", "c", "d"}, nil, &stdout, &stderr)
	require.Error(t, err)
}
