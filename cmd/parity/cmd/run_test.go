package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Slice flags accumulate across Execute calls, so clear them first.
	if f := runCmd.Flags().Lookup("case"); f != nil {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		}
	}
	require.NoError(t, runCmd.Flags().Set("format", "text"))
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRunSingleCase(t *testing.T) {
	out, err := execute(t, "run", "--case", "RandomHorizontalFlip")
	require.NoError(t, err)
	assert.Contains(t, out, "RandomHorizontalFlip")
	assert.Contains(t, out, "0 failed")
}

func TestRunUnknownCase(t *testing.T) {
	_, err := execute(t, "run", "--case", "NoSuchTransform")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchTransform")
}

func TestRunJSONFormat(t *testing.T) {
	out, err := execute(t, "run", "--case", "RandomInvert", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"case": "RandomInvert"`)
}

func TestSignaturesCommand(t *testing.T) {
	out, err := execute(t, "signatures")
	require.NoError(t, err)
	assert.Contains(t, out, "signatures match")
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Resize")
	assert.Contains(t, out, "RandomErasing")
}
