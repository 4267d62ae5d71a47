package lsp

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnoseCleanSourceReturnsEmpty(t *testing.T) {
	diags := diagnose("$x = 1\n! say $x\n")
	assert.Empty(t, diags)
}

func TestDiagnoseLexErrorReturnsOneDiagnostic(t *testing.T) {
	diags := diagnose(`$x = "unterminated` + "\n")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "lex/")
}

func TestDiagnoseParseErrorReturnsOneDiagnostic(t *testing.T) {
	diags := diagnose("~ if $x\n")
	require.Len(t, diags, 1)
}

func TestUriToPathConvertsFileURI(t *testing.T) {
	path, err := uriToPath("file:///home/user/script.naux")
	require.NoError(t, err)
	if runtime.GOOS == "windows" {
		return
	}
	assert.Equal(t, "/home/user/script.naux", path)
}

func TestUriToPathRejectsInvalidURI(t *testing.T) {
	_, err := uriToPath("://not a uri")
	assert.Error(t, err)
}

func TestNewHandlerStartsWithEmptyContent(t *testing.T) {
	h := NewHandler()
	assert.Empty(t, h.content)
}
