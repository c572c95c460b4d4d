package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/bryanwahyu/string-analyzer/internal/application/analysis"
	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"analyze", "parse", "filter"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestAnalyzeJSON(t *testing.T) {
	out, _, err := execute(t, "", "analyze", "racecar")
	require.NoError(t, err)

	var got struct {
		ID         domain.ID         `json:"id"`
		Properties domain.Properties `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, domain.ID("e00f9ef51a95f6e854862eed28dc0f1a68f154d9f75ddd841ab00de6ede9209b"), got.ID)
	assert.True(t, got.Properties.IsPalindrome)
	assert.Equal(t, 7, got.Properties.Length)
}

func TestAnalyzeText(t *testing.T) {
	out, _, err := execute(t, "", "--format", "text", "analyze", "hello world")
	require.NoError(t, err)
	assert.Contains(t, out, "word_count:        2\n")
	assert.Contains(t, out, "is_palindrome:     false\n")
	assert.Contains(t, out, `  "l" 3`)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "", "--format", "xml", "analyze", "x")
	assert.ErrorContains(t, err, "invalid format")
}

func TestParse(t *testing.T) {
	out, _, err := execute(t, "", "parse", "strings", "longer", "than", "10", "characters")
	require.NoError(t, err)
	assert.JSONEq(t, `{"min_length":11}`, out)

	out, _, err = execute(t, "", "--format", "text", "parse", "single word palindromic strings")
	require.NoError(t, err)
	assert.Equal(t, "is_palindrome=true\nword_count=1\n", out)

	_, errOut, err := execute(t, "", "parse", "tell me a joke")
	assert.ErrorIs(t, err, domain.ErrUnparseable)
	assert.Contains(t, errOut, "hint: try phrases like")
}

func TestFilterFromStdin(t *testing.T) {
	in := "racecar\nhello world\nnoon\n\nracecar\n"
	out, errOut, err := execute(t, in, "filter", "palindromic strings")
	require.NoError(t, err)
	assert.Contains(t, errOut, "line 5: duplicate")

	var res appanalysis.NaturalLanguageResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "racecar", res.Data[0].Value)
	assert.Equal(t, "noon", res.Data[1].Value)
}

func TestFilterFromFileText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc\nxyz\n"), 0o600))

	out, _, err := execute(t, "", "--format", "text", "filter", "-i", path, "strings containing the letter z")
	require.NoError(t, err)
	assert.Equal(t, "xyz\n", out)

	out, _, err = execute(t, "", "--format", "text", "filter", "-i", path, "palindromic strings")
	require.NoError(t, err)
	assert.Equal(t, appanalysis.NoMatchMessage+"\n", out)
}

func TestFilterLongLines(t *testing.T) {
	long := strings.Repeat("ab", 50_000)
	in := "short\n" + long + "\n"

	out, _, err := execute(t, in, "filter", "strings longer than 70000 characters")
	require.NoError(t, err)

	var res appanalysis.NaturalLanguageResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 1, res.Count)
	assert.Equal(t, 100_000, res.Data[0].Properties.Length)
}
