package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/controlplane-com/kuery/pkg/filters/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// execute runs the root command with args and stdin, returning stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(discardLogger())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEscapeCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name: "args",
			args: []string{"escape", "a(b)c", "foo and bar"},
			want: "a\\(b\\)c\nfoo \\and bar\n",
		},
		{
			name:  "stdin lines",
			stdin: "not foo\nhost:web\r\n",
			args:  []string{"escape"},
			want:  "\\not foo\nhost\\:web\n",
		},
		{
			name: "quotes",
			args: []string{"escape", "--quotes", `say "hi" (now)`},
			want: "say \\\"hi\\\" (now)\n",
		},
		{
			name: "empty stdin",
			args: []string{"escape"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEscapeCommand_Table(t *testing.T) {
	out, _, err := execute(t, "", "escape", "--table", "a:b")
	require.NoError(t, err)

	assert.Contains(t, out, "INPUT")
	assert.Contains(t, out, "ESCAPED")
	assert.Contains(t, out, `"a:b"`)
	assert.Contains(t, out, `a\:b`)
}

func TestMatchAndPhraseCommands(t *testing.T) {
	out, _, err := execute(t, "", "match", "message", "foo or bar")
	require.NoError(t, err)
	assert.Equal(t, "message:foo \\or bar\n", out)

	out, _, err = execute(t, "", "phrase", "message", `say "hi"`)
	require.NoError(t, err)
	assert.Equal(t, "message:\"say \\\"hi\\\"\"\n", out)

	_, _, err = execute(t, "", "match", "message")
	assert.Error(t, err)
}

func TestFilterCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.yaml")
	yaml := `errors_only:
  conditions:
    - field: log.level
      op: one_of
      values: [error, critical]
slow:
  match: all
  conditions:
    - {field: event.duration, op: gt, values: ["5000"]}
    - {field: url.path, op: exists}
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	out, _, err := execute(t, "", "filter", "errors_only", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "log.level:(error or critical)\n", out)

	out, _, err = execute(t, "", "filter", "slow", "-c", path)
	require.NoError(t, err)
	assert.Equal(t, "(event.duration > 5000) and (url.path:*)\n", out)

	out, _, err = execute(t, "", "filter", "--list", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "errors_only\nslow\n", out)

	_, _, err = execute(t, "", "filter", "missing", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, _, err = execute(t, "", "filter", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	_, _, err = execute(t, "", "filter", "errors_only", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name:  "one clause per row",
			stdin: "log.level,error\nmessage,foo and bar\n",
			args:  []string{"build", "-f", "-"},
			want:  "log.level:error\nmessage:foo \\and bar\n",
		},
		{
			name:  "skip header",
			stdin: "field,value,op\nuser.id,,exists\n",
			args:  []string{"build", "-f", "-", "--skip-header"},
			want:  "user.id:*\n",
		},
		{
			name:  "batched with and",
			stdin: "a,1\nb,2\nc,3\n",
			args:  []string{"build", "-f", "-", "-b", "2", "--combinator", "and"},
			want:  "(a:1) and (b:2)\nc:3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestBuildCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.tsv")
	require.NoError(t, os.WriteFile(path, []byte("message\tfoo, bar\n"), 0644))

	out, _, err := execute(t, "", "build", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "message:foo, bar\n", out)
}

func TestBuildCommand_Errors(t *testing.T) {
	_, _, err := execute(t, "", "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")

	_, _, err = execute(t, "a,1\n", "build", "-f", "-", "--combinator", "xor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --combinator")

	_, _, err = execute(t, "", "build", "-f", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening CSV file")
}

func TestProcessRows_ParseErrors(t *testing.T) {
	input := "log.level,error\n,missing\nn,x,between\nhost.name,web-01\n"
	opts := &buildOptions{batchSize: 1, combinator: "or"}

	var stdout, stderr bytes.Buffer
	err := processRows(strings.NewReader(input), opts, ',', &stdout, &stderr, discardLogger())
	require.Error(t, err)

	var parseErr *parser.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)
	assert.Contains(t, err.Error(), "2 rows skipped")

	// Valid rows are still emitted
	assert.Equal(t, "log.level:error\nhost.name:web-01\n", stdout.String())

	errOut := stderr.String()
	assert.Contains(t, errOut, "warning: line 2")
	assert.Contains(t, errOut, "warning: line 3")
	assert.Contains(t, errOut, "Rows processed successfully: 2")
	assert.Contains(t, errOut, "Rows skipped due to errors: 2")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "kuery version "+version+"\n", out)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("KUERY_TEST_VALUE", "set")
	assert.Equal(t, "set", getEnv("KUERY_TEST_VALUE", "default"))
	assert.Equal(t, "default", getEnv("KUERY_TEST_UNSET", "default"))

	t.Setenv("KUERY_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("KUERY_TEST_INT", 1))

	t.Setenv("KUERY_TEST_INT", "nope")
	assert.Equal(t, 1, getEnvInt("KUERY_TEST_INT", 1))
}
