package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thiremani/cvxsym/canon"
)

const chebyshevSrc = `# Chebyshev center of a triangle
variable r, x(2)
parameter A(3, 2), B(3)
maximize r
A[0, :].T * x + r * norm(A[0, :]) <= B[0]
A[1, :].T * x + r * norm(A[1, :]) <= B[1]
A[2, :].T * x + r * norm(A[2, :]) <= B[2]
r >= 0
`

const chebyshevParams = `A:
  - [-1, 1]
  - [1, 1]
  - [0, -1]
B: [3, 3, 0]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CVXCACHE", filepath.Join(dir, "cache"))
	src := writeFile(t, dir, "cheb.cvx", chebyshevSrc)
	params := writeFile(t, dir, "cheb.yaml", chebyshevParams)

	for _, extra := range [][]string{{"--no-cache"}, {}, {}} {
		args := append([]string{"compile", src, "--params", params, "-f", "json"}, extra...)
		out, err := run(t, args...)
		require.NoError(t, err)

		var res fileResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.Equal(t, canon.StageCanon, res.Stage)
		require.True(t, res.Maximized)
		require.NotNil(t, res.Numeric)
		require.Equal(t, []float64{-1, 0, 0}, res.Numeric.C)
		require.Equal(t, 4, res.Numeric.Dims.L)
		require.Equal(t, []string{"r", "x[0][0]", "x[1][0]"}, res.Symbolic.Vars)
		require.Equal(t, "-1.0", res.Symbolic.C[0])
	}
}

func TestCompileStages(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "sq.cvx", "variable x\nminimize square(x)\n")

	out, err := run(t, "compile", src, "--stage", "smith", "--no-cache")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{
		"# " + src + " (smith)",
		"minimize sym0",
		"(sym0 + (-1.0 * square(x))) == 0",
	}, lines)

	out, err = run(t, "compile", src, "--no-cache")
	require.NoError(t, err)
	require.Contains(t, out, "vars = [x, sym0]\n")
	require.Contains(t, out, "c = [0.0, 1.0]\n")
	require.Contains(t, out, "A = none\n")
	require.Contains(t, out, "dims = l: 0, q: [3]\n")
}

func TestCompileMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.cvx", "variable x\nminimize x\nx >= 1\n")
	b := writeFile(t, dir, "b.cvx", "variable y\nminimize y\ny >= 2\n")

	out, err := run(t, "compile", a, b, "--stage", "graph", "--no-cache")
	require.NoError(t, err)
	ia := strings.Index(out, "# "+a)
	ib := strings.Index(out, "# "+b)
	require.True(t, ia >= 0 && ib > ia, "outputs out of order:\n%s", out)
}

func TestCompileErrorsReported(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bad.cvx", "variable x\nminimize y\nx + 1\n")

	_, err := run(t, "compile", src, "--no-cache")
	require.Error(t, err)
	require.Contains(t, err.Error(), src+":3:1: expression (x + 1) is not a constraint")

	src = writeFile(t, dir, "undef.cvx", "variable x\nminimize y\n")
	_, err = run(t, "compile", src, "--no-cache")
	require.Error(t, err)
	require.Contains(t, err.Error(), src+":2:10: undefined: y")

	_, err = run(t, "compile", src, "--stage", "nope")
	require.Error(t, err)
	_, err = run(t, "compile", src, "--format", "xml")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "cvxsym dev ("), out)
}

func TestLoadParams(t *testing.T) {
	values, err := loadParams([]byte("p: 2\nv: [1, 2.5]\n"))
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"p": 2, "v[0][0]": 1, "v[1][0]": 2.5}, values)

	_, err = loadParams([]byte("p: [unclosed"))
	require.Error(t, err)
}
