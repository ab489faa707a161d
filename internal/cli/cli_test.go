package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAsker struct {
	queries []string
	result  *models.Recommendation
	err     error
}

func (s *stubAsker) Ask(_ context.Context, query string) (*models.Recommendation, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubIngester struct {
	paths []string
	count int
	err   error
}

func (s *stubIngester) IngestFile(_ context.Context, path string) (int, error) {
	s.paths = append(s.paths, path)
	return s.count, s.err
}

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		askJSON = false
		askContext = false
		ingestChunkSize = 0
		ingestChunkOverlap = -1
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func useAsker(t *testing.T, a asker) {
	t.Helper()
	closed := false
	old := buildAsker
	buildAsker = func(context.Context) (asker, func() error, error) {
		return a, func() error { closed = true; return nil }, nil
	}
	t.Cleanup(func() {
		buildAsker = old
		assert.True(t, closed, "pipeline should be closed")
	})
}

func TestVersionCmd(t *testing.T) {
	version = "1.4.0"
	t.Cleanup(func() { version = "dev" })

	out, stderr, err := runRoot(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "albumatlas version 1.4.0\n", out)
	assert.Empty(t, stderr)
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	a := &stubAsker{result: &models.Recommendation{
		Query:   "something dreamy",
		Context: "Mercurial World by Magdalena Bay",
		Answer:  "Try Mercurial World.",
	}}
	useAsker(t, a)

	out, stderr, err := runRoot(t, "ask", "something", "dreamy")

	require.NoError(t, err)
	assert.Equal(t, []string{"something dreamy"}, a.queries)
	assert.Equal(t, "Try Mercurial World.\n", out)
	assert.Empty(t, stderr)
}

func TestAskCmd_ShowContext(t *testing.T) {
	useAsker(t, &stubAsker{result: &models.Recommendation{
		Context: "Mercurial World by Magdalena Bay",
		Answer:  "Try Mercurial World.",
	}})

	out, stderr, err := runRoot(t, "ask", "--show-context", "dreamy")

	require.NoError(t, err)
	assert.Contains(t, out, "Context:\nMercurial World by Magdalena Bay\n")
	assert.Contains(t, out, "Try Mercurial World.")
	assert.Empty(t, stderr)
}

func TestAskCmd_JSON(t *testing.T) {
	useAsker(t, &stubAsker{result: &models.Recommendation{Query: "dreamy", Answer: "Try **Mercurial World**."}})

	out, stderr, err := runRoot(t, "ask", "--json", "dreamy")

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"query":"dreamy","recommendation":"Try **Mercurial World**."}`, out)
	assert.Empty(t, stderr)
}

func TestAskCmd_Errors(t *testing.T) {
	t.Run("requires a query", func(t *testing.T) {
		_, _, err := runRoot(t, "ask")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
	})

	t.Run("blank query", func(t *testing.T) {
		_, _, err := runRoot(t, "ask", "   ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query must not be empty")
	})

	t.Run("pipeline failure", func(t *testing.T) {
		useAsker(t, &stubAsker{err: errors.New("failed to embed query: quota exceeded")})

		out, stderr, err := runRoot(t, "ask", "dreamy")

		require.Error(t, err)
		assert.Empty(t, out)
		assert.Contains(t, stderr, "quota exceeded")
		assert.Contains(t, err.Error(), "recommendation failed")
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

func TestIngestCmd(t *testing.T) {
	ing := &stubIngester{count: 12}
	var gotSize, gotOverlap int
	old := buildIngester
	buildIngester = func(_ context.Context, chunkSize, chunkOverlap int) (fileIngester, func() error, error) {
		gotSize, gotOverlap = chunkSize, chunkOverlap
		return ing, nil, nil
	}
	t.Cleanup(func() { buildIngester = old })

	out, stderr, err := runRoot(t, "ingest", "--chunk-size", "500", "albums.txt")

	require.NoError(t, err)
	assert.Equal(t, []string{"albums.txt"}, ing.paths)
	assert.Equal(t, 500, gotSize)
	assert.Equal(t, -1, gotOverlap)
	assert.Equal(t, "Stored 12 chunks from albums.txt\n", out)
	assert.Empty(t, stderr)
}

func TestIngestCmd_Failure(t *testing.T) {
	old := buildIngester
	buildIngester = func(context.Context, int, int) (fileIngester, func() error, error) {
		return &stubIngester{err: errors.New("failed to embed chunk 3: timeout")}, nil, nil
	}
	t.Cleanup(func() { buildIngester = old })

	_, _, err := runRoot(t, "ingest", "albums.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
}

func TestIngestCmd_RequiresFile(t *testing.T) {
	_, _, err := runRoot(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_WritesToProcessStdout(t *testing.T) {
	useAsker(t, &stubAsker{result: &models.Recommendation{Answer: "Try Mercurial World."}})

	r, w, err := os.Pipe()
	require.NoError(t, err)
	oldStdout := os.Stdout
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = oldStdout })

	stderr := new(bytes.Buffer)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs([]string{"ask", "dreamy"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})

	runErr := rootCmd.Execute()
	require.NoError(t, w.Close())
	captured, err := io.ReadAll(r)
	require.NoError(t, err)

	require.NoError(t, runErr)
	assert.Equal(t, "Try Mercurial World.\n", string(captured))
	assert.Empty(t, stderr.String())
}
