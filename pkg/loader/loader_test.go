package loader

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/transport"
)

const csvText = "LIGA,EQUIPA CASA,EQUIPA VISITANTE,RESULTADO HT CASA,RESULTADO HT FORA,RESULTADO FT CASA,RESULTADO FT FORA\n" +
	"PremierLeague,A,B,1,0,2,1\n" +
	"PremierLeague,C,D,x,0,2,1\n"

func server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/plain.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, csvText)
	})
	mux.HandleFunc("/gzip.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, csvText)
		gz.Close()
	})
	mux.HandleFunc("/deflate.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "deflate")
		zw := zlib.NewWriter(w)
		io.WriteString(zw, csvText)
		zw.Close()
	})
	mux.HandleFunc("/brotli.csv", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		io.WriteString(bw, csvText)
		bw.Close()
	})
	mux.HandleFunc("/seasons/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body><a href="/about">About</a><a href="../plain.csv">Season 2024</a></body></html>`)
	})
	mux.HandleFunc("/empty.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><body><a href="/about">About</a></body></html>`)
	})
	mux.HandleFunc("/missing.csv", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadURLEncodings(t *testing.T) {
	srv := server(t)
	l := New(transport.ClientOptions{})

	for _, path := range []string{"/plain.csv", "/gzip.csv", "/deflate.csv", "/brotli.csv"} {
		doc, err := l.Load(context.Background(), srv.URL+path)
		require.NoError(t, err, path)
		assert.Equal(t, csvText, doc.Text, path)
		assert.Equal(t, srv.URL+path, doc.Name)
	}
}

func TestLoadFollowsCSVLink(t *testing.T) {
	srv := server(t)
	l := New(transport.ClientOptions{})

	doc, res, err := l.LoadRecords(context.Background(), srv.URL+"/seasons/index.html", match.Options{})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/plain.csv", doc.Name)
	require.Len(t, res.Records, 1)
	assert.Equal(t, []int{2}, res.Skipped)
}

func TestLoadURLErrors(t *testing.T) {
	srv := server(t)
	l := New(transport.ClientOptions{})

	_, err := l.Load(context.Background(), srv.URL+"/empty.html")
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = l.Load(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = l.Load(context.Background(), "ftp://example.com/x.csv")
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = l.Load(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestLoadFileAndStdin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matches.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvText), 0o644))

	l := New(transport.ClientOptions{})
	doc, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "matches.csv", doc.Name)
	assert.Equal(t, csvText, doc.Text)

	doc, err = l.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, csvText, doc.Text)

	l.stdin = strings.NewReader(csvText)
	doc, err = l.Load(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, "stdin", doc.Name)

	_, err = l.Load(context.Background(), filepath.Join(dir, "nope.csv"))
	assert.Error(t, err)
}

func TestLoadRecordsReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("LIGA\nX"), 0o644))

	_, _, err := New(transport.ClientOptions{}).LoadRecords(context.Background(), path, match.Options{})
	assert.ErrorIs(t, err, match.ErrMissingColumns)
	assert.Contains(t, err.Error(), "bad.csv")
}
