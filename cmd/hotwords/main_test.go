package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "load config")
}

func TestRun_FullPipelineNoPush(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","items":[
			{"title":"全球足球赛事精彩纷呈","url":"https://a"},
			{"title":"别的新闻"}
		]}`))
	}))
	defer server.Close()

	outDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	cfgYaml := `
sources:
  - id: weibo
    alias: 微博
rules:
  groups:
    - required: ["足球"]
      normal: ["赛事", "比赛"]
      key: 足球赛事
output:
  dir: ` + outDir + `
fetch:
  api_base: ` + server.URL + `
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYaml), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, run(ctx, Opts{Config: cfgPath, NoPush: true}))

	// one snapshot file written under the day directory
	files, err := filepath.Glob(filepath.Join(outDir, "*", "txt", "*.txt"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "微博\n1. 全球足球赛事精彩纷呈 [URL:https://a]\n2. 别的新闻\n")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","items":[{"title":"新闻"}]}`))
	}))
	defer server.Close()

	outDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	cfgYaml := `
sources:
  - id: weibo
rules:
  groups:
    - normal: ["新闻"]
      key: news
output:
  dir: ` + outDir + `
fetch:
  api_base: ` + server.URL + `
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYaml), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, run(ctx, Opts{Config: cfgPath, DryRun: true}))

	files, err := filepath.Glob(filepath.Join(outDir, "*", "txt", "*.txt"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
