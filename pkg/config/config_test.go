package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsAndParsing(t *testing.T) {
	path := writeConfig(t, `
sources:
  - id: weibo
    alias: 微博
  - id: tech-news
    kind: rss
    url: https://example.com/feed.xml
rules:
  groups:
    - normal: ["世界杯"]
      key: 世界杯
    - required: ["足球"]
      normal: ["赛事", "比赛"]
      key: 足球赛事
  filter_words: ["虚假"]
push:
  continue_if_all_off: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "微博", cfg.Sources[0].Alias)
	assert.Equal(t, "api", cfg.Sources[0].Kind, "kind defaults to api")
	assert.Equal(t, "tech-news", cfg.Sources[1].Alias, "alias defaults to the id")

	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "https://newsnow.busiyi.world", cfg.Fetch.APIBase)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, time.Second, cfg.Fetch.Interval)
	assert.Equal(t, 3, cfg.Fetch.Retries)
	assert.Equal(t, 5, cfg.Report.RankThreshold)
	assert.Equal(t, "https://api.day.app", cfg.Push.Bark.ServerURL)

	groups := cfg.WordGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "世界杯", groups[0].Key)
	assert.Equal(t, []string{"足球"}, groups[1].Required)
	assert.Equal(t, []string{"虚假"}, cfg.FilterWords())
	assert.Equal(t, map[string]string{"微博": "weibo", "tech-news": "tech-news"}, cfg.AliasToID())
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("HW_TEST_WEBHOOK", "https://open.feishu.cn/hook/abc")
	path := writeConfig(t, `
sources:
  - id: weibo
rules:
  groups:
    - normal: ["比赛"]
      key: games
push:
  feishu:
    enabled: true
    webhook_url: ${HW_TEST_WEBHOOK}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://open.feishu.cn/hook/abc", cfg.Push.Feishu.WebhookURL)
}

func TestLoad_DerivedGroupKey(t *testing.T) {
	path := writeConfig(t, `
sources:
  - id: weibo
rules:
  groups:
    - normal: ["世界杯", "欧冠"]
    - required: ["足球"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "世界杯+欧冠", cfg.Rules.Groups[0].Key, "normal words label the group")
	assert.Equal(t, "足球", cfg.Rules.Groups[1].Key, "required words label a normal-less group")
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "duplicate group key",
			yaml: `
sources:
  - id: weibo
rules:
  groups:
    - normal: ["世界杯"]
      key: same
    - normal: ["欧冠"]
      key: same
`,
			wantErr: "duplicate rule group key",
		},
		{
			name: "group without words",
			yaml: `
sources:
  - id: weibo
rules:
  groups:
    - key: empty
`,
			wantErr: "has no words",
		},
		{
			name: "duplicate alias",
			yaml: `
sources:
  - id: weibo
    alias: 微博
  - id: weibo2
    alias: 微博
rules:
  groups:
    - normal: ["比赛"]
      key: games
`,
			wantErr: "duplicate source alias",
		},
		{
			name: "duplicate id",
			yaml: `
sources:
  - id: weibo
  - id: weibo
rules:
  groups:
    - normal: ["比赛"]
      key: games
`,
			wantErr: "duplicate source id",
		},
		{
			name: "rss without url",
			yaml: `
sources:
  - id: feed1
    kind: rss
rules:
  groups:
    - normal: ["比赛"]
      key: games
`,
			wantErr: "rss kind requires url",
		},
		{
			name: "unknown kind",
			yaml: `
sources:
  - id: weibo
    kind: scraper
rules:
  groups:
    - normal: ["比赛"]
      key: games
`,
			wantErr: "unknown kind",
		},
		{
			name:    "no sources",
			yaml:    "rules:\n  groups:\n    - normal: [\"比赛\"]\n      key: games\n",
			wantErr: "at least one source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestGenerateSchema(t *testing.T) {
	schema, err := GenerateSchema()
	require.NoError(t, err)
	assert.NotNil(t, schema)
}
