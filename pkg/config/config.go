package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/askort/hotwords/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Sources []Source `yaml:"sources" json:"sources" jsonschema:"required,description=Hot-list sources to crawl"`

	Rules struct {
		Groups      []WordGroup `yaml:"groups" json:"groups" jsonschema:"required,description=Keyword rule groups evaluated in declared order"`
		FilterWords []string    `yaml:"filter_words" json:"filter_words" jsonschema:"description=Veto words excluding a title from every group"`
	} `yaml:"rules" json:"rules" jsonschema:"description=Keyword matching rules"`

	Output struct {
		Dir string `yaml:"dir" json:"dir" jsonschema:"default=output,description=Base directory for day-scoped snapshot files"`
	} `yaml:"output" json:"output" jsonschema:"description=Snapshot storage configuration"`

	Fetch struct {
		APIBase   string        `yaml:"api_base" json:"api_base" jsonschema:"default=https://newsnow.busiyi.world,description=Base URL of the hot-list API"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Per-request timeout"`
		Interval  time.Duration `yaml:"interval" json:"interval" jsonschema:"default=1s,description=Pause between source requests"`
		Retries   int           `yaml:"retries" json:"retries" jsonschema:"default=3,description=Attempts per source before recording a failure"`
		ProxyURL  string        `yaml:"proxy_url" json:"proxy_url" jsonschema:"description=Optional HTTP proxy URL"`
		UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for outgoing requests"`
	} `yaml:"fetch" json:"fetch" jsonschema:"description=Fetcher configuration"`

	Report struct {
		RankThreshold      int    `yaml:"rank_threshold" json:"rank_threshold" jsonschema:"default=5,description=Ranks at or below are highlighted"`
		MinTotalForPercent int    `yaml:"min_total_for_percent" json:"min_total_for_percent" jsonschema:"description=Minimum seen titles before percentages are reported"`
		Separator          string `yaml:"separator" json:"separator" jsonschema:"description=Separator line between report sections"`
	} `yaml:"report" json:"report" jsonschema:"description=Report formatting configuration"`

	Push struct {
		Feishu struct {
			Enabled    bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable Feishu webhook push"`
			WebhookURL string `yaml:"webhook_url" json:"webhook_url" jsonschema:"description=Feishu webhook URL (env expansion supported)"`
		} `yaml:"feishu" json:"feishu" jsonschema:"description=Feishu push configuration"`
		Bark struct {
			Enabled   bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable Bark push"`
			ServerURL string `yaml:"server_url" json:"server_url" jsonschema:"default=https://api.day.app,description=Bark server URL"`
			DeviceKey string `yaml:"device_key" json:"device_key" jsonschema:"description=Bark device key (env expansion supported)"`
		} `yaml:"bark" json:"bark" jsonschema:"description=Bark push configuration"`
		ContinueIfAllOff bool `yaml:"continue_if_all_off" json:"continue_if_all_off" jsonschema:"default=true,description=Keep crawling when every push target is disabled"`
	} `yaml:"push" json:"push" jsonschema:"description=Push delivery configuration"`
}

// Source is one configured hot-list origin
type Source struct {
	ID    string `yaml:"id" json:"id" jsonschema:"required,description=Stable source id"`
	Alias string `yaml:"alias" json:"alias" jsonschema:"description=Display alias, defaults to the id"`
	Kind  string `yaml:"kind" json:"kind" jsonschema:"default=api,enum=api,enum=rss,description=Source kind"`
	URL   string `yaml:"url" json:"url" jsonschema:"description=Feed URL, required for rss sources"`
}

// WordGroup is one keyword rule as configured
type WordGroup struct {
	Required []string `yaml:"required" json:"required" jsonschema:"description=Words that must all be present"`
	Normal   []string `yaml:"normal" json:"normal" jsonschema:"description=Words of which at least one must be present"`
	Key      string   `yaml:"key" json:"key" jsonschema:"description=Group label, defaults to the joined word lists"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	for i := range c.Sources {
		if c.Sources[i].Alias == "" {
			c.Sources[i].Alias = c.Sources[i].ID
		}
		if c.Sources[i].Kind == "" {
			c.Sources[i].Kind = "api"
		}
	}
	for i := range c.Rules.Groups {
		if c.Rules.Groups[i].Key == "" {
			c.Rules.Groups[i].Key = deriveKey(c.Rules.Groups[i])
		}
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}

	if c.Fetch.APIBase == "" {
		c.Fetch.APIBase = "https://newsnow.busiyi.world"
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 10 * time.Second
	}
	if c.Fetch.Interval == 0 {
		c.Fetch.Interval = time.Second
	}
	if c.Fetch.Retries == 0 {
		c.Fetch.Retries = 3
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}

	if c.Report.RankThreshold == 0 {
		c.Report.RankThreshold = 5
	}
	if c.Report.Separator == "" {
		c.Report.Separator = "━━━━━━━━━━━━━━━━━━━"
	}

	if c.Push.Bark.ServerURL == "" {
		c.Push.Bark.ServerURL = "https://api.day.app"
	}
}

// deriveKey labels a group by its normal words when present, else by its
// required words
func deriveKey(g WordGroup) string {
	words := g.Normal
	if len(words) == 0 {
		words = g.Required
	}
	key := ""
	for i, w := range words {
		if i > 0 {
			key += "+"
		}
		key += w
	}
	return key
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	seenID := map[string]bool{}
	seenAlias := map[string]bool{}
	for _, src := range cfg.Sources {
		if src.ID == "" {
			return fmt.Errorf("source id is required")
		}
		if seenID[src.ID] {
			return fmt.Errorf("duplicate source id %q", src.ID)
		}
		seenID[src.ID] = true
		// aliases key the on-disk history, two ids sharing one alias would
		// merge their histories on read
		if seenAlias[src.Alias] {
			return fmt.Errorf("duplicate source alias %q", src.Alias)
		}
		seenAlias[src.Alias] = true
		switch src.Kind {
		case "api":
		case "rss":
			if src.URL == "" {
				return fmt.Errorf("source %s: rss kind requires url", src.ID)
			}
		default:
			return fmt.Errorf("source %s: unknown kind %q", src.ID, src.Kind)
		}
	}

	seenKey := map[string]bool{}
	for _, g := range cfg.Rules.Groups {
		if len(g.Required) == 0 && len(g.Normal) == 0 {
			return fmt.Errorf("rule group %q has no words", g.Key)
		}
		// keys are map keys for statistics, a duplicate would silently merge
		// two rules' counts
		if seenKey[g.Key] {
			return fmt.Errorf("duplicate rule group key %q", g.Key)
		}
		seenKey[g.Key] = true
	}

	if cfg.Report.RankThreshold < 1 {
		return fmt.Errorf("report.rank_threshold must be at least 1")
	}
	if cfg.Fetch.Retries < 1 {
		return fmt.Errorf("fetch.retries must be at least 1")
	}

	return nil
}

// WordGroups returns the configured rule groups as domain values, in declared
// order
func (c *Config) WordGroups() []domain.WordGroup {
	groups := make([]domain.WordGroup, 0, len(c.Rules.Groups))
	for _, g := range c.Rules.Groups {
		groups = append(groups, domain.WordGroup{Required: g.Required, Normal: g.Normal, Key: g.Key})
	}
	return groups
}

// FilterWords returns the configured veto words
func (c *Config) FilterWords() []string { return c.Rules.FilterWords }

// AliasToID returns the live alias→id table used to re-key alias-keyed
// history
func (c *Config) AliasToID() map[string]string {
	out := make(map[string]string, len(c.Sources))
	for _, src := range c.Sources {
		out[src.Alias] = src.ID
	}
	return out
}
