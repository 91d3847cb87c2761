// Package config loads policyguardd's on-disk configuration: safe
// directories, platform override, CloudAI pairing requirements, and the
// logging/audit knobs the daemon reads at startup. Resolution order is
// defaults, then the YAML file, then environment variable overrides for
// secrets, with dotenv files loaded ahead of everything else.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jholhewres/policyguard/internal/platform"
	"github.com/jholhewres/policyguard/pkg/kernel"
)

// LoggingConfig controls the slog handler policyguardd builds at startup.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// AuditConfig controls the SQLite audit trail and its pruning cadence.
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	RetainFor string `yaml:"retain_for"` // Go duration string, e.g. "720h"
	PruneCron string `yaml:"prune_cron"` // robfig/cron expression
}

// RateLimitConfig bounds how many tool calls a scope may make in a
// sliding window, a supplement beyond the base ToolPolicy table. The
// limit applies to every CloudAI directive the serve command receives,
// not only to destructive tools.
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	MaxPerMinute  int  `yaml:"max_per_minute"`
}

// CloudAIConfig configures the Discord ingress and the pairing-secret
// requirement a remote operator must satisfy before its tool calls reach
// the kernel at all.
type CloudAIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	DiscordToken   string `yaml:"discord_token"`
	AllowedGuilds  []string `yaml:"allowed_guilds"`
	RequirePairing bool   `yaml:"require_pairing"`
}

// Config is the root on-disk configuration document.
type Config struct {
	Platform        string          `yaml:"platform"` // "", linux, macos, windows — "" autodetects
	SafeDirectories []string        `yaml:"safe_directories"`
	Logging         LoggingConfig   `yaml:"logging"`
	Audit           AuditConfig     `yaml:"audit"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	CloudAI         CloudAIConfig   `yaml:"cloud_ai"`
	ActiveProfile   string          `yaml:"active_profile"`
	ProfilesPath    string          `yaml:"profiles_path"` // custom profiles.yaml; "" means built-ins only
}

// Default returns a Config with the same defaults a fresh install would
// run with: a single safe root under the user's home directory, JSON
// logging, and a daily audit-pruning job.
func Default() *Config {
	home, err := os.UserHomeDir()
	safeDir := filepath.Join(home, "PolicyGuardFiles")
	if err != nil {
		safeDir = "PolicyGuardFiles"
	}
	return &Config{
		SafeDirectories: []string{safeDir},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Audit: AuditConfig{
			Enabled:   true,
			Path:      "policyguard-audit.db",
			RetainFor: "720h",
			PruneCron: "@daily",
		},
		RateLimit: RateLimitConfig{
			Enabled:      true,
			MaxPerMinute: 10,
		},
		CloudAI: CloudAIConfig{
			RequirePairing: true,
		},
		ActiveProfile: "full",
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default}, and bare $VAR references
// inside YAML scalars, expanded before parsing.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}|\$([A-Z_][A-Z0-9_]*)`)

func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		varName, def, bare := sub[1], sub[2], sub[3]
		if bare != "" {
			if val, ok := os.LookupEnv(bare); ok {
				return val
			}
			return match
		}
		if varName != "" {
			if val, ok := os.LookupEnv(varName); ok {
				return val
			}
			return def
		}
		return match
	})
}

// Load reads and parses a policyguardd config file. It loads .env/.env.local
// first (silently, godotenv never overwrites already-set variables), then
// expands environment references in the YAML text, then unmarshals onto a
// copy of Default() so unset sections keep sane values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config yaml: %w", err)
	}

	if dtok := os.Getenv("POLICYGUARD_DISCORD_TOKEN"); dtok != "" {
		cfg.CloudAI.DiscordToken = dtok
	}

	return cfg, nil
}

// Find searches standard locations for a config file, returning "" if none
// is found.
func Find() string {
	candidates := []string{
		"policyguard.yaml",
		"policyguard.yml",
		"configs/policyguard.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "policyguard", "config.yaml"),
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Save writes cfg to path as YAML, stripping the resolved Discord token so
// secrets never land on disk in plaintext (it is expected to live in the
// OS keyring or the environment instead).
func Save(cfg *Config, path string) error {
	sanitized := *cfg
	if sanitized.CloudAI.DiscordToken != "" && !strings.HasPrefix(sanitized.CloudAI.DiscordToken, "$") {
		sanitized.CloudAI.DiscordToken = "${POLICYGUARD_DISCORD_TOKEN}"
	}

	data, err := yaml.Marshal(&sanitized)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0o600)
}

// ResolvePlatform returns the kernel.Platform the config names, or detects
// the host's when Platform is empty.
func ResolvePlatform(cfg *Config) kernel.Platform {
	switch cfg.Platform {
	case "linux":
		return kernel.PlatformLinux
	case "macos":
		return kernel.PlatformMacOS
	case "windows":
		return kernel.PlatformWindows
	default:
		return platform.Detect()
	}
}
