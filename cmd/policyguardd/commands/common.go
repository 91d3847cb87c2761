package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jholhewres/policyguard/internal/config"
	"github.com/jholhewres/policyguard/internal/profile"
	"github.com/jholhewres/policyguard/pkg/kernel"
)

// resolveConfig loads the config named by --config, falling back to
// standard-location discovery, falling back to in-memory defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, string) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")

	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			slog.Warn("failed to load config, using defaults", "path", path, "error", err)
			return config.Default(), ""
		}
		return cfg, path
	}

	if found := config.Find(); found != "" {
		cfg, err := config.Load(found)
		if err != nil {
			slog.Warn("failed to load discovered config, using defaults", "path", found, "error", err)
			return config.Default(), ""
		}
		return cfg, found
	}

	return config.Default(), ""
}

// newLogger builds the slog logger policyguardd uses for the lifetime of a
// command, honoring --verbose and the config's logging section.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

// newState builds the AppState the kernel evaluates calls against, for
// scope/role scope combinations supplied on the command line. The
// configured active profile, if any, is installed as a PolicyOverride so
// every Authorize call against this state runs through it.
func newState(cfg *config.Config, scope kernel.ToolScope, role kernel.UserRole) *kernel.StaticState {
	st := kernel.NewStaticState(config.ResolvePlatform(cfg), cfg.SafeDirectories)
	st.SetScope(scope)
	st.SetRole(role)

	if p, ok := resolveActiveProfile(cfg); ok {
		st.SetPolicyOverride(func(base kernel.ToolPolicy) kernel.ToolPolicy {
			return profile.Apply(base, p)
		})
	}

	return st
}

// resolveActiveProfile loads cfg.ProfilesPath (if set) and resolves
// cfg.ActiveProfile against the built-in profiles and the loaded custom
// ones, built-in names taking precedence.
// An empty ActiveProfile or an unknown name resolves to no override,
// which leaves the scope's base ToolPolicy untouched.
func resolveActiveProfile(cfg *config.Config) (profile.Profile, bool) {
	if cfg.ActiveProfile == "" {
		return profile.Profile{}, false
	}
	store := profile.NewStore(cfg.ProfilesPath)
	if cfg.ProfilesPath != "" {
		if err := store.Load(); err != nil {
			slog.Warn("failed to load custom profiles, falling back to built-ins", "path", cfg.ProfilesPath, "error", err)
		}
	}
	return store.Resolve(cfg.ActiveProfile)
}

// parseScope maps a CLI string onto kernel.ToolScope.
func parseScope(s string) (kernel.ToolScope, error) {
	switch s {
	case "local_ai":
		return kernel.ScopeLocalAI, nil
	case "cloud_ai":
		return kernel.ScopeCloudAI, nil
	case "user_direct":
		return kernel.ScopeUserDirect, nil
	default:
		return "", fmt.Errorf("unknown scope %q (want local_ai, cloud_ai, or user_direct)", s)
	}
}

// parseRole maps a CLI string onto kernel.UserRole.
func parseRole(s string) (kernel.UserRole, error) {
	switch s {
	case "standard":
		return kernel.RoleStandard, nil
	case "admin":
		return kernel.RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q (want standard or admin)", s)
	}
}
