package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/policyguard/internal/audit"
	"github.com/jholhewres/policyguard/internal/ingress/discordingress"
	"github.com/jholhewres/policyguard/pkg/kernel"
)

// newServeCmd creates the `policyguardd serve` daemon command: it opens
// the audit log, starts its pruning cron, and — if configured — connects
// the CloudAI Discord ingress, routing every incoming directive through
// kernel.Authorize.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the PolicyGuard daemon (audit log + CloudAI ingress)",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, configPath := resolveConfig(cmd)
	logger := newLogger(cmd, cfg)

	if configPath != "" {
		logger.Info("config loaded", "path", configPath)
	} else {
		logger.Info("no config file found, running with defaults")
	}

	var auditLog *audit.Log
	if cfg.Audit.Enabled {
		var err error
		auditLog, err = audit.Open(cfg.Audit.Path, logger)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer auditLog.Close()

		retainFor, err := time.ParseDuration(cfg.Audit.RetainFor)
		if err != nil {
			retainFor = 30 * 24 * time.Hour
		}
		if err := auditLog.StartPruning(cfg.Audit.PruneCron, retainFor); err != nil {
			logger.Warn("failed to start audit pruning", "error", err)
		}
	}

	var limiter *audit.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = audit.NewRateLimiter(cfg.RateLimit.MaxPerMinute)
	}

	state := newState(cfg, kernel.ScopeCloudAI, kernel.RoleStandard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ingress *discordingress.Ingress
	if cfg.CloudAI.Enabled {
		if cfg.CloudAI.DiscordToken == "" {
			logger.Warn("cloud_ai.enabled is true but no discord_token configured, skipping ingress")
		} else {
			handler := func(call kernel.ToolCall) string {
				if limiter != nil && !limiter.Allow(kernel.ScopeCloudAI, time.Now()) {
					return "rate limit exceeded for this scope, try again shortly"
				}
				err := kernel.Authorize(call, state)
				if auditLog != nil {
					_ = auditLog.Record(call, kernel.ScopeCloudAI, err)
				}
				return formatReply(call, err)
			}

			ingress = discordingress.New(discordingress.Config{
				Token:          cfg.CloudAI.DiscordToken,
				AllowedGuilds:  cfg.CloudAI.AllowedGuilds,
				RequirePairing: cfg.CloudAI.RequirePairing,
			}, handler, logger)

			if err := ingress.Connect(ctx); err != nil {
				logger.Error("failed to connect CloudAI ingress", "error", err)
			} else {
				logger.Info("CloudAI ingress connected")
			}
		}
	}

	logger.Info("policyguardd running, press ctrl+c to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")
	if ingress != nil {
		_ = ingress.Disconnect()
	}
	return nil
}

func formatReply(call kernel.ToolCall, err error) string {
	if err == nil {
		return fmt.Sprintf("allowed: %s", call.ToolName)
	}
	toolErr, ok := err.(*kernel.ToolError)
	if !ok {
		return fmt.Sprintf("error: %v", err)
	}
	switch toolErr.Kind {
	case kernel.KindDenied:
		return fmt.Sprintf("denied: %s", toolErr.Reason)
	case kernel.KindInvalid:
		return fmt.Sprintf("invalid: %s", toolErr.Reason)
	case kernel.KindNeedsConfirmation:
		return "needs confirmation: CloudAI calls cannot be interactively confirmed, denying"
	default:
		return "denied"
	}
}
