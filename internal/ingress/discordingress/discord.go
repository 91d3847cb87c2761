// Package discordingress is the CloudAI transport: it receives tool-call
// requests over a Discord bot connection and turns them into
// kernel.ToolCall values for the Authorize pipeline. The message shape
// is a fenced-JSON directive rather than chat text, since CloudAI is a
// tool-call source, not a conversational channel.
package discordingress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/jholhewres/policyguard/internal/pairing"
	"github.com/jholhewres/policyguard/pkg/kernel"
)

// Config holds Discord ingress configuration.
type Config struct {
	Token          string
	AllowedGuilds  []string
	RequirePairing bool
}

// Handler is invoked for every well-formed, paired tool-call directive
// received over Discord. It returns the text to send back as the reply.
type Handler func(call kernel.ToolCall) string

// Ingress implements the CloudAI-scoped Discord bot connection.
type Ingress struct {
	cfg       Config
	logger    *slog.Logger
	session   *discordgo.Session
	handler   Handler
	connected atomic.Bool
	mu        sync.RWMutex
}

// New creates a Discord ingress. handler is invoked once per directive
// message after the pairing secret (if required) checks out.
func New(cfg Config, handler Handler, logger *slog.Logger) *Ingress {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingress{
		cfg:     cfg,
		handler: handler,
		logger:  logger.With("component", "discord_ingress"),
	}
}

// Connect opens the Discord gateway connection and starts listening for
// directive messages.
func (i *Ingress) Connect(ctx context.Context) error {
	if i.cfg.Token == "" {
		return fmt.Errorf("discordingress: bot token is required")
	}

	session, err := discordgo.New("Bot " + i.cfg.Token)
	if err != nil {
		return fmt.Errorf("discordingress: creating session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	session.AddHandler(i.onMessageCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discordingress: opening gateway: %w", err)
	}

	i.mu.Lock()
	i.session = session
	i.mu.Unlock()
	i.connected.Store(true)

	i.logger.Info("discordingress: connected", "bot", session.State.User.Username)

	go func() {
		<-ctx.Done()
		_ = i.Disconnect()
	}()

	return nil
}

// Disconnect closes the gateway connection.
func (i *Ingress) Disconnect() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.session == nil {
		return nil
	}
	i.connected.Store(false)
	err := i.session.Close()
	i.session = nil
	return err
}

// Connected reports whether the gateway connection is currently open.
func (i *Ingress) Connected() bool { return i.connected.Load() }

// directive is the wire shape of a CloudAI tool-call request: a fenced
// JSON code block naming the tool, its parameters, and (if required) the
// pairing secret.
type directive struct {
	Secret     string         `json:"secret"`
	ToolName   string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

func (i *Ingress) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}
	if len(i.cfg.AllowedGuilds) > 0 && !containsString(i.cfg.AllowedGuilds, m.GuildID) {
		return
	}

	payload := extractJSONBlock(m.Content)
	if payload == "" {
		return
	}

	var d directive
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		i.reply(s, m.ChannelID, "malformed directive: "+err.Error())
		return
	}
	if d.ToolName == "" {
		i.reply(s, m.ChannelID, "directive is missing \"tool\"")
		return
	}

	if i.cfg.RequirePairing && !pairing.Verify(d.Secret) {
		i.logger.Warn("rejected unpaired CloudAI directive", "tool", d.ToolName, "guild", m.GuildID)
		i.reply(s, m.ChannelID, "pairing secret invalid or not configured")
		return
	}

	call := kernel.ToolCall{
		ID:         uuid.New().String(),
		ToolName:   d.ToolName,
		Parameters: kernel.Params(d.Parameters),
	}

	if i.handler == nil {
		return
	}
	reply := i.handler(call)
	i.reply(s, m.ChannelID, reply)
}

func (i *Ingress) reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		i.logger.Warn("failed to send discord reply", "error", err)
	}
}

// extractJSONBlock pulls the contents of a fenced ```json ... ``` block
// out of a Discord message, or returns "" if none is present.
func extractJSONBlock(content string) string {
	const fence = "```"
	start := strings.Index(content, fence)
	if start == -1 {
		return ""
	}
	rest := content[start+len(fence):]
	rest = strings.TrimPrefix(rest, "json")
	end := strings.Index(rest, fence)
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
