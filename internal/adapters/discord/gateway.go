// Package discord adapts the bot's command handlers to the Discord gateway
// using discordgo. It owns the session lifecycle, slash-command registration,
// event dispatch, and the routing of component clicks and modal submissions
// back to handlers blocked in interactive waits.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"quotebot/internal/domain"
	"quotebot/internal/platform/logging"
	"quotebot/internal/platform/metrics"
	"quotebot/internal/ports"
)

// genericErrorReply is the fallback sent when a handler fails without having
// replied to the user itself.
const genericErrorReply = "There was an error while executing this command!"

// RecapBounds limits the recap command's option ranges as registered with
// Discord.
type RecapBounds struct {
	MinMessages int
	MaxMessages int
	MaxHours    int
}

// Config holds the gateway connection settings.
type Config struct {
	Token    string
	AppID    string
	GuildID  string
	Presence string

	Recap RecapBounds
}

// Gateway is the Discord-facing adapter. It connects the websocket session,
// registers the slash commands, and dispatches interactions to the handlers
// it was built with.
type Gateway struct {
	cfg      Config
	session  *discordgo.Session
	router   *waitRouter
	metrics  *metrics.Metrics
	handlers map[string]ports.Handler

	ready atomic.Bool
}

// New builds a Gateway for the given handlers. The session is configured but
// not opened; call Open to connect.
func New(cfg Config, handlers map[string]ports.Handler, m *metrics.Metrics) (*Gateway, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	g := &Gateway{
		cfg:      cfg,
		session:  session,
		router:   newWaitRouter(),
		metrics:  m,
		handlers: handlers,
	}

	session.AddHandler(g.onReady)
	session.AddHandler(g.onDisconnect)
	session.AddHandler(g.onInteraction)

	return g, nil
}

// Session exposes the underlying discordgo session for collaborators such as
// the name resolver.
func (g *Gateway) Session() *discordgo.Session {
	return g.session
}

// SetHandlers installs the command dispatch table. The handlers need the
// session-backed name resolver, so they are built after New; SetHandlers must
// be called before Open.
func (g *Gateway) SetHandlers(handlers map[string]ports.Handler) {
	g.handlers = handlers
}

// Open connects the websocket session and overwrites the guild's slash
// commands with the current definitions.
func (g *Gateway) Open(ctx context.Context) error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}

	definitions := commandDefinitions(g.cfg.Recap)

	registered, err := g.session.ApplicationCommandBulkOverwrite(g.cfg.AppID, g.cfg.GuildID, definitions)
	if err != nil {
		// The session connected; leave teardown to the caller's Close.
		return fmt.Errorf("registering application commands: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "registered application commands",
		"count", len(registered),
		"guild_id", g.cfg.GuildID,
	)

	return nil
}

// Close disconnects the websocket session.
func (g *Gateway) Close() error {
	g.ready.Store(false)

	if err := g.session.Close(); err != nil {
		return fmt.Errorf("closing discord session: %w", err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (g *Gateway) Name() string {
	return "discord"
}

// Check implements ports.HealthChecker. The gateway is healthy while the
// websocket session is connected and has seen its Ready event.
func (g *Gateway) Check(_ context.Context) error {
	if !g.ready.Load() {
		return errors.New("gateway session not ready")
	}

	return nil
}

func (g *Gateway) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	g.ready.Store(true)

	ctx := context.Background()
	logging.FromContext(ctx).InfoContext(ctx, "discord session ready",
		"presence", g.cfg.Presence,
	)

	if g.cfg.Presence == "" {
		return
	}

	if err := s.UpdateListeningStatus(g.cfg.Presence); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "failed to set presence", "error", err)
	}
}

func (g *Gateway) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	g.ready.Store(false)

	ctx := context.Background()
	logging.FromContext(ctx).WarnContext(ctx, "discord session disconnected")
}

// onInteraction routes gateway events. Commands are dispatched to their
// handler on a fresh goroutine so slow workflows never block the session's
// event loop. Component and modal events belong to a handler already blocked
// in a wait; they are forwarded through the wait router.
func (g *Gateway) onInteraction(_ *discordgo.Session, event *discordgo.InteractionCreate) {
	switch event.Type {
	case discordgo.InteractionApplicationCommand:
		go g.dispatch(event)

	case discordgo.InteractionMessageComponent:
		messageID := ""
		if event.Message != nil {
			messageID = event.Message.ID
		}

		if !g.router.deliverClick(messageID, interactionUserID(event.Interaction), event) {
			g.swallow(event)
		}

	case discordgo.InteractionModalSubmit:
		formID := event.ModalSubmitData().CustomID

		if !g.router.deliverForm(formID, interactionUserID(event.Interaction), event) {
			g.swallow(event)
		}
	}
}

func (g *Gateway) dispatch(event *discordgo.InteractionCreate) {
	name := event.ApplicationCommandData().Name

	handler, ok := g.handlers[name]
	if !ok {
		ctx := context.Background()
		logging.FromContext(ctx).WarnContext(ctx, "unknown command", "command", name)

		return
	}

	ctx := logging.WithCommand(context.Background(), name)
	ctx = logging.WithGuildID(ctx, event.GuildID)
	ctx = logging.WithInteractionID(ctx, event.ID)

	in := newInteraction(g.session, event, g.router)

	start := time.Now()
	err := handler(ctx, in)
	elapsed := time.Since(start)

	g.metrics.CommandDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	g.metrics.CommandsTotal.WithLabelValues(name, outcome(err)).Inc()

	logger := logging.FromContext(ctx)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "command handled", "duration", elapsed)
	case ports.IsReported(err):
		logger.InfoContext(ctx, "command ended with reported error", "error", err, "duration", elapsed)
	default:
		logger.ErrorContext(ctx, "command failed", "error", err, "duration", elapsed)
		g.apologize(ctx, in)
	}
}

// apologize sends the generic failure reply for errors the handler did not
// report itself.
func (g *Gateway) apologize(ctx context.Context, in *interaction) {
	msg := ports.Message{Content: genericErrorReply, Ephemeral: true}

	var err error
	if in.acked {
		err = in.Followup(ctx, msg)
	} else {
		err = in.Reply(ctx, msg)
	}

	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "failed to send error reply", "error", err)
	}
}

// swallow acknowledges a component or modal event no wait is pending for, so
// the user does not see a failed-interaction banner on stale buttons.
func (g *Gateway) swallow(event *discordgo.InteractionCreate) {
	err := g.session.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		ctx := context.Background()
		logging.FromContext(ctx).DebugContext(ctx, "failed to acknowledge stale interaction", "error", err)
	}
}

// outcome maps a handler result to a metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case domain.IsTimeout(err):
		return metrics.OutcomeTimeout
	case domain.IsValidation(err), domain.IsConflict(err), domain.IsNotFound(err), domain.IsUnavailable(err):
		return metrics.OutcomeUserError
	default:
		return metrics.OutcomeError
	}
}
