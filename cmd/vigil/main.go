package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vigil-labs/vigil/internal/api"
	"github.com/vigil-labs/vigil/internal/brain"
	"github.com/vigil-labs/vigil/internal/callback"
	"github.com/vigil-labs/vigil/internal/config"
	"github.com/vigil-labs/vigil/internal/feed"
	"github.com/vigil-labs/vigil/internal/metrics"
	"github.com/vigil-labs/vigil/internal/persona"
	"github.com/vigil-labs/vigil/internal/session"
	"github.com/vigil-labs/vigil/internal/token"
	"github.com/vigil-labs/vigil/internal/transcript"
	"github.com/vigil-labs/vigil/internal/transport"
)

func main() {
	// Local development keeps secrets in .env; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("vigil starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Conversation agent
	agent := brain.NewClient(cfg.AgentURL, cfg.AgentAPIKey)
	slog.Info("agent client ready", "url", cfg.AgentURL)

	// Session controller — the single writer over all session state
	engine := metrics.NewEngine(metrics.NewRandScorer())
	ctrlCfg := session.DefaultConfig()
	ctrlCfg.Channel = cfg.Channel
	ctrlCfg.Locale = cfg.Locale
	ctrl := session.NewControllerWithConfig(ctrlCfg, agent, engine, slog.Default())
	if _, err := ctrl.SetPersona(cfg.Persona); err != nil {
		slog.Warn("configured persona unknown, using default", "persona", cfg.Persona)
		if _, err := ctrl.SetPersona(persona.DefaultKey); err != nil {
			slog.Error("default persona missing", "error", err)
			os.Exit(1)
		}
	}
	go ctrl.RunClock(ctx)

	// Intel feed (optional — vigil works without NATS, just no fan-out)
	if cfg.NatsURL != "" {
		publisher, err := feed.Connect(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		ctrl.SetPublisher(publisher)
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("feed not configured — running without intel fan-out")
	}

	// Final-result callback (optional)
	if cfg.CallbackURL != "" {
		ctrl.SetReporter(callback.NewClient(cfg.CallbackURL, slog.Default()))
		slog.Info("final-result callback ready", "url", cfg.CallbackURL)
	}

	// Token minting (optional — only needed when clients dial the transport)
	var minter *token.Minter
	if cfg.TransportKey != "" && cfg.TransportSecret != "" {
		var err error
		minter, err = token.NewMinter(token.Config{
			APIKey:    cfg.TransportKey,
			APISecret: cfg.TransportSecret,
			URL:       cfg.TransportURL,
			Room:      cfg.Room,
		})
		if err != nil {
			slog.Error("token minter setup failed", "error", err)
			os.Exit(1)
		}
		slog.Info("token minter ready", "room", cfg.Room)
	}

	// Media gateway (optional — without it vigil is chat-only)
	var gateway *transport.Client
	if cfg.TransportURL != "" {
		gateway = connectGateway(ctx, cfg, minter, ctrl)
		if gateway != nil {
			defer gateway.Close()
		}
	}

	// HTTP API
	personaChanged := func(key string) {
		if gateway == nil {
			return
		}
		updateCtx, updateCancel := context.WithTimeout(ctx, 5*time.Second)
		defer updateCancel()
		if err := gateway.UpdateMetadata(updateCtx, key); err != nil {
			slog.Warn("persona metadata update failed", "error", err)
		}
	}
	srv := api.NewServer(cfg.Port, cfg.APIKey, ctrl, minter, personaChanged, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("vigil ready", "port", cfg.Port, "persona", cfg.Persona)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("vigil stopped")
}

// connectGateway dials the media gateway and starts its read loop. A connect
// failure logs and returns nil; voice is disabled but chat keeps working.
func connectGateway(ctx context.Context, cfg config.Config, minter *token.Minter, ctrl *session.Controller) *transport.Client {
	tokenValue := ""
	if minter != nil {
		creds, err := minter.Mint(cfg.LocalIdentity, cfg.LocalIdentity, cfg.Persona)
		if err != nil {
			slog.Error("gateway token mint failed", "error", err)
			return nil
		}
		tokenValue = creds.Token
	}

	events := transport.Events{
		Transcription: func(seg transport.Segment, local bool) {
			role := transcript.RoleScammer
			if local {
				role = transcript.RoleAgent
			}
			ctrl.HandleVoiceSegment(seg.ID, role, seg.Text)
		},
		ParticipantJoined: func(identity string) {
			ctrl.Note("participant joined: " + identity)
		},
		ParticipantLeft: func(identity string) {
			ctrl.Note("participant left: " + identity)
		},
		Disconnected: func(reason string) {
			slog.Info("gateway disconnected", "reason", reason)
		},
	}

	gw := transport.NewClient(cfg.TransportURL, tokenValue, cfg.LocalIdentity, events, slog.Default())
	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dialCancel()
	if err := gw.Connect(dialCtx); err != nil {
		slog.Error("gateway connect failed — voice disabled", "error", err)
		return nil
	}
	go func() {
		if err := gw.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("gateway read loop ended", "error", err)
		}
	}()
	slog.Info("gateway connected", "url", cfg.TransportURL)
	return gw
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
