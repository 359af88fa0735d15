package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DerWahreMirakulix/metor/config"
	"github.com/DerWahreMirakulix/metor/internal/chat"
	"github.com/DerWahreMirakulix/metor/internal/errors"
	"github.com/DerWahreMirakulix/metor/internal/history"
	"github.com/DerWahreMirakulix/metor/internal/metrics"
	"github.com/DerWahreMirakulix/metor/internal/terminal"
	"github.com/DerWahreMirakulix/metor/internal/transport"
	"github.com/DerWahreMirakulix/metor/util"
)

func newChatCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat session",
		Long: `Start the onion service and the interactive chat loop.  Type a
message to send it, or one of the slash commands; /help lists them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg)
		},
	}
}

func runChat(ctx context.Context, cfg *config.Config) error {
	// One chat session per data directory.
	if err := cfg.AcquireLock(); err != nil {
		return err
	}
	defer cfg.ReleaseLock() //nolint:errcheck

	// The UI owns the terminal, so console logging is errors-only
	// unless --verbose asks for more.
	logOpts := util.LogOptions{
		Level:   cfg.LogLevel,
		File:    cfg.DebugLogFile(),
		Console: true,
	}
	if !cfg.Verbose {
		logOpts.ConsoleLevel = "error"
	}
	logger := util.NewLogger(logOpts)
	defer logger.Sync() //nolint:errcheck

	ui, err := terminal.New()
	if err != nil {
		return err
	}
	defer ui.Restore()

	if cfg.Transport == config.TransportTor {
		ui.Printf("Starting Tor process (this may take a few seconds)...")
	}
	provider, err := transport.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("start transport: %w", err)
	}
	defer provider.Close() //nolint:errcheck

	ui.Printf("Your onion address: %s", provider.Identity())

	collector := metrics.New()
	recorder := history.New(cfg.HistoryFile())
	mgr := chat.NewManager(chat.Options{
		Transport:        provider,
		Recorder:         recorder,
		Sink:             ui,
		Metrics:          collector,
		Logger:           logger.Named("chat"),
		DialTimeout:      cfg.DialTimeout,
		HandshakeTimeout: cfg.HandshakeTimeout,
	})

	ui.PrintHelp()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mgr.Serve(gctx) })
	g.Go(func() error {
		// When the input loop ends the accept loop must follow.
		defer cancel()
		return inputLoop(gctx, mgr, ui, recorder, logger)
	})

	err = g.Wait()
	logger.Info("chat mode done", zap.Any("stats", collector.Snapshot()))
	return err
}

// inputLoop is the interactive command dispatcher.  It returns when
// the user exits, input is interrupted, or stdin is exhausted.
func inputLoop(ctx context.Context, mgr *chat.Manager, ui *terminal.UI, rec history.Recorder, logger *zap.Logger) error {
	for {
		line, err := ui.ReadLine()
		if err != nil {
			// Ctrl-C and Ctrl-D leave like /exit.
			if errors.Is(err, terminal.ErrInterrupt) || errors.Is(err, io.EOF) {
				exitChat(mgr, ui, rec, logger)
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			exitChat(mgr, ui, rec, logger)
			return nil
		}

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/connect"):
			handleConnect(ctx, mgr, ui, line)
		case line == "/end":
			id, ok := mgr.Disconnect(true)
			switch {
			case !ok:
				ui.Push(chat.Event{Kind: chat.EventInfo, Text: "No active connection."})
			case id != "":
				ui.Push(chat.Event{Kind: chat.EventInfo, Text: "disconnected"})
				logEvent(logger, rec, history.Out, history.Disconnected, id)
			}
		case line == "/clear":
			ui.Clear()
			ui.PrintHelp()
			if id, ok := mgr.Remote(); ok {
				ui.Push(chat.Event{Kind: chat.EventInfo, Text: "connected with " + id})
			}
		case line == "/exit":
			exitChat(mgr, ui, rec, logger)
			return nil
		case line == "/help":
			ui.PrintHelp()
		default:
			if !mgr.IsConnected() {
				ui.Push(chat.Event{Kind: chat.EventInfo, Text: "No active connection. Use /connect to initiate a connection."})
				continue
			}
			if err := mgr.Send(line); err != nil {
				ui.Push(chat.Event{Kind: chat.EventInfo, Text: "Error sending message."})
			}
			ui.Push(chat.Event{Kind: chat.EventSelf, Text: line})
		}
	}
}

func handleConnect(ctx context.Context, mgr *chat.Manager, ui *terminal.UI, line string) {
	address, anonymous, ok := parseConnect(line)
	if !ok {
		ui.Push(chat.Event{Kind: chat.EventInfo, Text: "Usage: /connect [onion] [--anonymous/-a]"})
		return
	}

	ui.Push(chat.Event{Kind: chat.EventInfo, Text: "connecting to " + address + " ..."})
	err := mgr.Connect(ctx, address, anonymous)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrSelfDial):
		ui.Push(chat.Event{Kind: chat.EventInfo, Text: "Error: Cannot connect to yourself."})
	case errors.Is(err, errors.ErrAlreadyConnected):
		ui.Push(chat.Event{Kind: chat.EventInfo, Text: "already connected"})
	default:
		// Dial and handshake failures were already reported through
		// the sink by the manager.
	}
}

// parseConnect splits a "/connect" line into the target address and
// the anonymous flag.  ok is false when no address is present.
func parseConnect(line string) (address string, anonymous bool, ok bool) {
	for _, p := range strings.Fields(line)[1:] {
		switch p {
		case "--anonymous", "-a":
			anonymous = true
		default:
			if address == "" {
				address = p
			}
		}
	}
	return address, anonymous, address != ""
}

// exitChat hangs up the active session, if any, before leaving chat
// mode.
func exitChat(mgr *chat.Manager, ui *terminal.UI, rec history.Recorder, logger *zap.Logger) {
	if id, ok := mgr.Disconnect(true); ok && id != "" {
		ui.Push(chat.Event{Kind: chat.EventInfo, Text: "disconnected"})
		logEvent(logger, rec, history.Out, history.Disconnected, id)
	}
}

func logEvent(logger *zap.Logger, rec history.Recorder, dir history.Direction, status history.Status, identity string) {
	if err := rec.Record(dir, status, identity); err != nil {
		logger.Warn("event log write failed", zap.Error(err))
	}
}
