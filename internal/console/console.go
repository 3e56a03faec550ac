// Package console provides an interactive operator console for the room,
// either on the local terminal or for remote TCP clients.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/zrctl/internal/config"
	"github.com/zrctl/internal/logging"
	"github.com/zrctl/internal/monitor"
	"github.com/zrctl/internal/zoomrooms"
)

const welcome = "zrctl room console\nType 'help' for available commands.\n"

// Console serves the command loop.
type Console struct {
	session *zoomrooms.Session
	poller  *monitor.Poller
	config  config.ConsoleConfig
	logger  *slog.Logger
}

// New creates a console.
func New(session *zoomrooms.Session, poller *monitor.Poller, cfg config.ConsoleConfig) *Console {
	if cfg.Prompt == "" {
		cfg.Prompt = "zrctl> "
	}
	return &Console{
		session: session,
		poller:  poller,
		config:  cfg,
		logger:  logging.With("component", "console"),
	}
}

// Run serves the local terminal, or remote clients when a listen address is
// configured, until ctx is cancelled or the local user quits.
func (c *Console) Run(ctx context.Context) error {
	if c.config.Listen != "" {
		return c.listen(ctx)
	}

	rl, err := readline.NewEx(c.readlineConfig())
	if err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { rl.Close() })
	defer stop()

	c.serve(ctx, rl, rl.Stdout())
	return nil
}

func (c *Console) listen(ctx context.Context) error {
	var (
		mu       sync.Mutex
		listener net.Listener
	)
	stop := context.AfterFunc(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		if listener != nil {
			listener.Close()
		}
	})
	defer stop()

	onListen := func(ln net.Listener) error {
		mu.Lock()
		defer mu.Unlock()
		listener = ln
		c.logger.Info("Console listening", "addr", ln.Addr().String())
		return ctx.Err()
	}

	err := readline.ListenRemote("tcp", c.config.Listen, c.readlineConfig(), func(rl *readline.Instance) {
		defer rl.Close()
		stop := context.AfterFunc(ctx, func() { rl.Close() })
		defer stop()
		c.serve(ctx, rl, &crlfWriter{w: rl})
	}, onListen)

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("console listener: %w", err)
	}
	return nil
}

func (c *Console) readlineConfig() *readline.Config {
	return &readline.Config{
		Prompt:          c.config.Prompt,
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	}
}

// serve reads lines until the user quits, the input closes or ctx ends.
func (c *Console) serve(ctx context.Context, rl *readline.Instance, out io.Writer) {
	bufWriter := bufio.NewWriter(out)
	handler := NewHandler(c.session, c.poller, bufWriter)

	bufWriter.WriteString(welcome)
	bufWriter.Flush()

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				bufWriter.WriteString("Use 'exit' or 'quit' to disconnect\n")
				bufWriter.Flush()
			}
			continue
		}
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.logger.Debug("Console command", logging.Command(line))

		if err := handler.HandleCommand(ctx, line); err != nil {
			if !errors.Is(err, errQuit) {
				c.logger.Warn("Console write failed", logging.Err(err))
			}
			return
		}
	}
}

func completer() *readline.PrefixCompleter {
	directions := make([]readline.PrefixCompleterInterface, 0, len(zoomrooms.Directions))
	for _, d := range zoomrooms.Directions {
		directions = append(directions, readline.PcItem(strings.ToLower(string(d))))
	}
	onOff := []readline.PrefixCompleterInterface{readline.PcItem("on"), readline.PcItem("off")}

	return readline.NewPrefixCompleter(
		readline.PcItem("status", readline.PcItem("refresh")),
		readline.PcItem("dial"),
		readline.PcItem("hangup"),
		readline.PcItem("call"),
		readline.PcItem("mute",
			readline.PcItem("mic", onOff...),
			readline.PcItem("camera", onOff...),
		),
		readline.PcItem("camera", directions...),
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// crlfWriter converts line endings for remote terminals.
type crlfWriter struct {
	w io.Writer
}

func (w *crlfWriter) Write(p []byte) (int, error) {
	str := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := w.w.Write([]byte(str)); err != nil {
		return 0, err
	}
	return len(p), nil
}
