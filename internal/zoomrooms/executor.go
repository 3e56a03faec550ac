package zoomrooms

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zrctl/internal/logging"
)

// Gateway is the channel to the device shell.
type Gateway interface {
	IsConnected() bool
	Connect(ctx context.Context) error
	Send(ctx context.Context, command string) (string, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ExecutorConfig holds command execution settings.
type ExecutorConfig struct {
	MaxAttempts int           // sends per command before giving up
	RetryDelay  time.Duration // pause between sends of an incomplete command

	Sleep  SleepFunc    // defaults to a timer honoring ctx
	Logger *slog.Logger // defaults to the global logger
}

// DefaultExecutorConfig returns the standard retry settings.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxAttempts: 10,
		RetryDelay:  250 * time.Millisecond,
	}
}

// Executor runs one command at a time against the gateway, verifying and
// re-sending incomplete responses.
type Executor struct {
	gateway  Gateway
	verifier *Verifier
	config   ExecutorConfig
	logger   *slog.Logger

	mu sync.Mutex // held for reconnect, send and the verify/retry loop
}

// NewExecutor creates an executor over gw.
func NewExecutor(gw Gateway, cfg ExecutorConfig) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.With("component", "executor")
	}
	return &Executor{
		gateway:  gw,
		verifier: NewVerifier(),
		config:   cfg,
		logger:   cfg.Logger,
	}
}

// Gateway returns the underlying channel.
func (e *Executor) Gateway() Gateway {
	return e.gateway
}

// Execute sends command and returns the verified response.
//
// Incomplete responses are re-sent up to MaxAttempts times before failing with
// ErrVerificationTimeout. A response ending in an error literal fails
// immediately with ErrCommandFailure. Gateway failures wrap ErrTransport.
func (e *Executor) Execute(ctx context.Context, command string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.gateway.IsConnected() {
		e.logger.Info("Channel not connected, reconnecting")
		if err := e.gateway.Connect(ctx); err != nil {
			recordCommand(command, "transport", 0)
			return "", fmt.Errorf("%w: connect: %w", ErrTransport, err)
		}
	}

	var response string
	for attempt := 1; attempt <= e.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := e.config.Sleep(ctx, e.config.RetryDelay); err != nil {
				return response, err
			}
		}

		start := time.Now()
		resp, err := e.gateway.Send(ctx, command)
		if err != nil {
			recordCommand(command, "transport", attempt)
			e.logger.Error("Send failed", logging.Command(command), logging.Attempt(attempt), logging.Err(err))
			return resp, fmt.Errorf("%w: send %q: %w", ErrTransport, command, err)
		}
		response = resp

		verdict := e.verifier.Check(command, resp)
		e.logger.Debug("Command response",
			logging.Command(command),
			logging.Attempt(attempt),
			slog.String("verdict", verdict.String()),
			logging.Duration("elapsed", time.Since(start)))

		switch verdict {
		case Success:
			recordCommand(command, "success", attempt)
			return resp, nil
		case Error:
			recordCommand(command, "error", attempt)
			return resp, &CommandError{
				Kind:     ErrCommandFailure,
				Command:  command,
				Response: resp,
				Attempts: attempt,
			}
		}
	}

	recordCommand(command, "timeout", e.config.MaxAttempts)
	e.logger.Warn("Response never completed",
		logging.Command(command),
		logging.Attempt(e.config.MaxAttempts))
	return response, &CommandError{
		Kind:     ErrVerificationTimeout,
		Command:  command,
		Response: response,
		Attempts: e.config.MaxAttempts,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
