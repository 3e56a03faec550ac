package logging

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Common field helpers for consistent structured logging

// secretParams are command parameters whose values are never logged.
var secretParams = []string{"password:"}

// dialPasscode matches the passcode in a meetingNumber.passcode@domain dial string.
var dialPasscode = regexp.MustCompile(`(\d+)\.\d+@`)

// Command creates a shell command field with secrets masked
func Command(cmd string) slog.Attr {
	return slog.String("command", Redact(cmd))
}

// Redact masks the value following any secret parameter and the passcode of
// a dial string
func Redact(cmd string) string {
	cmd = strings.TrimRight(cmd, "\r\n")
	cmd = dialPasscode.ReplaceAllString(cmd, "$1.***@")
	lower := strings.ToLower(cmd)
	for _, param := range secretParams {
		idx := strings.Index(lower, param)
		if idx < 0 {
			continue
		}
		start := idx + len(param)
		end := strings.IndexByte(cmd[start:], ' ')
		if end < 0 {
			end = len(cmd) - start
		}
		cmd = cmd[:start] + "***" + cmd[start+end:]
		lower = strings.ToLower(cmd)
	}
	return cmd
}

// Attempt creates a retry attempt field
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// State creates a call state field
func State(state string) slog.Attr {
	return slog.String("state", state)
}

// Duration logs duration in milliseconds
func Duration(name string, d time.Duration) slog.Attr {
	return slog.Int64(name+"_ms", d.Milliseconds())
}

// Err creates error field
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Count creates count field
func Count(name string, count int) slog.Attr {
	return slog.Int(name+"_count", count)
}

// Host creates a device address field
func Host(host string, port int) []any {
	return []any{
		slog.String("host", host),
		slog.Int("port", port),
	}
}

// HTTP creates HTTP request fields
func HTTP(method, path string, status int) []any {
	return []any{
		slog.String("http_method", method),
		slog.String("http_path", path),
		slog.Int("http_status", status),
	}
}

// Remote creates a remote address field
func Remote(addr string) slog.Attr {
	return slog.String("remote", addr)
}
