// Package shelltest provides fakes for code that talks to the device shell.
package shelltest

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FakeGateway is a scripted channel. Respond produces the raw response for
// each command; every call is recorded.
type FakeGateway struct {
	Respond    func(command string) (string, error)
	ConnectErr error
	SendDelay  time.Duration // widens the window for overlap detection

	mu        sync.Mutex
	connected bool
	connects  int
	sent      []string
	inFlight  int
	overlap   bool
}

// NewFakeGateway returns a connected gateway backed by respond.
func NewFakeGateway(respond func(command string) (string, error)) *FakeGateway {
	return &FakeGateway{Respond: respond, connected: true}
}

// SetConnected changes the reported connectivity.
func (f *FakeGateway) SetConnected(connected bool) {
	f.mu.Lock()
	f.connected = connected
	f.mu.Unlock()
}

func (f *FakeGateway) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeGateway) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	f.connected = true
	return nil
}

func (f *FakeGateway) Send(ctx context.Context, command string) (string, error) {
	f.mu.Lock()
	f.sent = append(f.sent, command)
	f.inFlight++
	if f.inFlight > 1 {
		f.overlap = true
	}
	respond := f.Respond
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.SendDelay > 0 {
		time.Sleep(f.SendDelay)
	}
	if respond == nil {
		return "", nil
	}
	return respond(command)
}

// Commands returns every command sent so far.
func (f *FakeGateway) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

// Count returns how many sent commands start with prefix (case-insensitive).
func (f *FakeGateway) Count(prefix string) int {
	prefix = strings.ToLower(prefix)
	n := 0
	for _, cmd := range f.Commands() {
		if strings.HasPrefix(strings.ToLower(cmd), prefix) {
			n++
		}
	}
	return n
}

// Connects returns the number of Connect calls.
func (f *FakeGateway) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// Overlapped reports whether two Sends were ever in flight together.
func (f *FakeGateway) Overlapped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlap
}
