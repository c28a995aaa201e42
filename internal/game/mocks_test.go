package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scythe504/skribblr/internal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- WordSampler ---

type MockWordSampler struct {
	mock.Mock
}

func (m *MockWordSampler) Sample(k int) []string {
	args := m.Called(k)
	return args.Get(0).([]string)
}

// --- ResultRecorder ---

type MockResultRecorder struct {
	mock.Mock
}

func (m *MockResultRecorder) RecordGame(ctx context.Context, results internal.FinalResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

// --- Gateway ---

type sentMessage struct {
	to  string
	msg internal.Message[any]
}

// recordingGateway keeps every message the engine sends.
type recordingGateway struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (g *recordingGateway) Send(connID string, msg internal.Message[any]) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{to: connID, msg: msg})
	return nil
}

// to returns the messages of eventType delivered to connID, oldest first.
func (g *recordingGateway) to(connID, eventType string) []internal.Message[any] {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []internal.Message[any]
	for _, s := range g.sent {
		if s.to == connID && s.msg.Type == eventType {
			out = append(out, s.msg)
		}
	}
	return out
}

func (g *recordingGateway) recipients(eventType string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, s := range g.sent {
		if s.msg.Type == eventType {
			out = append(out, s.to)
		}
	}
	return out
}

func (g *recordingGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = nil
}

// waitFor blocks until connID has received n messages of eventType and
// returns the nth.
func (g *recordingGateway) waitFor(t *testing.T, connID, eventType string, n int) internal.Message[any] {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(g.to(connID, eventType)) >= n
	}, 3*time.Second, 2*time.Millisecond, "%s never received %d %q", connID, n, eventType)
	return g.to(connID, eventType)[n-1]
}

// --- helpers ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *recordingGateway, *MockWordSampler) {
	t.Helper()
	gw := &recordingGateway{}
	words := &MockWordSampler{}
	words.On("Sample", internal.WordChoiceCount).Return([]string{"apple", "pear", "plum"}).Maybe()
	return NewEngine(NewRegistry(), gw, words, opts), gw, words
}

// setupRoom creates a room hosted by ids[0] and joins the rest.
func setupRoom(t *testing.T, e *Engine, ids ...string) *internal.Room {
	t.Helper()
	roomID, err := e.NewPrivateRoom(ids[0], internal.Identity{Name: "name-" + ids[0]})
	require.NoError(t, err)
	for _, id := range ids[1:] {
		require.NoError(t, e.JoinRoom(id, roomID, internal.Identity{Name: "name-" + id}))
	}
	room, err := e.Registry().Get(roomID)
	require.NoError(t, err)
	return room
}

func setSettings(room *internal.Room, rounds int, d time.Duration) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	room.Settings = internal.Settings{Rounds: rounds, RoundDuration: d}
}

// waitGames fails the test if a game goroutine is still running after a
// few seconds.
func waitGames(t *testing.T, e *Engine) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("game loop did not exit")
	}
}
