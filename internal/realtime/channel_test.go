package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/homechef-app/homechef-backend/internal/vendors"
	"github.com/homechef-app/homechef-backend/pkg/config"
)

type dialResult struct {
	sock socket
	err  error
}

type scheduledRetry struct {
	delay time.Duration
	fire  func()
}

type harness struct {
	dials   chan string
	results chan dialResult
	sched   chan scheduledRetry
}

func newHarness() *harness {
	return &harness{
		dials:   make(chan string, 32),
		results: make(chan dialResult, 32),
		sched:   make(chan scheduledRetry, 32),
	}
}

func (h *harness) dial(_ context.Context, rawURL string) (socket, error) {
	h.dials <- rawURL
	res := <-h.results
	return res.sock, res.err
}

func (h *harness) after(d time.Duration, fn func()) *time.Timer {
	h.sched <- scheduledRetry{delay: d, fire: fn}
	return time.NewTimer(time.Hour)
}

type fakeSocket struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{frames: make(chan []byte, 32), closed: make(chan struct{})}
}

func (f *fakeSocket) Read(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-f.frames:
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.closed:
		return nil, errors.New("socket closed")
	}
}

func (f *fakeSocket) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

type stubRoster struct {
	statuses []vendors.Status
	err      error
}

func (s stubRoster) ListStatuses(context.Context) ([]vendors.Status, error) {
	return s.statuses, s.err
}

type captureNotifier struct {
	changes chan Change
}

func (n *captureNotifier) Notify(_ context.Context, change Change) {
	n.changes <- change
}

func testConfig() config.RealtimeConfig {
	return config.RealtimeConfig{
		URL:         "ws://feed.local/ws",
		Role:        "customer",
		DialTimeout: time.Second,
		BackoffBase: time.Second,
		BackoffCap:  30 * time.Second,
		MaxAttempts: 10,
		ReadLimit:   1 << 20,
	}
}

func newTestChannel(roster VendorRoster, opts ...Option) (*Channel, *harness) {
	h := newHarness()
	ch := NewChannel(testConfig(), roster, nil, nil, opts...)
	ch.dial = h.dial
	ch.after = h.after
	return ch, h
}

func waitDial(t *testing.T, h *harness) string {
	t.Helper()
	select {
	case url := <-h.dials:
		return url
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dial")
		return ""
	}
}

func waitSched(t *testing.T, h *harness) scheduledRetry {
	t.Helper()
	select {
	case s := <-h.sched:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scheduled retry")
		return scheduledRetry{}
	}
}

func waitState(t *testing.T, ch *Channel, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ch.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state never reached %s, still %s", want, ch.State())
}

func TestBackoffScheduleIsDeterministic(t *testing.T) {
	t.Parallel()

	ch, h := newTestChannel(nil)
	sub := ch.Subscribe(func() {})
	defer sub.Cancel()

	wantDelays := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}

	for i, want := range wantDelays {
		waitDial(t, h)
		h.results <- dialResult{err: errors.New("connection refused")}
		retry := waitSched(t, h)
		if retry.delay != want {
			t.Fatalf("attempt %d: expected delay %s, got %s", i+1, want, retry.delay)
		}
		retry.fire()
	}

	// tenth consecutive failure exhausts the budget
	waitDial(t, h)
	h.results <- dialResult{err: errors.New("connection refused")}
	waitState(t, ch, StateClosed)

	select {
	case s := <-h.sched:
		t.Fatalf("retry scheduled past the budget: %s", s.delay)
	case <-time.After(50 * time.Millisecond):
	}
	select {
	case <-h.dials:
		t.Fatal("dial past the budget")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOpenSeedsAndFansOutEvents(t *testing.T) {
	t.Parallel()

	notifier := &captureNotifier{changes: make(chan Change, 8)}
	roster := stubRoster{statuses: []vendors.Status{{ID: "v-1", Name: "Nonna", IsOpen: true}}}
	ch, h := newTestChannel(roster, WithNotifier(notifier))

	calls := make(chan struct{}, 32)
	sub := ch.Subscribe(func() { calls <- struct{}{} })
	defer sub.Cancel()

	if url := waitDial(t, h); url != "ws://feed.local/ws?role=customer" {
		t.Fatalf("unexpected dial url: %s", url)
	}
	sock := newFakeSocket()
	h.results <- dialResult{sock: sock}
	waitState(t, ch, StateOpen)

	deadline := time.Now().Add(2 * time.Second)
	for !ch.Snapshots().Seeded() {
		if time.Now().After(deadline) {
			t.Fatal("roster seed never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sock.frames <- []byte(`{"type":"vendor_status_update","data":{"id":"v-1","name":"Nonna","isOpen":false}}`)

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never invoked")
	}
	if open, known := ch.Snapshots().VendorOpen("v-1"); !known || open {
		t.Fatalf("snapshot not applied: open=%v known=%v", open, known)
	}

	select {
	case change := <-notifier.changes:
		if change.Kind != ChangeVendorClosed || change.EntityID != "v-1" {
			t.Fatalf("unexpected change: %+v", change)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notifier never invoked")
	}
}

func TestUnknownFrameDoesNotFanOut(t *testing.T) {
	t.Parallel()

	ch, h := newTestChannel(nil)
	calls := make(chan struct{}, 32)
	sub := ch.Subscribe(func() { calls <- struct{}{} })
	defer sub.Cancel()

	waitDial(t, h)
	sock := newFakeSocket()
	h.results <- dialResult{sock: sock}
	waitState(t, ch, StateOpen)

	sock.frames <- []byte(`{"type":"loyalty_points_update","data":{}}`)
	sock.frames <- []byte(`{"type":"vendor_status_update","data":{"id":"v-2","name":"Trattoria","isOpen":true}}`)

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("known frame never fanned out")
	}
	select {
	case <-calls:
		t.Fatal("unknown frame fanned out")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReconnectPreemptsPendingRetry(t *testing.T) {
	t.Parallel()

	ch, h := newTestChannel(nil)
	sub := ch.Subscribe(func() {})
	defer sub.Cancel()

	waitDial(t, h)
	h.results <- dialResult{err: errors.New("connection refused")}
	pending := waitSched(t, h)

	ch.Reconnect()
	waitDial(t, h)
	h.results <- dialResult{sock: newFakeSocket()}
	waitState(t, ch, StateOpen)

	// the superseded timer firing later must not trigger another dial
	pending.fire()
	select {
	case <-h.dials:
		t.Fatal("stale retry dialed")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLastCancelTearsDownAndResubscribeRestarts(t *testing.T) {
	t.Parallel()

	ch, h := newTestChannel(nil)
	sub := ch.Subscribe(func() {})

	waitDial(t, h)
	sock := newFakeSocket()
	h.results <- dialResult{sock: sock}
	waitState(t, ch, StateOpen)

	sub.Cancel()
	waitState(t, ch, StateIdle)
	select {
	case <-sock.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("socket never closed on teardown")
	}

	// a later subscriber starts over from idle
	sub2 := ch.Subscribe(func() {})
	defer sub2.Cancel()
	waitDial(t, h)
	h.results <- dialResult{sock: newFakeSocket()}
	waitState(t, ch, StateOpen)
}

func TestDropAfterOpenRetriesOnFreshBudget(t *testing.T) {
	t.Parallel()

	ch, h := newTestChannel(nil)
	sub := ch.Subscribe(func() {})
	defer sub.Cancel()

	waitDial(t, h)
	sock := newFakeSocket()
	h.results <- dialResult{sock: sock}
	waitState(t, ch, StateOpen)

	// remote drop, not a local cancel
	_ = sock.Close()
	retry := waitSched(t, h)
	if retry.delay != time.Second {
		t.Fatalf("drop after open should restart at base delay, got %s", retry.delay)
	}
	retry.fire()
	waitDial(t, h)
	h.results <- dialResult{sock: newFakeSocket()}
	waitState(t, ch, StateOpen)
}
