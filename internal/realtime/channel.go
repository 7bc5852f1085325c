package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coder/websocket"

	"github.com/homechef-app/homechef-backend/internal/vendors"
	"github.com/homechef-app/homechef-backend/pkg/config"
	"github.com/homechef-app/homechef-backend/pkg/logger"
	"github.com/homechef-app/homechef-backend/pkg/metrics"
)

// State is the channel's connection lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Notifier receives notify-worthy status deltas after suppression.
type Notifier interface {
	Notify(ctx context.Context, change Change)
}

// VendorRoster supplies the initial vendor statuses for the snapshot seed.
type VendorRoster interface {
	ListStatuses(ctx context.Context) ([]vendors.Status, error)
}

// socket is the minimal connection surface the channel drives.
type socket interface {
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

type dialFunc func(ctx context.Context, rawURL string) (socket, error)

// Subscription is a handle on one subscriber; Cancel is idempotent.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel removes the subscriber. Cancelling the last one tears down the
// socket and any pending retry.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Channel maintains one long-lived connection to the realtime status feed,
// applying pushed events to its snapshots and fanning out to subscribers.
// It is constructed explicitly and wired where needed; there is no package
// singleton.
type Channel struct {
	cfg        config.RealtimeConfig
	logg       *logger.Logger
	metrics    *metrics.RealtimeMetrics
	snaps      *Snapshots
	roster     VendorRoster
	notifier   Notifier
	invalidate func(ctx context.Context, eventType string)

	// test seams; production uses the websocket dialer and time.AfterFunc
	dial  dialFunc
	after func(d time.Duration, fn func()) *time.Timer

	mu         sync.Mutex
	state      State
	subs       map[uint64]func()
	nextSubID  uint64
	attempts   int
	delay      *backoff.ExponentialBackOff
	retryTimer *time.Timer
	cancelConn context.CancelFunc
	gen        uint64
	seeded     bool
}

// Option adjusts channel construction.
type Option func(*Channel)

// WithNotifier routes notify-worthy deltas to the given notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Channel) { c.notifier = n }
}

// WithInvalidateHook routes recognized domain events to a cache/view
// invalidation callback.
func WithInvalidateHook(fn func(ctx context.Context, eventType string)) Option {
	return func(c *Channel) { c.invalidate = fn }
}

// NewChannel builds an idle channel; the dial loop starts with the first
// subscriber.
func NewChannel(cfg config.RealtimeConfig, roster VendorRoster, logg *logger.Logger, m *metrics.RealtimeMetrics, opts ...Option) *Channel {
	c := &Channel{
		cfg:     cfg,
		logg:    logg,
		metrics: m,
		snaps:   NewSnapshots(),
		roster:  roster,
		subs:    make(map[uint64]func()),
		delay:   newDelaySchedule(cfg),
		after:   time.AfterFunc,
	}
	c.dial = c.dialWebsocket
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newDelaySchedule yields base, base*2, base*4, ... capped at the
// configured ceiling. Randomization is off so retry timing is exact.
func newDelaySchedule(cfg config.RealtimeConfig) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.BackoffBase
	b.Multiplier = 2
	b.MaxInterval = cfg.BackoffCap
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

// Snapshots exposes the live status maps for read-model composition.
func (c *Channel) Snapshots() *Snapshots { return c.snaps }

// State returns the current lifecycle phase.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a callback invoked synchronously after every applied
// event. The first subscriber starts the dial loop.
func (c *Channel) Subscribe(fn func()) *Subscription {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	if len(c.subs) == 1 {
		c.startLocked()
	}
	c.mu.Unlock()

	return &Subscription{cancel: func() { c.unsubscribe(id) }}
}

func (c *Channel) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
	if len(c.subs) > 0 {
		return
	}
	c.teardownLocked()
	c.state = StateIdle
}

// Reconnect forces an immediate dial, replacing any pending scheduled
// retry and restarting the attempt budget. A no-op without subscribers.
func (c *Channel) Reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subs) == 0 {
		return
	}
	c.teardownLocked()
	c.attempts = 0
	c.delay.Reset()
	c.startLocked()
}

// Close tears everything down regardless of subscribers; used at shutdown.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.subs = make(map[uint64]func())
	c.state = StateClosed
}

// teardownLocked stops the pending retry timer and any live connection.
func (c *Channel) teardownLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	if c.cancelConn != nil {
		c.cancelConn()
		c.cancelConn = nil
	}
	c.gen++
}

// startLocked launches one dial attempt under a fresh generation. Stale
// goroutines from a previous generation cannot mutate channel state.
func (c *Channel) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelConn = cancel
	c.gen++
	gen := c.gen
	c.state = StateConnecting
	go c.run(ctx, gen)
}

func (c *Channel) run(ctx context.Context, gen uint64) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	conn, err := c.dial(dialCtx, c.feedURL())
	cancel()
	if err != nil {
		c.metrics.IncConnect("error")
		if !errors.Is(err, context.Canceled) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "realtime dial failed")
		}
		c.connectionLost(gen, true)
		return
	}
	c.metrics.IncConnect("success")

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.state = StateOpen
	c.attempts = 0
	c.delay.Reset()
	seeded := c.seeded
	c.mu.Unlock()

	if !seeded {
		c.seedRoster(ctx)
	}

	c.readLoop(ctx, gen, conn)
}

func (c *Channel) readLoop(ctx context.Context, gen uint64, conn socket) {
	defer func() { _ = conn.Close() }()
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if c.logg != nil {
				c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "realtime connection lost")
			}
			// a drop after Open retries on a fresh budget
			c.connectionLost(gen, false)
			return
		}
		c.handleFrame(ctx, data)
	}
}

// connectionLost moves to Closed and schedules the next dial, or parks the
// channel when the attempt budget is exhausted.
func (c *Channel) connectionLost(gen uint64, countAttempt bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || len(c.subs) == 0 {
		return
	}
	c.state = StateClosed
	c.cancelConn = nil

	if countAttempt {
		c.attempts++
		if c.attempts >= c.cfg.MaxAttempts {
			if c.logg != nil {
				c.logg.Warn(c.logg.WithField(context.Background(), "attempts", c.attempts), "realtime reconnect budget exhausted")
			}
			return
		}
	} else {
		c.attempts = 0
		c.delay.Reset()
	}

	wait := c.delay.NextBackOff()
	if wait == backoff.Stop || wait > c.cfg.BackoffCap {
		wait = c.cfg.BackoffCap
	}
	c.retryTimer = c.after(wait, c.retryFire)
}

// retryFire runs when a scheduled retry timer elapses.
func (c *Channel) retryFire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subs) == 0 || c.state != StateClosed {
		return
	}
	c.retryTimer = nil
	c.startLocked()
}

func (c *Channel) seedRoster(ctx context.Context) {
	if c.roster == nil {
		c.mu.Lock()
		c.seeded = true
		c.mu.Unlock()
		c.snaps.Seed(nil)
		return
	}
	statuses, err := c.roster.ListStatuses(ctx)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "vendor roster seed failed")
		}
		return
	}
	roster := make([]VendorStatus, 0, len(statuses))
	for _, status := range statuses {
		roster = append(roster, VendorStatus{ID: status.ID, Name: status.Name, IsOpen: status.IsOpen})
	}
	c.snaps.Seed(roster)
	c.mu.Lock()
	c.seeded = true
	c.mu.Unlock()
}

func (c *Channel) handleFrame(ctx context.Context, data []byte) {
	event, err := DecodeEvent(data)
	if err != nil {
		c.metrics.IncEvent("malformed")
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "realtime frame dropped")
		}
		return
	}

	switch ev := event.(type) {
	case VendorStatusEvent:
		c.metrics.IncEvent(TypeVendorStatus)
		change, notify := c.snaps.ApplyVendor(ev)
		if notify && c.notifier != nil {
			c.notifier.Notify(ctx, change)
		}
	case ProductAvailabilityEvent:
		c.metrics.IncEvent(TypeProductAvailability)
		change, notify := c.snaps.ApplyProduct(ev)
		if notify && c.notifier != nil {
			c.notifier.Notify(ctx, change)
		}
	case DomainEvent:
		c.metrics.IncEvent(ev.Type)
		if c.invalidate != nil {
			c.invalidate(ctx, ev.Type)
		}
	case UnknownEvent:
		c.metrics.IncEvent("unknown")
		return
	}

	c.fanOut()
}

// fanOut invokes every current subscriber once, synchronously, in the read
// goroutine. Callbacks must be fast; they read snapshots, not payloads.
func (c *Channel) fanOut() {
	c.mu.Lock()
	callbacks := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		callbacks = append(callbacks, fn)
	}
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (c *Channel) feedURL() string {
	raw := c.cfg.URL
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	if c.cfg.Role != "" {
		query.Set("role", c.cfg.Role)
	}
	if c.cfg.Token != "" {
		query.Set("token", c.cfg.Token)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// wsSocket adapts a coder/websocket connection to the socket interface.
type wsSocket struct {
	conn *websocket.Conn
}

func (w *wsSocket) Read(ctx context.Context) ([]byte, error) {
	for {
		msgType, data, err := w.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				return nil, fmt.Errorf("remote closed with status %d", status)
			}
			return nil, err
		}
		if msgType != websocket.MessageText {
			continue
		}
		return data, nil
	}
}

func (w *wsSocket) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}

func (c *Channel) dialWebsocket(ctx context.Context, rawURL string) (socket, error) {
	conn, _, err := websocket.Dial(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	conn.SetReadLimit(c.cfg.ReadLimit)
	return &wsSocket{conn: conn}, nil
}
