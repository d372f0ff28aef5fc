package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	domrepo "StructScan/internal/domain/repository"
	applogger "StructScan/pkg/logger"
)

const defaultMaxTickAge = 2 * time.Minute

// StreamSource keeps a last-tick cache fed by a quote WebSocket. GetPrice is a
// map lookup; the stream owns connection lifetime and reconnects itself.
type StreamSource struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	maxTickAge     time.Duration
	l              *applogger.Logger

	mu    sync.RWMutex
	conn  *websocket.Conn
	ticks map[string]tick

	cancel context.CancelFunc
	done   chan struct{}
}

type tick struct {
	price float64
	at    time.Time
}

func NewStreamSource(apiKey, websocketURL string, symbols []string, pingInterval time.Duration, l *applogger.Logger) *StreamSource {
	if pingInterval == 0 {
		pingInterval = 15 * time.Second
	}
	return &StreamSource{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: 3 * time.Second,
		pingInterval:   pingInterval,
		maxTickAge:     defaultMaxTickAge,
		l:              l,
		ticks:          make(map[string]tick),
	}
}

// Start connects and launches the read and ping loops. It returns after the
// first successful connect; later disconnects are handled internally.
func (s *StreamSource) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	if err := s.connect(ctx); err != nil {
		cancel()
		return err
	}

	go s.pingLoop(ctx)
	go s.readLoop(ctx)
	return nil
}

func (s *StreamSource) connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("pricefeed connect: %w", err)
	}

	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	if s.l != nil {
		s.l.Info("pricefeed stream connected", applogger.Strings("symbols", s.symbols))
	}
	return nil
}

func (s *StreamSource) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()
			if conn != nil {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

type wsTick struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type wsFrame struct {
	Type string   `json:"type"`
	Data []wsTick `json:"data"`
}

func (s *StreamSource) readLoop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			if !s.reconnect(ctx) {
				return
			}
			continue
		}

		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if s.l != nil {
				s.l.Warn("pricefeed read error", applogger.Error(err))
			}
			if !s.reconnect(ctx) {
				return
			}
			continue
		}

		var frame wsFrame
		if err := json.Unmarshal(b, &frame); err != nil || frame.Type != "trade" {
			continue
		}

		s.mu.Lock()
		for _, d := range frame.Data {
			s.ticks[d.S] = tick{price: d.P, at: time.UnixMilli(d.T)}
		}
		s.mu.Unlock()
	}
}

// reconnect closes the current connection and retries until it succeeds or
// the context ends. Returns false when the context is done.
func (s *StreamSource) reconnect(ctx context.Context) bool {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.reconnectDelay):
		}
		if err := s.connect(ctx); err != nil {
			if s.l != nil {
				s.l.Warn("pricefeed reconnect failed", applogger.Error(err))
			}
			continue
		}
		return true
	}
}

// GetPrice returns the cached tick for symbol. Ticks older than the staleness
// window count as no quote.
func (s *StreamSource) GetPrice(ctx context.Context, symbol string) domrepo.PriceQuote {
	s.mu.RLock()
	t, ok := s.ticks[symbol]
	s.mu.RUnlock()

	if !ok {
		return domrepo.PriceQuote{Source: "live", Err: fmt.Errorf("no tick for %s", symbol)}
	}
	if age := time.Since(t.at); age > s.maxTickAge {
		return domrepo.PriceQuote{Source: "live", Err: fmt.Errorf("tick for %s stale by %s", symbol, age.Round(time.Second))}
	}
	p := t.price
	return domrepo.PriceQuote{Spot: &p, Source: "live"}
}

// Close stops the loops and closes the connection.
func (s *StreamSource) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	if s.done != nil {
		<-s.done
	}
	return nil
}
