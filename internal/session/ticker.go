package session

import "time"

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every interval.
type TickerFunc func(interval time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

// NewTimeTicker returns a Ticker backed by time.Ticker.
func NewTimeTicker(interval time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(interval)}
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }
