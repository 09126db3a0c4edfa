// Package bridge connects a board to an MQTT broker: command lines arriving
// on <prefix>cmd are queued for the control loop, bytes the board transmits
// on its UART are published on <prefix>uart/tx, and the link state is kept
// retained on <prefix>bridge/state.
package bridge

import (
	"context"
	"encoding/json"
	"time"

	"ctrlloop-go/services/inject"
	"ctrlloop-go/x/logx"
	"ctrlloop-go/x/timex"
)

// Topic suffixes under the configured prefix.
const (
	TopicCmd      = "cmd"
	TopicCmdError = "cmd/error"
	TopicUARTTX   = "uart/tx"
	TopicState    = "bridge/state"
)

// Handler receives one inbound message.
type Handler func(topic string, payload []byte)

// Client is the broker session the bridge needs. Done fires once with the
// reason the session ended.
type Client interface {
	Publish(topic string, retained bool, payload []byte) error
	Subscribe(topic string, h Handler) error
	Done() <-chan error
	Close() error
}

// replyDepth bounds error replies waiting for the link goroutine.
const replyDepth = 8

// Dialer opens a broker session.
type Dialer func(ctx context.Context) (Client, error)

// TXSource yields the bytes a board wrote to its UART.
type TXSource interface {
	TakeTX(dst []byte) int
	TXReady() <-chan struct{}
}

// Service supervises one broker link.
type Service struct {
	prefix string
	in     *inject.Injector
	tx     TXSource
	log    *logx.Logger

	// Poll drains the TX source even when no edge was seen.
	Poll time.Duration
}

func New(prefix string, in *inject.Injector, tx TXSource, log *logx.Logger) *Service {
	return &Service{prefix: prefix, in: in, tx: tx, log: log.Named("bridge"), Poll: 100 * time.Millisecond}
}

func (s *Service) topic(suffix string) string { return s.prefix + suffix }

// Run dials, serves and redials with backoff until ctx ends.
func (s *Service) Run(ctx context.Context, dial Dialer) {
	backoff := backoffSeq(250*time.Millisecond, 5*time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c, err := dial(ctx)
		if err != nil {
			delay := backoff()
			s.log.Warn("Dial failed", logx.Err(err), logx.Int("retry_ms", delay.Milliseconds()))
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		s.log.Info("Link established")
		err = s.handleLink(ctx, c)
		_ = c.Close()
		if err == nil {
			return
		}
		delay := backoff()
		s.log.Warn("Link lost", logx.Err(err), logx.Int("retry_ms", delay.Milliseconds()))
		if !sleep(ctx, delay) {
			return
		}
	}
}

// handleLink owns one session. It returns nil only when ctx ends.
func (s *Service) handleLink(ctx context.Context, c Client) error {
	s.publishState(c, "up", "link_established", nil)
	replies := make(chan []byte, replyDepth)
	if err := c.Subscribe(s.topic(TopicCmd), s.onCommand(replies)); err != nil {
		s.publishState(c, "error", "subscribe_failed", err)
		return err
	}

	tick := time.NewTicker(s.Poll)
	defer tick.Stop()
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			s.publishState(c, "idle", "stopped", nil)
			return nil
		case err := <-c.Done():
			return err
		case msg := <-replies:
			if err := c.Publish(s.topic(TopicCmdError), false, msg); err != nil {
				s.log.Warn("Error reply failed", logx.Err(err))
			}
		case <-s.tx.TXReady():
		case <-tick.C:
		}
		if err := s.pumpTX(c, buf); err != nil {
			return err
		}
	}
}

func (s *Service) pumpTX(c Client, buf []byte) error {
	for {
		n := s.tx.TakeTX(buf)
		if n == 0 {
			return nil
		}
		if err := c.Publish(s.topic(TopicUARTTX), false, buf[:n]); err != nil {
			return err
		}
	}
}

// onCommand runs on the client's delivery goroutine, so it never publishes
// itself; error replies are handed to the link loop.
func (s *Service) onCommand(replies chan<- []byte) Handler {
	return func(_ string, payload []byte) {
		line := string(payload)
		err := s.in.SubmitLine(line)
		if err == nil {
			return
		}
		s.log.Debug("Command rejected", logx.Str("line", line), logx.Err(err))
		select {
		case replies <- []byte(err.Error() + ": " + line):
		default:
			s.log.Trace("Error reply dropped", logx.Str("line", line))
		}
	}
}

func (s *Service) publishState(c Client, level, status string, err error) {
	payload := map[string]any{
		"level":  level,
		"status": status,
		"ts_ms":  timex.NowMs(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	b, _ := json.Marshal(payload)
	if perr := c.Publish(s.topic(TopicState), true, b); perr != nil {
		s.log.Warn("State publish failed", logx.Err(perr))
	}
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	var cur = min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
