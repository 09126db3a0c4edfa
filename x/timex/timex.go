package timex

import "time"

// Tick is one count of the free-running hardware timer. 1 tick = 1 ms.
type Tick uint32

// TickRate is the number of ticks per second.
const TickRate = 1000

// Since returns now-then using modular arithmetic, so a single wrap of the
// 32-bit counter still yields the true elapsed count.
func Since(now, then Tick) Tick { return now - then }

// Duration converts a tick count to a time.Duration.
func (t Tick) Duration() time.Duration { return time.Duration(t) * time.Millisecond }

// TicksOf converts a duration to ticks, truncating sub-millisecond parts.
func TicksOf(d time.Duration) Tick {
	if d <= 0 {
		return 0
	}
	return Tick(d / time.Millisecond)
}

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }
