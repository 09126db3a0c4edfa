// Package logx is a small levelled logger with typed fields. Formatting uses
// x/conv only, so it runs on TinyGo targets without pulling in fmt.
package logx

import (
	"sync"

	"ctrlloop-go/x/conv"
)

type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "Trace"
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warn"
	case LevelError:
		return "Error"
	default:
		return "Off"
	}
}

// ParseLevel maps a level name to a Level; unknown names yield LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "off":
		return LevelOff
	default:
		return LevelInfo
	}
}

type kind uint8

const (
	kindStr kind = iota
	kindUint
	kindInt
	kindBool
	kindHex
	kindBytes
	kindErr
)

// Field is one key/value pair attached to a record.
type Field struct {
	Key string
	k   kind
	u   uint64
	i   int64
	s   string
	b   []byte
	err error
}

func Str(key, v string) Field          { return Field{Key: key, k: kindStr, s: v} }
func Uint(key string, v uint64) Field  { return Field{Key: key, k: kindUint, u: v} }
func Int(key string, v int64) Field    { return Field{Key: key, k: kindInt, i: v} }
func Hex(key string, v uint32) Field   { return Field{Key: key, k: kindHex, u: uint64(v)} }
func Bytes(key string, v []byte) Field { return Field{Key: key, k: kindBytes, b: v} }
func Err(err error) Field              { return Field{Key: "err", k: kindErr, err: err} }

func Bool(key string, v bool) Field {
	f := Field{Key: key, k: kindBool}
	if v {
		f.u = 1
	}
	return f
}

// AppendTo renders the field as key=value.
func (f Field) AppendTo(dst []byte) []byte {
	dst = append(dst, f.Key...)
	dst = append(dst, '=')
	switch f.k {
	case kindStr:
		dst = append(dst, f.s...)
	case kindUint:
		dst = conv.AppendUint(dst, f.u)
	case kindInt:
		dst = conv.AppendInt(dst, f.i)
	case kindBool:
		if f.u != 0 {
			dst = append(dst, "true"...)
		} else {
			dst = append(dst, "false"...)
		}
	case kindHex:
		dst = append(dst, "0x"...)
		dst = conv.AppendHex32(dst, uint32(f.u))
	case kindBytes:
		dst = append(dst, '[')
		dst = conv.AppendHex(dst, f.b)
		dst = append(dst, ']')
	case kindErr:
		if f.err == nil {
			dst = append(dst, "nil"...)
		} else {
			dst = append(dst, f.err.Error()...)
		}
	}
	return dst
}

// Sink receives records that passed the logger's level filter.
// Implementations must not block the caller for long.
type Sink interface {
	Emit(lvl Level, msg string, fields []Field)
}

// Logger filters by level and forwards to a Sink. A nil *Logger is valid and silent.
type Logger struct {
	sink Sink
	min  Level
	name string
}

func New(sink Sink, min Level) *Logger {
	return &Logger{sink: sink, min: min}
}

// Nop returns a logger that discards everything.
func Nop() *Logger { return &Logger{min: LevelOff} }

// Named returns a child logger that prefixes messages with name.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	if c.name != "" {
		c.name += "." + name
	} else {
		c.name = name
	}
	return &c
}

func (l *Logger) Enabled(lvl Level) bool {
	return l != nil && l.sink != nil && lvl >= l.min && lvl < LevelOff
}

func (l *Logger) log(lvl Level, msg string, fields []Field) {
	if !l.Enabled(lvl) {
		return
	}
	if l.name != "" {
		msg = l.name + ": " + msg
	}
	l.sink.Emit(lvl, msg, fields)
}

func (l *Logger) Trace(msg string, f ...Field) { l.log(LevelTrace, msg, f) }
func (l *Logger) Debug(msg string, f ...Field) { l.log(LevelDebug, msg, f) }
func (l *Logger) Info(msg string, f ...Field)  { l.log(LevelInfo, msg, f) }
func (l *Logger) Warn(msg string, f ...Field)  { l.log(LevelWarn, msg, f) }
func (l *Logger) Error(msg string, f ...Field) { l.log(LevelError, msg, f) }

// AppendRecord renders "msg k=v k=v" without the level.
func AppendRecord(dst []byte, msg string, fields []Field) []byte {
	dst = append(dst, msg...)
	for _, f := range fields {
		dst = append(dst, ' ')
		dst = f.AppendTo(dst)
	}
	return dst
}

// AppendLine renders "Level: msg k=v" followed by a newline.
func AppendLine(dst []byte, lvl Level, msg string, fields []Field) []byte {
	dst = append(dst, lvl.String()...)
	dst = append(dst, ": "...)
	dst = AppendRecord(dst, msg, fields)
	return append(dst, '\n')
}

// PrintSink writes through the runtime's println, the console on MCU builds.
type PrintSink struct {
	mu  sync.Mutex
	buf []byte
}

func (s *PrintSink) Emit(lvl Level, msg string, fields []Field) {
	s.mu.Lock()
	s.buf = AppendLine(s.buf[:0], lvl, msg, fields)
	print(string(s.buf))
	s.mu.Unlock()
}

// Memory keeps records in memory for tests.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

func (m *Memory) Emit(lvl Level, msg string, fields []Field) {
	line := AppendLine(nil, lvl, msg, fields)
	m.mu.Lock()
	m.lines = append(m.lines, string(line[:len(line)-1]))
	m.mu.Unlock()
}

// Lines returns a copy of everything emitted so far.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}
