// Package inject turns text commands into queue entries. The command queue
// has a single producer, so Injector serialises every caller through one
// producer handle.
//
// Grammar (shell quoting applies):
//
//	gpio <pin> <on|off|1|0>
//	send <text>...        text joined with single spaces
//	send 0x<hex>...       raw bytes
//	wire <id> <text>...   framed as a wire message
//	reset
package inject

import (
	"encoding/hex"
	"strconv"
	"strings"
	"sync"

	"github.com/google/shlex"

	"ctrlloop-go/errcode"
	"ctrlloop-go/protocol"
	"ctrlloop-go/services/control"
	"ctrlloop-go/x/logx"
)

func bad(msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "inject.parse", Msg: msg}
}

// Parse reads one command line. Blank lines are errcode.InvalidCommand.
func Parse(line string) (protocol.Command, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return protocol.Command{}, errcode.Wrap(errcode.InvalidParams, "inject.parse", err)
	}
	return ParseArgs(args)
}

// ParseArgs is Parse for pre-split arguments.
func ParseArgs(args []string) (protocol.Command, error) {
	if len(args) == 0 {
		return protocol.Command{}, errcode.InvalidCommand
	}
	switch strings.ToLower(args[0]) {
	case "gpio":
		if len(args) != 3 {
			return protocol.Command{}, bad("usage: gpio <pin> <on|off>")
		}
		pin, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return protocol.Command{}, bad("pin " + args[1])
		}
		state, err := parseState(args[2])
		if err != nil {
			return protocol.Command{}, err
		}
		return protocol.SetGpio(uint8(pin), state), nil

	case "send":
		if len(args) < 2 {
			return protocol.Command{}, bad("usage: send <text|0xHEX>")
		}
		data, err := payload(args[1:])
		if err != nil {
			return protocol.Command{}, err
		}
		return protocol.SendMessage(data)

	case "wire":
		if len(args) < 3 {
			return protocol.Command{}, bad("usage: wire <id> <text>")
		}
		id, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return protocol.Command{}, bad("id " + args[1])
		}
		data, err := payload(args[2:])
		if err != nil {
			return protocol.Command{}, err
		}
		m := protocol.NewMessage(uint16(id))
		if err := m.AddData(data); err != nil {
			return protocol.Command{}, err
		}
		return protocol.SendWire(&m), nil

	case "reset":
		if len(args) != 1 {
			return protocol.Command{}, bad("usage: reset")
		}
		return protocol.Reset(), nil
	}
	return protocol.Command{}, errcode.InvalidCommand
}

func parseState(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "high", "true":
		return true, nil
	case "off", "0", "low", "false":
		return false, nil
	}
	return false, bad("state " + s)
}

// payload decodes 0x-prefixed hex when every word carries the prefix;
// otherwise the words are sent as text.
func payload(words []string) ([]byte, error) {
	allHex := true
	for _, w := range words {
		if !strings.HasPrefix(w, "0x") && !strings.HasPrefix(w, "0X") {
			allHex = false
			break
		}
	}
	if !allHex {
		return []byte(strings.Join(words, " ")), nil
	}
	var out []byte
	for _, w := range words {
		b, err := hex.DecodeString(w[2:])
		if err != nil {
			return nil, bad("hex " + w)
		}
		out = append(out, b...)
	}
	return out, nil
}

// Injector is the one producer of a command queue, shared by any number
// of goroutines.
type Injector struct {
	mu   sync.Mutex
	p    *control.Producer
	log  *logx.Logger
	sent uint32
	full uint32
}

func New(p *control.Producer, log *logx.Logger) *Injector {
	return &Injector{p: p, log: log.Named("inject")}
}

// Submit enqueues cmd, or returns errcode.QueueFull without waiting.
func (in *Injector) Submit(cmd protocol.Command) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if err := in.p.Enqueue(cmd); err != nil {
		in.full++
		in.log.Trace("Command dropped", logx.Str("kind", cmd.Kind().String()), logx.Err(err))
		return err
	}
	in.sent++
	in.log.Debug("Command queued", logx.Str("kind", cmd.Kind().String()))
	return nil
}

// SubmitLine parses and enqueues one command line.
func (in *Injector) SubmitLine(line string) error {
	cmd, err := Parse(line)
	if err != nil {
		return err
	}
	return in.Submit(cmd)
}

// SubmitArgs is SubmitLine for pre-split arguments.
func (in *Injector) SubmitArgs(args []string) error {
	cmd, err := ParseArgs(args)
	if err != nil {
		return err
	}
	return in.Submit(cmd)
}

// Retarget points the injector at a new queue, as after a reboot.
func (in *Injector) Retarget(p *control.Producer) {
	in.mu.Lock()
	in.p = p
	in.mu.Unlock()
}

// Counts reports accepted and rejected submissions.
func (in *Injector) Counts() (sent, full uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.sent, in.full
}

// Pending is the number of queued commands not yet taken by the loop.
func (in *Injector) Pending() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.p.Len()
}
