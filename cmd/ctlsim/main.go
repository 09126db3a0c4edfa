//go:build !tinygo

// Command ctlsim runs the control loop over simulated peripherals with an
// interactive shell, optionally bridged to an MQTT broker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"
	"gopkg.in/natefinch/lumberjack.v2"

	"ctrlloop-go/services/bridge"
	"ctrlloop-go/services/config"
	"ctrlloop-go/x/logx"
)

var (
	configPath = flag.String("config", "", "YAML config overlay.")
	boardName  = flag.String("board", "sim", "Compiled-in board to start from.")
	mqttURL    = flag.String("mqtt", "", "Broker URL, e.g. mqtt://localhost:1883/lab/board1/.")
	traceFile  = flag.String("trace-file", "", "Also write log records to this file, rotated.")
	stepMode   = flag.Bool("step", false, "Do not run the loop; advance it with 'tick'.")
	evalOnly   = flag.Bool("e", false, "Run the command given as arguments and exit.")
)

const machineKey = "$machine"

func loadConfig() (config.Config, error) {
	if *configPath == "" {
		cfg, err := config.ForBoard(*boardName)
		if err != nil {
			return cfg, err
		}
		cfg.Regs = config.RegsSim
		return cfg, cfg.Validate()
	}
	f, err := os.Open(*configPath)
	if err != nil {
		return config.Config{}, err
	}
	defer f.Close()
	cfg, err := config.Load(f)
	cfg.Regs = config.RegsSim
	return cfg, err
}

func newLogger(cfg config.Config) *logx.Logger {
	sinks := logx.Tee{logx.GlogSink{}}
	if *traceFile != "" {
		sinks = append(sinks, logx.NewWriterSink(&lumberjack.Logger{
			Filename:   *traceFile,
			MaxSize:    10,
			MaxBackups: 3,
		}))
	}
	return logx.New(sinks, cfg.Level())
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	log := newLogger(cfg)
	m := newMachine(cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !*stepMode {
		go m.run(ctx)
	}

	if *mqttURL != "" {
		opts, prefix, err := bridge.ClientOptionsFromURL(*mqttURL)
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		go bridge.New(prefix, m.in, m.dev.UART, log).Run(ctx, bridge.PahoDialer(opts))
	}

	sh := newShell(m)
	if *evalOnly {
		if err := sh.Process(flag.Args()...); err != nil {
			glog.Exitf("%v", err)
		}
		return
	}
	if *mqttURL == "" {
		go echoTX(ctx, m, sh)
	}
	sh.Run()
}

// echoTX prints what the board transmits when no bridge is consuming it.
func echoTX(ctx context.Context, m *machine, sh *ishell.Shell) {
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.dev.UART.TXReady():
		case <-time.After(100 * time.Millisecond):
		}
		for n := m.dev.UART.TakeTX(buf); n > 0; n = m.dev.UART.TakeTX(buf) {
			sh.Printf("uart tx: %q\n", buf[:n])
		}
	}
}

func machineFrom(c *ishell.Context) *machine {
	return c.Get(machineKey).(*machine)
}

// submit runs one queue-bound command line built from the shell arguments.
func submit(name string) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		args := append([]string{name}, c.Args...)
		if err := machineFrom(c).in.SubmitArgs(args); err != nil {
			c.Err(err)
		}
	}
}

func newShell(m *machine) *ishell.Shell {
	sh := ishell.New()
	sh.Set(machineKey, m)
	sh.SetPrompt(cfgPrompt(m) + " > ")

	sh.AddCmd(&ishell.Cmd{Name: "gpio", Help: "gpio <pin> <on|off>: queue a SetGpio", Func: submit("gpio")})
	sh.AddCmd(&ishell.Cmd{Name: "send", Help: "send <text|0xHEX..>: queue a SendMessage", Func: submit("send")})
	sh.AddCmd(&ishell.Cmd{Name: "wire", Help: "wire <id> <text>: queue a framed wire message", Func: submit("wire")})
	sh.AddCmd(&ishell.Cmd{Name: "reset", Help: "queue a Reset", Func: submit("reset")})

	sh.AddCmd(&ishell.Cmd{
		Name: "rx",
		Help: "rx <text>: bytes arriving on the board's UART",
		Func: func(c *ishell.Context) {
			data := []byte(strings.Join(c.Args, " "))
			if n := machineFrom(c).dev.UART.Inject(data); n < len(data) {
				c.Err(fmt.Errorf("rx fifo full, %d of %d bytes taken", n, len(data)))
			}
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "tick",
		Help: "tick [n]: run n loop iterations, one simulated ms each",
		Func: func(c *ishell.Context) {
			n := 1
			if len(c.Args) > 0 {
				v, err := strconv.Atoi(c.Args[0])
				if err != nil || v < 1 {
					c.Err(fmt.Errorf("bad count %q", c.Args[0]))
					return
				}
				n = v
			}
			m := machineFrom(c)
			for i := 0; i < n; i++ {
				m.step()
			}
			c.Printf("t=%d\n", m.snapshot().Now)
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "stats",
		Help: "loop and queue counters",
		Func: func(c *ishell.Context) {
			s := machineFrom(c).snapshot()
			c.Printf("t=%d iterations=%d commands=%d heartbeats=%d uart_rx=%d\n",
				s.Now, s.Loop.Iterations, s.Loop.Commands, s.Loop.Heartbeats, s.Loop.UARTBytes)
			c.Printf("write_errors=%d gpio_errors=%d bus_errors=%d uart_lost=%d\n",
				s.Loop.WriteErrors, s.Loop.GPIOErrors, s.Loop.BusErrors, s.Lost)
			c.Printf("queued=%d accepted=%d rejected=%d reboots=%d\n",
				s.Pending, s.Sent, s.Full, s.Reboots)
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "led",
		Help: "heartbeat LED and GPIO output register",
		Func: func(c *ishell.Context) {
			s := machineFrom(c).snapshot()
			state := "off"
			if s.LED {
				state = "on"
			}
			c.Printf("led %s gpio=0x%08X\n", state, s.Output)
		},
	})
	return sh
}

func cfgPrompt(m *machine) string { return "[" + m.cfg.Board + "]" }
