// Package console is an interactive command line for driving a controller
// session by hand.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"uc/common/types"
)

type Controller interface {
	Connect(ctx context.Context, addr string, port int) error
	Disconnect()
	Register(name string) error
	Deregister() error
	KeyDown(key string, extra ...string) error
	Joystick(x, y float32) error
	Gyro(x, y, z float32) error
	Status() types.SessionStatus
}

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("console: quit")

const prompt = "uc> "

const usage = `commands:
  connect <addr> <port>   dial the controller server
  register <name>         register a player
  deregister              release the player
  key <key> [extra...]    send a key press
  joy <x> <y>             send a joystick position, each in (-1, 1)
  gyro <x> <y> <z>        send a gyroscope reading, each in (-1, 1)
  status                  show the session
  disconnect              close the session
  help                    show this text
  quit                    leave the console
`

type Console struct {
	ctl            Controller
	connectTimeout time.Duration
	logger         *log.Entry

	mu  sync.Mutex
	out io.Writer
}

func New(ctl Controller, out io.Writer) *Console {
	return &Console{
		ctl:            ctl,
		out:            out,
		connectTimeout: 10 * time.Second,
		logger:         log.WithFields(log.Fields{"package": "console"}),
	}
}

// Run reads and executes lines until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context, lr *LineReader) error {
	c.printf("type help for commands\n")
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := lr.ReadLine(prompt)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := c.Execute(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			c.printf("error: %v\n", err)
		}
	}
}

// Execute runs a single command line.
func (c *Console) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	c.logger.Debugf("execute %s %v", cmd, args)

	switch cmd {
	case "connect":
		if len(args) != 2 {
			return fmt.Errorf("usage: connect <addr> <port>")
		}
		port, err := strconv.Atoi(args[1])
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("bad port %q", args[1])
		}
		ctx, cancel := context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
		if err := c.ctl.Connect(ctx, args[0], port); err != nil {
			return err
		}
		c.printf("connected to %s:%d\n", args[0], port)
	case "register":
		if len(args) != 1 {
			return fmt.Errorf("usage: register <name>")
		}
		return c.ctl.Register(args[0])
	case "deregister":
		return c.ctl.Deregister()
	case "key":
		if len(args) < 1 {
			return fmt.Errorf("usage: key <key> [extra...]")
		}
		return c.ctl.KeyDown(args[0], args[1:]...)
	case "joy", "joystick":
		axes, err := parseAxes(args, 2)
		if err != nil {
			return fmt.Errorf("usage: joy <x> <y>: %w", err)
		}
		return c.ctl.Joystick(axes[0], axes[1])
	case "gyro":
		axes, err := parseAxes(args, 3)
		if err != nil {
			return fmt.Errorf("usage: gyro <x> <y> <z>: %w", err)
		}
		return c.ctl.Gyro(axes[0], axes[1], axes[2])
	case "status":
		st := c.ctl.Status()
		c.printf("state=%s running=%t player=%q id=%d remote=%s:%d session=%s\n",
			st.State, st.Running, st.PlayerName, st.PlayerID, st.RemoteAddr, st.RemotePort, st.SessionID)
	case "disconnect":
		c.ctl.Disconnect()
	case "help", "?":
		c.printf("%s", usage)
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

// Notify prints a session event. It is safe to call from the read pump.
func (c *Console) Notify(event types.Event) {
	switch {
	case event.Kind == types.EventPlayerRegistered:
		c.printf("\nregistered as player %d\n", event.PlayerID)
	case event.Err != nil:
		c.printf("\n%s: %v\n", event.Kind, event.Err)
	default:
		c.printf("\n%s\n", event.Kind)
	}
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func parseAxes(args []string, n int) ([]float32, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(args))
	}
	axes := make([]float32, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, err
		}
		axes[i] = float32(v)
	}
	return axes, nil
}
