package console

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uc/common/types"
)

type fakeController struct {
	calls  []string
	err    error
	status types.SessionStatus
}

func (f *fakeController) Connect(ctx context.Context, addr string, port int) error {
	f.calls = append(f.calls, "connect "+addr+" "+strconv.Itoa(port))
	return f.err
}

func (f *fakeController) Disconnect() { f.calls = append(f.calls, "disconnect") }

func (f *fakeController) Register(name string) error {
	f.calls = append(f.calls, "register "+name)
	return f.err
}

func (f *fakeController) Deregister() error {
	f.calls = append(f.calls, "deregister")
	return f.err
}

func (f *fakeController) KeyDown(key string, extra ...string) error {
	f.calls = append(f.calls, strings.TrimSpace("key "+key+" "+strings.Join(extra, " ")))
	return f.err
}

func (f *fakeController) Joystick(x, y float32) error {
	f.calls = append(f.calls, "joystick")
	return f.err
}

func (f *fakeController) Gyro(x, y, z float32) error {
	f.calls = append(f.calls, "gyro")
	return f.err
}

func (f *fakeController) Status() types.SessionStatus { return f.status }

func TestExecute(t *testing.T) {
	ctl := &fakeController{}
	var out bytes.Buffer
	c := New(ctl, &out)
	ctx := context.Background()

	for _, line := range []string{
		"connect 127.0.0.1 7777",
		"register alice",
		"key A",
		"KEY B 1 2",
		"joy 0.5 -0.5",
		"gyro 0.1 0.2 0.3",
		"deregister",
		"disconnect",
		"",
	} {
		require.NoError(t, c.Execute(ctx, line), line)
	}
	assert.Equal(t, []string{
		"connect 127.0.0.1 7777",
		"register alice",
		"key A",
		"key B 1 2",
		"joystick",
		"gyro",
		"deregister",
		"disconnect",
	}, ctl.calls)
	assert.Contains(t, out.String(), "connected to 127.0.0.1:7777")
}

func TestExecuteUsageErrors(t *testing.T) {
	ctl := &fakeController{}
	c := New(ctl, &bytes.Buffer{})
	ctx := context.Background()

	for _, line := range []string{
		"connect 127.0.0.1",
		"connect 127.0.0.1 port",
		"connect 127.0.0.1 70000",
		"register",
		"register a b",
		"key",
		"joy 0.5",
		"joy a b",
		"gyro 1 2",
		"dance",
	} {
		assert.Error(t, c.Execute(ctx, line), line)
	}
	assert.Empty(t, ctl.calls)
}

func TestExecutePassesControllerErrors(t *testing.T) {
	ctl := &fakeController{err: types.ErrPlayerNotRegistered}
	c := New(ctl, &bytes.Buffer{})
	err := c.Execute(context.Background(), "key A")
	assert.True(t, errors.Is(err, types.ErrPlayerNotRegistered))
}

func TestQuit(t *testing.T) {
	c := New(&fakeController{}, &bytes.Buffer{})
	assert.ErrorIs(t, c.Execute(context.Background(), "quit"), ErrQuit)
}

func TestStatusAndHelp(t *testing.T) {
	ctl := &fakeController{status: types.SessionStatus{State: "connected_registered", Running: true, PlayerName: "alice", PlayerID: 2}}
	var out bytes.Buffer
	c := New(ctl, &out)

	require.NoError(t, c.Execute(context.Background(), "status"))
	assert.Contains(t, out.String(), "state=connected_registered")
	assert.Contains(t, out.String(), "id=2")

	require.NoError(t, c.Execute(context.Background(), "help"))
	assert.Contains(t, out.String(), "gyro <x> <y> <z>")
}

func TestRun(t *testing.T) {
	ctl := &fakeController{err: types.ErrPlayerNotRegistered}
	var out bytes.Buffer
	c := New(ctl, &out)

	lr := NewScannerReader(strings.NewReader("key A\nquit\nkey B\n"))
	require.NoError(t, c.Run(context.Background(), lr))
	assert.Equal(t, []string{"key A"}, ctl.calls)
	assert.Contains(t, out.String(), "error: player not registered")

	lr = NewScannerReader(strings.NewReader("status\n"))
	require.NoError(t, c.Run(context.Background(), lr))
}

func TestNotify(t *testing.T) {
	var out bytes.Buffer
	c := New(&fakeController{}, &out)

	c.Notify(types.Event{Kind: types.EventPlayerRegistered, PlayerID: 4})
	c.Notify(types.Event{Kind: types.EventServerFull})
	c.Notify(types.Event{Kind: types.EventServerDisconnected, Err: types.ErrNotConnected})

	s := out.String()
	assert.Contains(t, s, "registered as player 4")
	assert.Contains(t, s, types.EventServerFull.String())
	assert.Contains(t, s, types.EventServerDisconnected.String()+": not connected")
}
