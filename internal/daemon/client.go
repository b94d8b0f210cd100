package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/npratt/tabsuspend/internal/tabs"
	"github.com/npratt/tabsuspend/internal/tabstatus"
)

const (
	// DefaultClientTimeout is the default timeout for client operations.
	DefaultClientTimeout = 5 * time.Second
)

// ErrNotRunning is returned when no daemon is listening on the socket.
var ErrNotRunning = errors.New("daemon not running")

// Client connects to the daemon via Unix socket. It is safe for
// concurrent use; every call opens its own connection.
type Client struct {
	sockPath string
	timeout  time.Duration
}

// NewClient creates a new daemon client.
func NewClient(sockPath string) *Client {
	return &Client{
		sockPath: sockPath,
		timeout:  DefaultClientTimeout,
	}
}

// SetTimeout sets the per-call timeout. A context deadline that expires
// sooner still wins.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// call sends one request to the daemon and returns the response.
func (c *Client) call(ctx context.Context, method string, params any) (*Response, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.sockPath)
	if err != nil {
		return nil, c.wrapConnError(err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	req := Request{Method: method, Params: params}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, c.wrapConnError(fmt.Errorf("read response: %w", err))
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// wrapConnError converts connection errors to user-friendly messages.
func (c *Client) wrapConnError(err error) error {
	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.ENOENT:
			return fmt.Errorf("%w (socket not found)", ErrNotRunning)
		case syscall.ECONNREFUSED:
			return fmt.Errorf("%w (connection refused)", ErrNotRunning)
		}
	}

	if os.IsNotExist(err) {
		return fmt.Errorf("%w (socket not found)", ErrNotRunning)
	}

	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errors.New("daemon request timed out")
	}

	return fmt.Errorf("connect to daemon: %w", err)
}

// decodeResult converts the loosely typed result into out.
func decodeResult(resp *Response, out any) error {
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

// TabInfo asks for the active tab's status.
func (c *Client) TabInfo(ctx context.Context, forceFresh bool) (*tabstatus.Info, error) {
	resp, err := c.call(ctx, MethodTabInfo, TabInfoParams{ForceFresh: forceFresh})
	if err != nil {
		return nil, err
	}
	var info tabstatus.Info
	if err := decodeResult(resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// HighlightedTabs lists the selected tabs in the focused window.
func (c *Client) HighlightedTabs(ctx context.Context) ([]tabs.Summary, error) {
	resp, err := c.call(ctx, MethodHighlighted, nil)
	if err != nil {
		return nil, err
	}
	var out []tabs.Summary
	if err := decodeResult(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Command sends a command and reports what it changed.
func (c *Client) Command(ctx context.Context, cmd tabstatus.Command, status tabstatus.Status) (*tabs.Result, error) {
	resp, err := c.call(ctx, MethodCommand, CommandParams{Name: string(cmd), Status: string(status)})
	if err != nil {
		return nil, err
	}
	var res tabs.Result
	if err := decodeResult(resp, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Run sends a command without a status.
func (c *Client) Run(ctx context.Context, cmd tabstatus.Command) error {
	_, err := c.Command(ctx, cmd, "")
	return err
}

// UpdateIcon asks the daemon to refresh the toolbar icon.
func (c *Client) UpdateIcon(ctx context.Context, status tabstatus.Status) error {
	_, err := c.Command(ctx, tabstatus.CmdUpdateIcon, status)
	return err
}

// GetOption reads one setting.
func (c *Client) GetOption(ctx context.Context, name string) (any, error) {
	resp, err := c.call(ctx, MethodGetOption, OptionParams{Name: name})
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// SetOption writes one setting and returns the stored value.
func (c *Client) SetOption(ctx context.Context, name string, value any) (any, error) {
	resp, err := c.call(ctx, MethodSetOption, OptionParams{Name: name, Value: value})
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Status returns the current daemon status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	resp, err := c.call(ctx, MethodStatus, nil)
	if err != nil {
		return nil, err
	}
	var status StatusResponse
	if err := decodeResult(resp, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Stop requests the daemon to stop. If force is true, stops immediately.
func (c *Client) Stop(ctx context.Context, force bool) error {
	_, err := c.call(ctx, MethodStop, StopParams{Force: force})
	return err
}

// IsRunning checks if the daemon is running by attempting to connect.
func (c *Client) IsRunning() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
