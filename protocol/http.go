package protocol

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tasgo-io/tasgo/command"
)

// defaultHTTPTimeout bounds a command round-trip when the caller's
// context carries no deadline.
const defaultHTTPTimeout = 5 * time.Second

// maxResponseBody caps how much of a reply is read (devices answer with
// a few KB at most; this guards against a misconfigured address pointing
// at something else).
const maxResponseBody = 1 << 20

// HTTPOptions configures an HTTP device connection.
type HTTPOptions struct {
	// Address is the device's base address. A bare host or host:port is
	// accepted and normalised to http://host[:port].
	Address string

	// Username and Password are the device's web credentials, sent as
	// query parameters the way the firmware expects. Leave empty for
	// unsecured devices.
	Username string
	Password string

	// Timeout bounds each request. Zero means defaultHTTPTimeout.
	Timeout time.Duration

	// Client overrides the underlying HTTP client, mainly for tests.
	Client *http.Client
}

// HTTPClient talks to one device over its web interface.
//
// Tasmota exposes every command through a single endpoint:
// GET /cm?cmnd=<urlencoded command line>. Each call is an independent
// request/response pair; there is no session state.
type HTTPClient struct {
	base     string
	username string
	password string
	client   *http.Client
}

// NewHTTPClient validates the address and builds a client.
//
// Returns:
//   - *HTTPClient: Ready to use; no connection is made until the first
//     command
//   - error: ErrInvalidAddress (wrapped) if the address cannot be parsed
func NewHTTPClient(opts HTTPOptions) (*HTTPClient, error) {
	addr := strings.TrimSpace(opts.Address)
	if addr == "" {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, opts.Address, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidAddress, opts.Address)
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		base:     u.Scheme + "://" + u.Host,
		username: opts.Username,
		password: opts.Password,
		client:   client,
	}, nil
}

// SendCommand implements Protocol.
func (c *HTTPClient) SendCommand(ctx context.Context, cmd command.Command) (*CommandResponse, error) {
	return c.SendRaw(ctx, command.RequestString(cmd))
}

// SendRaw implements Protocol.
func (c *HTTPClient) SendRaw(ctx context.Context, line string) (*CommandResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.commandURL(line), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: device rejected credentials", ErrAuthFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}

	return NewResponse(line, body), nil
}

// Close implements Protocol. The HTTP transport holds no per-device
// resources.
func (c *HTTPClient) Close() error {
	return nil
}

// commandURL builds the /cm request URL for a command line.
//
// Spaces are encoded as %20 rather than "+": the firmware's parser
// treats both as spaces, but %20 matches what its own web UI sends.
func (c *HTTPClient) commandURL(line string) string {
	var sb strings.Builder
	sb.WriteString(c.base)
	sb.WriteString("/cm?")
	if c.username != "" {
		sb.WriteString("user=")
		sb.WriteString(queryEscape(c.username))
		sb.WriteString("&password=")
		sb.WriteString(queryEscape(c.password))
		sb.WriteString("&")
	}
	sb.WriteString("cmnd=")
	sb.WriteString(queryEscape(line))
	return sb.String()
}

func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
