// Package logtastic ships logs, events and errors to a logtastic
// server over HTTP.
//
// Posting happens on a background goroutine so logging never blocks
// on the network. When a post fails, new messages are dropped for
// a while instead of piling up.
package logtastic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/carlmjohnson/requests"
)

type op struct {
	uri  string
	mime string
	d    []byte
}

const (
	// how long to wait before we resume sending logs to the server
	// after a failure. doesn't affect logging to files
	throttleTimeout = time.Second * 15

	mimeJSON      = "application/json"
	mimePlainText = "text/plain"
)

type Config struct {
	// host:port or url of the server
	Server string
	ApiKey string
	// how many messages can wait to be sent, 1000 if 0
	QueueSize int
}

type Client struct {
	server  string
	apiKey  string
	ch      chan op
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool

	mu            sync.Mutex
	throttleUntil time.Time
}

func logf(s string, args ...interface{}) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	fmt.Print(s)
}

// New starts a worker that posts to the server until ctx is done or Stop
func New(ctx context.Context, config *Config) (*Client, error) {
	if config == nil || config.Server == "" {
		return nil, errors.New("logtastic: must provide Server in config")
	}
	server := strings.TrimSuffix(config.Server, "/")
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}
	n := config.QueueSize
	if n <= 0 {
		n = 1000
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Client{
		server: server,
		apiKey: config.ApiKey,
		ch:     make(chan op, n),
		ctx:    ctx,
		cancel: cancel,
	}
	c.wg.Add(1)
	go c.worker()
	return c, nil
}

func (c *Client) worker() {
	defer c.wg.Done()
	for op := range c.ch {
		if c.ctx.Err() != nil {
			continue
		}
		r := requests.
			URL(op.uri).
			BodyBytes(op.d).
			ContentType(op.mime)
		if c.apiKey != "" {
			r = r.Header("X-Api-Key", c.apiKey)
		}
		ctx, cancel := context.WithTimeout(c.ctx, time.Second*10)
		err := r.Fetch(ctx)
		cancel()
		if err != nil {
			logf("logtastic: POST %s failed: %v, will throttle for %s\n", op.uri, err, throttleTimeout)
			c.mu.Lock()
			c.throttleUntil = time.Now().Add(throttleTimeout)
			c.mu.Unlock()
		}
	}
}

// Stop sends messages already queued and stops the worker
func (c *Client) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	close(c.ch)
	c.mu.Unlock()
	c.wg.Wait()
	c.cancel()
}

// Throttled returns true if messages are dropped after a failed post
func (c *Client) Throttled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.throttleUntil)
}

func (c *Client) post(uriPath string, d []byte, mime string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || time.Now().Before(c.throttleUntil) {
		return
	}
	op := op{
		uri:  c.server + uriPath,
		mime: mime,
		d:    d,
	}
	select {
	case c.ch <- op:
	default:
		logf("logtastic: POST %s failed: channel full\n", op.uri)
	}
}

// Log sends a log line
func (c *Client) Log(s string) {
	c.post("/api/v1/log", []byte(s), mimePlainText)
}

// LogEvent sends an event with a given name and its values
func (c *Client) LogEvent(name string, m map[string]any) {
	v := map[string]any{}
	for k, val := range m {
		v[k] = val
	}
	v["name"] = name
	d, err := json.Marshal(v)
	if err != nil {
		logf("logtastic: json.Marshal() of event '%s' failed with '%s'\n", name, err)
		return
	}
	c.post("/api/v1/event", d, mimeJSON)
}

// LogError sends an error message, usually with a callstack
func (c *Client) LogError(s string) {
	m := map[string]any{
		"msg": s,
	}
	d, _ := json.Marshal(m)
	c.post("/api/v1/error", d, mimeJSON)
}
