package results

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	client "github.com/elastic/go-lumber/client/v2"
	lj "github.com/elastic/go-lumber/lj"
	srv2 "github.com/elastic/go-lumber/server/v2"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
)

// --- Row shipping over lumberjack v2 ---

// Event converts a row to the map shipped to Logstash/Beats. JSON has no
// infinity, so a failed row carries "failed": true and no median.
func (r Row) Event() map[string]interface{} {
	evt := map[string]interface{}{
		"type":          "sorting_benchmark",
		"distribution":  r.Distribution.String(),
		"algorithm":     r.Algorithm,
		"n":             r.N,
		"stdev_seconds": r.StdevSeconds,
		"failed":        r.Failed(),
	}
	if !r.Failed() {
		evt["median_seconds"] = r.MedianSeconds
	}
	if r.Comparisons != nil {
		evt["comparisons"] = *r.Comparisons
	}
	return evt
}

// RowFromEvent is the inverse of Row.Event. Decoded JSON numbers arrive as
// float64.
func RowFromEvent(evt map[string]interface{}) (Row, error) {
	var r Row
	label, ok := evt["distribution"].(string)
	if !ok {
		return r, errors.New("missing distribution field")
	}
	dist, err := dataset.ParseDistribution(label)
	if err != nil {
		return r, err
	}
	r.Distribution = dist

	if r.Algorithm, ok = evt["algorithm"].(string); !ok || r.Algorithm == "" {
		return r, errors.New("missing algorithm field")
	}
	n, ok := number(evt["n"])
	if !ok || n < 1 {
		return r, errors.New("missing or invalid n field")
	}
	r.N = int(n)
	r.StdevSeconds, _ = number(evt["stdev_seconds"])

	if failed, _ := evt["failed"].(bool); failed {
		r.MedianSeconds = math.Inf(1)
	} else if r.MedianSeconds, ok = number(evt["median_seconds"]); !ok {
		return r, errors.New("missing median_seconds field")
	}
	if c, ok := number(evt["comparisons"]); ok {
		ci := int64(c)
		r.Comparisons = &ci
	}
	return r, nil
}

func number(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// Shipper sends rows to a lumberjack v2 endpoint.
type Shipper struct {
	addr   string
	client *client.SyncClient
}

// NewShipper dials addr.
func NewShipper(addr string, timeout time.Duration) (*Shipper, error) {
	c, err := client.SyncDial(addr, client.Timeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lumberjack endpoint %s: %w", addr, err)
	}
	return &Shipper{addr: addr, client: c}, nil
}

// Ship sends every row of the table in a single batch and waits for the ACK.
func (s *Shipper) Ship(t *Table) error {
	if t.Len() == 0 {
		return nil
	}
	events := make([]interface{}, 0, t.Len())
	for _, r := range t.Rows() {
		events = append(events, r.Event())
	}
	n, err := s.client.Send(events)
	if err != nil {
		return fmt.Errorf("failed to ship results to %s: %w", s.addr, err)
	}
	if n != len(events) {
		return fmt.Errorf("lumberjack endpoint %s acknowledged %d of %d rows", s.addr, n, len(events))
	}
	return nil
}

func (s *Shipper) Close() error { return s.client.Close() }

// --- Row collection over lumberjack v2 ---

// Collector receives shipped rows from remote benchmark runs.
type Collector struct {
	listener    net.Listener
	readTimeout time.Duration
	batches     chan *lj.Batch
	server      *srv2.Server
}

func NewCollector(addr string, readTimeout time.Duration) (*Collector, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &Collector{
		listener:    ln,
		readTimeout: readTimeout,
		batches:     make(chan *lj.Batch, 64),
	}, nil
}

// Addr is the bound listen address.
func (c *Collector) Addr() string { return c.listener.Addr().String() }

// Accept starts the lumberjack v2 server.
func (c *Collector) Accept() error {
	srv, err := srv2.NewWithListener(c.listener, srv2.Timeout(c.readTimeout))
	if err != nil {
		return fmt.Errorf("failed to create lumberjack server: %w", err)
	}
	c.server = srv

	// Pull batches off ReceiveChan and ack them.
	go func() {
		for batch := range c.server.ReceiveChan() {
			c.batches <- batch
			batch.ACK()
		}
		close(c.batches)
	}()
	return nil
}

// ErrCollectorClosed is returned by Next once the server has shut down.
var ErrCollectorClosed = errors.New("collector closed")

// Next blocks until a batch arrives and decodes its rows. Events that do not
// decode are reported in the joined error alongside the good rows.
func (c *Collector) Next(ctx context.Context) ([]Row, error) {
	var batch *lj.Batch
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b, ok := <-c.batches:
		if !ok {
			return nil, ErrCollectorClosed
		}
		batch = b
	}
	var rows []Row
	var errs []error
	for _, evt := range batch.Events {
		m, isMap := evt.(map[string]interface{})
		if !isMap {
			errs = append(errs, fmt.Errorf("unexpected event type %T", evt))
			continue
		}
		r, err := RowFromEvent(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, r)
	}
	return rows, errors.Join(errs...)
}

// Close shuts down the server and listener.
func (c *Collector) Close() error {
	if c.server != nil {
		c.server.Close()
	}
	if err := c.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
