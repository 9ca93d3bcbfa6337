package httpcore

import (
	"context"
	"net"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/xrootd-go/xrdcore/httpcore/handlerqueue"
	"github.com/xrootd-go/xrdcore/httpcore/headerparser"
	"github.com/xrootd-go/xrdcore/httpcore/verbscache"
	"github.com/xrootd-go/xrdcore/internal/cos"
	"github.com/xrootd-go/xrdcore/internal/nlog"
)

// DefaultMaxOps is m_max_ops: the number of concurrent transfers one
// CurlWorker drives at a time.
const DefaultMaxOps = 20

// DefaultMaintenanceInterval matches "maintenance (default every 5 s)".
const DefaultMaintenanceInterval = 5 * time.Second

// Op is the interface CurlWorker drives: an operation's identity plus its
// three overridable lifecycle hooks.
type Op interface {
	Base() *CurlOperation
	Setup() error
	Redirect(location string) error
	Success() error
}

// outcomeCounters tallies completions per verb per coarse status class, the
// "per-verb per-status-code" statistics CurlWorker maintains.
type outcomeCounters struct {
	byVerbStatus map[string]*cos.Int64
}

func newOutcomeCounters() *outcomeCounters {
	return &outcomeCounters{byVerbStatus: make(map[string]*cos.Int64)}
}

func (c *outcomeCounters) bump(verb string, status int) {
	key := verb + ":" + statusClass(status)
	ctr, ok := c.byVerbStatus[key]
	if !ok {
		ctr = &cos.Int64{}
		c.byVerbStatus[key] = ctr
	}
	ctr.Inc()
}

// Snapshot returns a copy of the per-verb/status-class counters.
func (c *outcomeCounters) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(c.byVerbStatus))
	for k, v := range c.byVerbStatus {
		out[k] = v.Load()
	}
	return out
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "timeout"
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "other"
	}
}

// Worker is CurlWorker: a goroutine driving up to MaxOps concurrent
// transfers, consuming from a shared HandlerQueue and maintaining
// periodic maintenance (expiry, statistics) the same way the factory's
// monitoring thread expects.
type Worker struct {
	Queue   *handlerqueue.Queue
	Verbs   *verbscache.Cache
	Callout *CalloutRegistry
	Client  *fasthttp.Client

	MaxOps      int
	Maintenance time.Duration

	counters *outcomeCounters
	stopCh   cos.StopCh
}

// NewWorker returns a worker over the given shared queue and verbs cache.
// client is the concrete "native transfer library" handle this worker
// multiplexes; fasthttp.Client (not HostClient) is used because a single
// operation's redirect chain can cross host authorities.
func NewWorker(q *handlerqueue.Queue, verbs *verbscache.Cache, client *fasthttp.Client) *Worker {
	w := &Worker{
		Queue:       q,
		Verbs:       verbs,
		Callout:     NewCalloutRegistry(),
		Client:      client,
		MaxOps:      DefaultMaxOps,
		Maintenance: DefaultMaintenanceInterval,
		counters:    newOutcomeCounters(),
	}
	w.stopCh.Init()
	if client != nil && client.Dial == nil {
		client.Dial = w.dial
	}
	return w
}

// dial is the fasthttp Dial hook: the Go-idiomatic substitute for
// CURLOPT_OPENSOCKETFUNCTION. If addr matches a synthesized 169.254.x.y
// fake-DNS key registered by a ConnectionCallout, the callout supplies the
// connection instead of a real TCP dial; otherwise it falls through to a
// normal dial.
func (w *Worker) dial(addr string) (net.Conn, error) {
	if callout, ok := w.Callout.Resolve(addr); ok {
		w.Callout.Acquire(addr)
		conn, err := callout.Dial(addr)
		if err != nil {
			w.Callout.Release(addr)
			return nil, err
		}
		return &calloutConn{Conn: conn, registry: w.Callout, key: addr}, nil
	}
	return fasthttp.DialTimeout(addr, 30*time.Second)
}

// calloutConn releases its callout's reference count on Close, matching
// the "reference counts incremented at open, decremented at close"
// invariant.
type calloutConn struct {
	net.Conn
	registry  *CalloutRegistry
	key       string
	closeOnce bool
}

func (c *calloutConn) Close() error {
	if !c.closeOnce {
		c.closeOnce = true
		c.registry.Release(c.key)
	}
	return c.Conn.Close()
}

// Shutdown signals the worker's run loop to drain and exit. Safe to call
// multiple times.
func (w *Worker) Shutdown() { w.stopCh.Close() }

// Run drives the worker loop until ctx is cancelled or Shutdown is called.
// It consumes operations from the queue up to MaxOps concurrently and runs
// periodic maintenance (expiring VerbsCache and CalloutRegistry entries).
func (w *Worker) Run(ctx context.Context) error {
	inflight := make(chan struct{}, w.MaxOps)
	ticker := time.NewTicker(w.Maintenance)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh.Listen():
			return nil
		case <-ticker.C:
			w.maintain()
		default:
		}

		item, err := w.Queue.Consume(ctx, 200*time.Millisecond)
		if err != nil {
			continue
		}
		op, ok := item.(Op)
		if !ok {
			nlog.Errorf("curlworker: queue item is not an Op: %T", item)
			continue
		}

		inflight <- struct{}{}
		go func() {
			defer func() { <-inflight }()
			w.drive(ctx, op)
		}()
	}
}

func (w *Worker) maintain() {
	w.Verbs.Expire(time.Now())
	w.Callout.Reap(time.Minute)
}

// drive runs one operation to completion, handling timeouts, redirects,
// and callback-driven hook dispatch.
func (w *Worker) drive(ctx context.Context, op Op) {
	base := op.Base()
	base.SetState(Setup)
	if err := op.Setup(); err != nil {
		base.err = ErrCallback
		base.SetState(Failed)
		w.counters.bump(base.Verb, 0)
		return
	}
	base.SetState(Active)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	var calloutKey string
	if base.Callout != nil {
		calloutKey = w.Callout.Register(base.Callout)
	}

	for redirects := 0; redirects < 10; redirects++ {
		if base.CheckHeaderTimeout(time.Now()) {
			w.counters.bump(base.Verb, 0)
			return
		}

		req.SetRequestURI(base.URL)
		if calloutKey != "" {
			// Host header stays the real authority; only the Dial
			// address is redirected to the synthesized fake-DNS key,
			// so the peer still sees the request it expects.
			realHost := string(req.Header.Host())
			req.Header.SetHost(realHost)
			req.URI().SetHost(calloutKey)
		}
		req.Header.SetMethod(base.Verb)
		if base.HeaderCallout != nil {
			for k, v := range base.HeaderCallout() {
				req.Header.Set(k, v)
			}
		}

		deadline := base.HeaderDeadline
		if err := w.Client.DoDeadline(req, resp, deadline); err != nil {
			base.err = ErrHeaderTimeout
			base.SetState(Failed)
			w.counters.bump(base.Verb, 0)
			return
		}

		hdr := headerparser.New()
		hdr.SeedStatus(resp.StatusCode(), "")
		resp.Header.VisitAll(func(k, v []byte) {
			hdr.FeedLine(string(k) + ": " + string(v))
		})
		hdr.FeedLine("")
		base.OnHeaderReceived(hdr)
		base.OnBytesTransferred(int64(len(resp.Body())), time.Now())

		status := resp.StatusCode()
		w.counters.bump(base.Verb, status)

		if status >= 300 && status < 400 {
			loc := string(resp.Header.Peek("Location"))
			if loc == "" {
				base.err = ErrProtocol
				base.SetState(Failed)
				return
			}
			if err := op.Redirect(loc); err != nil {
				base.err = ErrProtocol
				base.SetState(Failed)
				return
			}
			resp.Reset()
			continue
		}

		if status >= 200 && status < 300 {
			if err := op.Success(); err != nil {
				base.err = ErrCallback
				base.SetState(Failed)
				return
			}
			base.SetState(Finished)
			return
		}

		base.err = ErrProtocol
		base.SetState(Failed)
		return
	}
	base.err = ErrProtocol
	base.SetState(Failed)
}
