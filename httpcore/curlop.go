// Package httpcore implements HttpCore: a high-concurrency multiplexed
// HTTP/WebDAV client built over fasthttp as its concrete transfer engine.
// CurlOperation is the state-machine base every request variant embeds;
// CurlWorker drives a pool of in-flight operations; HttpFactory owns
// process-wide lifecycle.
package httpcore

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/xrootd-go/xrdcore/httpcore/headerparser"
	"github.com/xrootd-go/xrdcore/internal/cos"
)

// OpError is the structured abort reason a CurlOperation can complete
// with, matching the error-kind taxonomy.
type OpError int

const (
	ErrNone OpError = iota
	ErrHeaderTimeout
	ErrOperationTimeout
	ErrTransferStall
	ErrTransferSlow
	ErrTransferClientStall
	ErrCallback
	ErrProtocol
)

func (e OpError) Kind() cos.ErrKind {
	switch e {
	case ErrHeaderTimeout:
		return cos.KindHeaderTimeout
	case ErrOperationTimeout:
		return cos.KindOperationTimeout
	case ErrTransferStall:
		return cos.KindTransferStall
	case ErrTransferSlow:
		return cos.KindTransferSlow
	case ErrTransferClientStall:
		return cos.KindTransferClientStall
	case ErrProtocol:
		return cos.KindProtocolError
	default:
		return cos.KindNone
	}
}

// Lifecycle is a CurlOperation's coarse state.
type Lifecycle int

const (
	Constructed Lifecycle = iota
	Setup
	Active
	Redirecting
	Paused
	Finished
	Failed
)

// ResponseInfo captures one hop's response headers, so a redirect chain's
// response-info vector has one entry per hop.
type ResponseInfo struct {
	StatusCode int
	Headers    map[string][]string
}

// DefaultStallInterval and DefaultHeaderTimeout match the factory's
// documented defaults; CurlOperation itself just stores whatever it's
// configured with.
const (
	DefaultStallInterval = 5 * time.Second
	DefaultHeaderTimeout = 9500 * time.Millisecond
	MinHeaderTimeout     = 2 * time.Second
)

// CurlOperation is the state-machine base every request variant embeds.
type CurlOperation struct {
	Verb string
	URL  string

	Callout       ConnectionCallout
	HeaderCallout func() map[string]string

	HeaderDeadline    time.Time
	OperationDeadline time.Time // zero value means "no operation deadline"

	StallInterval time.Duration // 0 disables stall detection
	SlowRateFloor int64         // bytes/sec; 0 disables slow detection

	mu sync.Mutex

	state          Lifecycle
	responseInfo   []ResponseInfo
	receivedHeader bool
	paused         bool
	pauseStarted   time.Time
	pauseAccum     time.Duration

	lastXferBytes int64
	lastXferTime  time.Time
	emaRate       float64
	lastRate      float64
	bytesAtReset  int64

	preHeaderStart  time.Time
	headerReceived  time.Time
	pauseAtReset    time.Duration

	err OpError
}

// NewOperation returns a CurlOperation ready for Setup, with its header
// deadline computed from now+timeout.
func NewOperation(verb, url string, headerTimeout time.Duration) *CurlOperation {
	if headerTimeout < MinHeaderTimeout {
		headerTimeout = MinHeaderTimeout
	}
	now := time.Now()
	return &CurlOperation{
		Verb:           verb,
		URL:            url,
		state:          Constructed,
		HeaderDeadline: now.Add(headerTimeout),
		StallInterval:  DefaultStallInterval,
		preHeaderStart: now,
		lastXferTime:   now,
	}
}

// Base satisfies Op for CurlOperation itself, so it can be driven directly
// when no derived behavior is needed.
func (o *CurlOperation) Base() *CurlOperation { return o }

// Setup is the default no-op hook; derived operations override it to
// attach request headers/body.
func (o *CurlOperation) Setup() error { return nil }

// Success is the default no-op hook; derived operations override it to
// parse a successful response body.
func (o *CurlOperation) Success() error { return nil }

// Redirect implements the base redirect policy: absolute location (begins
// with "/") is resolved against the current URL's authority; otherwise
// the location is used as-is. dav:/davs: schemes are rewritten to
// http:/https: before dispatch. Derived operations that need to reset
// request-specific state override this and call the base afterward.
func (o *CurlOperation) Redirect(location string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := location
	if strings.HasPrefix(location, "/") {
		authority := authorityOf(o.URL)
		next = authority + location
	}
	next = rewriteDAVScheme(next)

	o.URL = next
	o.state = Redirecting
	o.receivedHeader = false
	return nil
}

func authorityOf(rawURL string) string {
	i := strings.Index(rawURL, "://")
	if i < 0 {
		return ""
	}
	rest := rawURL[:i+3]
	path := rawURL[i+3:]
	if j := strings.IndexByte(path, '/'); j >= 0 {
		rest += path[:j]
	} else {
		rest += path
	}
	return rest
}

func rewriteDAVScheme(url string) string {
	switch {
	case strings.HasPrefix(url, "davs://"):
		return "https://" + strings.TrimPrefix(url, "davs://")
	case strings.HasPrefix(url, "dav://"):
		return "http://" + strings.TrimPrefix(url, "dav://")
	default:
		return url
	}
}

// OnHeaderReceived records that a complete response line has arrived,
// pushing a fresh ResponseInfo onto the per-redirect-hop vector.
func (o *CurlOperation) OnHeaderReceived(hdr *headerparser.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.receivedHeader = true
	o.headerReceived = time.Now()
	o.responseInfo = append(o.responseInfo, ResponseInfo{
		StatusCode: hdr.StatusCode,
		Headers:    hdr.Headers(),
	})
}

// ResponseInfoLen reports the redirect chain's current length.
func (o *CurlOperation) ResponseInfoLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.responseInfo)
}

// Pause suspends deadline/stall accounting, e.g. while a caller-side
// backpressure condition is in effect.
func (o *CurlOperation) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.paused {
		o.paused = true
		o.pauseStarted = time.Now()
		o.state = Paused
	}
}

// Unpause resumes accounting, folding the elapsed pause into the
// accumulator so deadline checks can exclude paused time.
func (o *CurlOperation) Unpause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.paused {
		o.pauseAccum += time.Since(o.pauseStarted)
		o.paused = false
		if o.state == Paused {
			o.state = Active
		}
	}
}

// CheckHeaderTimeout aborts with ErrHeaderTimeout if no header has been
// seen by the deadline, excluding any time spent paused.
func (o *CurlOperation) CheckHeaderTimeout(now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.receivedHeader || o.paused {
		return false
	}
	effective := o.HeaderDeadline.Add(o.pauseAccum)
	if now.After(effective) {
		o.err = ErrHeaderTimeout
		o.state = Failed
		return true
	}
	return false
}

// CheckOperationTimeout aborts with ErrOperationTimeout once headers are
// in and the (optional) operation deadline has elapsed.
func (o *CurlOperation) CheckOperationTimeout(now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.receivedHeader || o.OperationDeadline.IsZero() {
		return false
	}
	if now.After(o.OperationDeadline.Add(o.pauseAccum)) {
		o.err = ErrOperationTimeout
		o.state = Failed
		return true
	}
	return false
}

// OnBytesTransferred folds n newly transferred bytes into the stall/slow
// detectors. It should be invoked from the worker's progress callback.
func (o *CurlOperation) OnBytesTransferred(n int64, now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n > 0 {
		o.lastXferBytes += n
		dt := now.Sub(o.lastXferTime)
		if dt > 0 {
			rate := float64(n) / dt.Seconds()
			o.lastRate = rate
			alpha := 1 - expNeg(dt, o.stallIntervalOrDefault())
			o.emaRate = alpha*rate + (1-alpha)*o.emaRate
		}
		o.lastXferTime = now
	}
}

func (o *CurlOperation) stallIntervalOrDefault() time.Duration {
	if o.StallInterval <= 0 {
		return DefaultStallInterval
	}
	return o.StallInterval
}

// expNeg computes exp(-dt/interval), the EMA decay factor named in the
// stall/slow detection formula.
func expNeg(dt, interval time.Duration) float64 {
	return math.Exp(-dt.Seconds() / interval.Seconds())
}

// CheckStallAndSlow aborts with ErrTransferStall (or ErrTransferClientStall
// if paused) when no bytes have moved for StallInterval, or with
// ErrTransferSlow when the most recent instantaneous rate drops below
// SlowRateFloor after StallInterval has elapsed since headers arrived.
func (o *CurlOperation) CheckStallAndSlow(now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.receivedHeader {
		return false
	}
	interval := o.stallIntervalOrDefault()
	since := now.Sub(o.lastXferTime)
	if since >= interval {
		if o.paused {
			o.err = ErrTransferClientStall
		} else {
			o.err = ErrTransferStall
		}
		o.state = Failed
		return true
	}
	if o.SlowRateFloor > 0 && now.Sub(o.headerReceived) >= interval {
		if o.lastRate > 0 && o.lastRate < float64(o.SlowRateFloor) {
			o.err = ErrTransferSlow
			o.state = Failed
			return true
		}
	}
	return false
}

// StatisticsReset returns the bytes and pause time accumulated since the
// previous reset and clears those two accumulators. The pre-header and
// post-header durations are not cleared: they are always measured from the
// operation's start and from the latest header arrival.
func (o *CurlOperation) StatisticsReset() (bytesSinceReset int64, preHeader, postHeader, pause time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	bytesSinceReset = o.lastXferBytes - o.bytesAtReset
	o.bytesAtReset = o.lastXferBytes

	if o.receivedHeader {
		preHeader = o.headerReceived.Sub(o.preHeaderStart)
		postHeader = time.Since(o.headerReceived)
	} else {
		preHeader = time.Since(o.preHeaderStart)
	}
	pause = o.pauseAccum - o.pauseAtReset
	o.pauseAtReset = o.pauseAccum
	return
}

// Err reports the structured failure reason, or ErrNone if still in
// progress or completed successfully.
func (o *CurlOperation) Err() OpError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// State reports the current lifecycle state.
func (o *CurlOperation) State() Lifecycle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetState transitions the operation; CurlWorker drives this directly
// since it alone owns the thread this operation executes on.
func (o *CurlOperation) SetState(s Lifecycle) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}
