package httpcore

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"

	"github.com/xrootd-go/xrdcore/httpcore/handlerqueue"
	"github.com/xrootd-go/xrdcore/httpcore/verbscache"
	"github.com/xrootd-go/xrdcore/internal/cos"
	"github.com/xrootd-go/xrdcore/internal/nlog"
	"github.com/xrootd-go/xrdcore/mon"
)

// Config holds the engine's environment-variable tunables, already parsed
// and clamped. NewConfigFromEnv is the normal constructor; tests can build
// one directly to avoid touching the process environment.
type Config struct {
	StatisticsLocation   string
	MinHeaderTimeout     time.Duration
	DefaultHeaderTimeout time.Duration
	MaxPendingOps        int
	NumThreads           int
	StallTimeout         time.Duration
	SlowRateBytesSec     int64
	DisableX509          bool
	CertFile             string
	CertDir              string
	ClientCertFile       string
	ClientKeyFile        string
}

// Clamp bounds: thread count 1..1000, queue capacity 1..10,000,000,
// stall timeout 0..86400s, slow rate 0..1GiB/s.
const (
	minThreads      = 1
	maxThreads      = 1000
	minStall        = 0
	maxStall        = 86400 * time.Second
	maxSlowBytes    = 1 << 30
	defaultNumThreads = 8
)

// NewConfigFromEnv reads the XRD_HTTP* environment variables, applying
// the documented defaults and clamps.
func NewConfigFromEnv() Config {
	return Config{
		StatisticsLocation:   os.Getenv("XRD_HTTPSTATISTICSLOCATION"),
		MinHeaderTimeout:     cos.DurationEnv("XRD_HTTPMINIMUMHEADERTIMEOUT", MinHeaderTimeout, 0, time.Hour),
		DefaultHeaderTimeout: cos.DurationEnv("XRD_HTTPDEFAULTHEADERTIMEOUT", DefaultHeaderTimeout, 0, time.Hour),
		MaxPendingOps:        cos.IntEnv("XRD_HTTPMAXPENDINGOPS", handlerqueue.DefaultCapacity, 1, handlerqueue.HardCap),
		NumThreads:           cos.IntEnv("XRD_HTTPNUMTHREADS", defaultNumThreads, minThreads, maxThreads),
		StallTimeout:         cos.DurationEnv("XRD_HTTPSTALLTIMEOUT", DefaultStallInterval, minStall, maxStall),
		SlowRateBytesSec:     int64(cos.IntEnv("XRD_HTTPSLOWRATEBYTESSEC", 0, 0, maxSlowBytes)),
		DisableX509:          os.Getenv("XRD_HTTPDISABLEX509") != "",
		CertFile:             os.Getenv("XRD_HTTPCERTFILE"),
		CertDir:              os.Getenv("XRD_HTTPCERTDIR"),
		ClientCertFile:       os.Getenv("XRD_HTTPCLIENTCERTFILE"),
		ClientKeyFile:        os.Getenv("XRD_HTTPCLIENTKEYFILE"),
	}
}

// clientCertPath resolves the client credential through the documented
// fallback chain: explicit config, then X509_USER_PROXY, then
// /tmp/x509up_u<uid>.
func (c Config) clientCertPath() string {
	if c.ClientCertFile != "" {
		return c.ClientCertFile
	}
	if v := os.Getenv("X509_USER_PROXY"); v != "" {
		return v
	}
	return fmt.Sprintf("/tmp/x509up_u%d", os.Getuid())
}

// tlsConfig builds the client-side TLS material from the configured
// credential paths, falling back to X509_USER_PROXY / /tmp/x509up_u<uid>
// per the documented discovery chain. A missing or unloadable client
// credential is not fatal here -- it only matters if the peer actually
// requests one.
func (f *Factory) tlsConfig() *tls.Config {
	cfg := &tls.Config{}
	if f.Config.DisableX509 {
		return cfg
	}
	certPath := f.Config.clientCertPath()
	keyPath := f.Config.ClientKeyFile
	if keyPath == "" {
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		nlog.Warningf("httpcore: client credential unavailable (%s): %v", certPath, err)
		return cfg
	}
	cfg.Certificates = []tls.Certificate{cert}
	return cfg
}

// Factory is HttpFactory: process-wide lazy lifecycle owner for the HTTP
// engine. A single Factory is normally shared per process; Factory itself
// holds no package-level state so tests can construct independent
// instances.
type Factory struct {
	Config Config

	once sync.Once

	queue  *handlerqueue.Queue
	verbs  *verbscache.Cache
	roll   *mon.Roll
	gstr   mon.Sink
	client *fasthttp.Client

	workers []*Worker
	grp     *errgroup.Group
	grpCtx  context.Context
	cancel  context.CancelFunc

	shutdownOnce sync.Once
}

// NewFactory returns a Factory that will lazily initialize its worker pool
// on the first call to CreateFile or CreateFileSystem.
func NewFactory(cfg Config) *Factory {
	return &Factory{Config: cfg}
}

// CreateFile triggers (once) the factory's lazy initialization and returns
// the shared queue a caller pushes file-transfer operations into.
func (f *Factory) CreateFile() (*handlerqueue.Queue, error) {
	return f.ensureStarted()
}

// CreateFileSystem triggers (once) the factory's lazy initialization and
// returns the shared queue a caller pushes filesystem-style operations
// (stat, list, mkcol) into. It is the same queue CreateFile uses: both
// kinds of operation are driven by the same CurlWorker pool.
func (f *Factory) CreateFileSystem() (*handlerqueue.Queue, error) {
	return f.ensureStarted()
}

func (f *Factory) ensureStarted() (*handlerqueue.Queue, error) {
	var startErr error
	f.once.Do(func() {
		startErr = f.start()
	})
	if startErr != nil {
		return nil, startErr
	}
	return f.queue, nil
}

func (f *Factory) start() error {
	f.queue = handlerqueue.New(f.Config.MaxPendingOps)
	f.verbs = verbscache.New()
	f.roll = mon.NewRoll()
	f.gstr = mon.NopSink{}

	f.client = &fasthttp.Client{
		TLSConfig:       f.tlsConfig(),
		MaxConnsPerHost: f.Config.NumThreads * DefaultMaxOps,
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	grp, gctx := errgroup.WithContext(ctx)
	f.grp = grp
	f.grpCtx = gctx

	grp.Go(func() error {
		f.expireLoop(gctx)
		return nil
	})

	f.workers = make([]*Worker, f.Config.NumThreads)
	for i := range f.workers {
		w := NewWorker(f.queue, f.verbs, f.client)
		f.workers[i] = w
		grp.Go(func() error { return w.Run(gctx) })
	}

	grp.Go(func() error {
		f.statisticsLoop(gctx)
		return nil
	})

	nlog.Infof("httpcore: factory started with %d worker thread(s), queue capacity %d",
		len(f.workers), f.Config.MaxPendingOps)
	return nil
}

// expireLoop runs VerbsCache's expiry goroutine at a fixed cadence,
// independent of any one worker's own maintenance tick.
func (f *Factory) expireLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.verbs.Expire(time.Now())
		}
	}
}

// statisticsLoop writes a JSON statistics blob every ~5s, atomically via
// a temp-file-plus-rename so a concurrent reader never observes a partial
// write (os.CreateTemp + os.Rename, the Go equivalent of mkstemp+rename).
func (f *Factory) statisticsLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.writeStatisticsSnapshot(); err != nil {
				nlog.Warningf("httpcore: statistics write failed: %v", err)
			}
		}
	}
}

func (f *Factory) writeStatisticsSnapshot() error {
	jsonOut, _ := f.roll.Snapshot()
	produced, consumed, rejected := f.queue.Counters()
	blob := fmt.Sprintf(`{"event":"http_stats","produced":%d,"consumed":%d,"rejected":%d,"roll":%s}`,
		produced, consumed, rejected, nonEmptyOrNull(jsonOut))

	if err := f.gstr.Flush([]byte(blob)); err != nil {
		nlog.Warningf("httpcore: gStream flush failed: %v", err)
	}

	if f.Config.StatisticsLocation == "" {
		return nil
	}
	dir := filepath.Dir(f.Config.StatisticsLocation)
	tmp, err := os.CreateTemp(dir, ".xrdhttpstats-*")
	if err != nil {
		return cos.WrapErr(cos.KindIOError, err, "create statistics temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(blob); err != nil {
		tmp.Close()
		return cos.WrapErr(cos.KindIOError, err, "write statistics temp file")
	}
	if err := tmp.Close(); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "close statistics temp file")
	}
	if err := os.Rename(tmp.Name(), f.Config.StatisticsLocation); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "rename statistics file into place")
	}
	return nil
}

func nonEmptyOrNull(b []byte) string {
	if len(b) == 0 {
		return "{}"
	}
	return string(b)
}

// Produce enqueues op into the shared HandlerQueue. It lazily starts the
// factory if it hasn't been started yet, so the first caller triggers
// initialization rather than requiring an explicit startup call.
func (f *Factory) Produce(op Op) error {
	q, err := f.ensureStarted()
	if err != nil {
		return err
	}
	return q.Produce(op)
}

// Shutdown stops every worker, the expiry and statistics goroutines, and
// joins them. Idempotent; safe to call even if the factory was never
// started.
func (f *Factory) Shutdown() error {
	var err error
	f.shutdownOnce.Do(func() {
		if f.cancel == nil {
			return // never started
		}
		for _, w := range f.workers {
			w.Shutdown()
		}
		f.cancel()
		err = f.grp.Wait()
		f.queue.Close()
		nlog.Infof("httpcore: factory shut down")
	})
	return err
}

// Roll exposes the factory's MonRoll registry so other components (e.g. an
// embedding application's own counters) can register alongside the
// engine's own queue statistics.
func (f *Factory) Roll() *mon.Roll { return f.roll }

// SetGStream installs sink as the destination for the JSON statistics
// written every ~5s, in addition to the file-based snapshot;
// passing mon.NopSink{} disables it.
func (f *Factory) SetGStream(sink mon.Sink) { f.gstr = sink }
