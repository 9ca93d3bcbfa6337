// Package osstats implements OssStats: a latency-and-count instrumentation
// plugin built on oss.Wrapper. Every call is timed with an RAII-style
// deferred stopwatch; once a second the accumulated counters are emitted
// as a JSON record through a mon gStream sink and mirrored into a
// Prometheus registry. If no sink is configured at construction time, New
// returns the inner FS unchanged -- the plugin never adds overhead a
// caller didn't ask for.
package osstats

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/xrootd-go/xrdcore/internal/cos"
	"github.com/xrootd-go/xrdcore/internal/nlog"
	"github.com/xrootd-go/xrdcore/mon"
	"github.com/xrootd-go/xrdcore/oss"
)

// opStat holds one operation's counters: total calls/nanoseconds and the
// slow subset past the configured threshold.
type opStat struct {
	ops        cos.Int64
	nanos      cos.Int64
	slowOps    cos.Int64
	slowNanos  cos.Int64
	promHisto  prometheus.Histogram
}

func newOpStat(name string, reg *prometheus.Registry) *opStat {
	s := &opStat{}
	s.promHisto = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "oss_op_seconds",
		Help: "OSS operation latency in seconds",
		ConstLabels: prometheus.Labels{"op": name},
	})
	if reg != nil {
		reg.MustRegister(s.promHisto)
	}
	return s
}

func (s *opStat) record(start time.Time, slowThreshold time.Duration) {
	d := time.Since(start)
	s.ops.Inc()
	s.nanos.Add(d.Nanoseconds())
	s.promHisto.Observe(d.Seconds())
	if slowThreshold > 0 && d >= slowThreshold {
		s.slowOps.Inc()
		s.slowNanos.Add(d.Nanoseconds())
	}
}

// Options configures a Stats plugin.
type Options struct {
	// Sink receives one JSON record per second. A nil Sink means "no
	// gStream configured": New then returns the inner FS unmodified
	// rather than adding overhead with nowhere to send it.
	Sink mon.Sink
	// SlowThreshold is the duration past which an operation also counts
	// toward the slow-ops/slow-nanos counters. Zero disables slow tracking.
	SlowThreshold time.Duration
	// Registry receives a mirrored Prometheus histogram per operation. If
	// nil, a private registry is created so Observe calls always have
	// somewhere to go.
	Registry *prometheus.Registry
}

// Stats is the OssStats plugin: an oss.Wrapper subclass that times every
// delegated call.
type Stats struct {
	*oss.Wrapper
	opts Options
	ops  map[string]*opStat

	roll   *mon.Roll
	set    *mon.Set
	shadow statsShadow

	stopCh cos.StopCh
	grp    *errgroup.Group
}

const opNames = "open opendir mkdir rmdir stat unlink rename chmod truncate"

// New wraps under with latency/count instrumentation. If opts.Sink is nil,
// New returns under itself (as an oss.FS), with no wrapping at all.
func New(ctx context.Context, under oss.FS, opts Options) oss.FS {
	if opts.Sink == nil {
		return under
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Stats{
		Wrapper: oss.NewWrapper(under),
		opts:    opts,
		ops:     make(map[string]*opStat),
	}
	for _, name := range splitWords(opNames) {
		s.ops[name] = newOpStat(name, opts.Registry)
	}
	s.stopCh.Init()
	s.registerSchema()

	grp, gctx := errgroup.WithContext(ctx)
	s.grp = grp
	grp.Go(func() error { return s.emitLoop(gctx) })
	return s
}

func (s *Stats) registerSchema() {
	s.roll = mon.NewRoll()
	b := mon.NewBuilder()
	handles := make(map[string]*mon.Counter, 4*len(s.ops))
	for name := range s.ops {
		b.BegObject(name)
		handles[name+".ops"] = b.Counter("ops", mon.KindUint64)
		handles[name+".nanos"] = b.Counter("nanos", mon.KindUint64)
		handles[name+".slow_ops"] = b.Counter("slow_ops", mon.KindUint64)
		handles[name+".slow_nanos"] = b.Counter("slow_nanos", mon.KindUint64)
		b.EndObject(name)
	}
	set, err := s.roll.Register("oss", mon.KindPlugin, b)
	if err != nil {
		nlog.Errorf("osstats: schema registration failed: %v", err)
		return
	}
	s.set = set
	s.shadow = handles
}

// shadow mirrors each live opStat's counters into the mon schema's
// counters on every emit tick, since mon.Counter handles must be declared
// once at registration but opStat accumulates independently for the
// Prometheus side.
type statsShadow = map[string]*mon.Counter

func (s *Stats) emitLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopCh.Listen():
			return nil
		case <-ticker.C:
			s.emitOnce()
		}
	}
}

func (s *Stats) emitOnce() {
	if s.set == nil {
		return
	}
	for name, op := range s.ops {
		s.shadow[name+".ops"].Set(op.ops.Load())
		s.shadow[name+".nanos"].Set(op.nanos.Load())
		s.shadow[name+".slow_ops"].Set(op.slowOps.Load())
		s.shadow[name+".slow_nanos"].Set(op.slowNanos.Load())
	}
	jsonOut, _ := s.roll.Snapshot()
	if err := s.opts.Sink.Flush(jsonOut); err != nil {
		nlog.Warningf("osstats: gStream flush failed: %v", err)
	}
}

// Shutdown stops the emit goroutine and waits for it to exit. Idempotent.
func (s *Stats) Shutdown() error {
	s.stopCh.Close()
	return s.grp.Wait()
}

func (s *Stats) Open(path string, flags int, mode os.FileMode) (oss.File, error) {
	defer s.ops["open"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Open(path, flags, mode)
}

func (s *Stats) Opendir(path string) (oss.Dir, error) {
	defer s.ops["opendir"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Opendir(path)
}

func (s *Stats) Mkdir(path string, mode os.FileMode) error {
	defer s.ops["mkdir"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Mkdir(path, mode)
}

func (s *Stats) Rmdir(path string) error {
	defer s.ops["rmdir"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Rmdir(path)
}

func (s *Stats) Stat(path string) (oss.Stat, error) {
	defer s.ops["stat"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Stat(path)
}

func (s *Stats) Unlink(path string) error {
	defer s.ops["unlink"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Unlink(path)
}

func (s *Stats) Rename(oldpath, newpath string) error {
	defer s.ops["rename"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Rename(oldpath, newpath)
}

func (s *Stats) Chmod(path string, mode os.FileMode) error {
	defer s.ops["chmod"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Chmod(path, mode)
}

func (s *Stats) Truncate(path string, size int64) error {
	defer s.ops["truncate"].record(time.Now(), s.opts.SlowThreshold)
	return s.Wrapper.Truncate(path, size)
}

func splitWords(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
