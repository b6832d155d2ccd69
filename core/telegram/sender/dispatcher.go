// Package sender delivers outbound Telegram calls off the update goroutine.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"hash/fnv"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/applybot/core/logger"
	"github.com/m3rciful/applybot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the job's shard has no free slot.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the total capacity, split evenly between workers.
	QueueSize int
	Workers   int
	// MaxRetries is the number of extra attempts for retryable failures; 0 sends once.
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

// Job is one unit of outbound work. Jobs sharing a Key run one at a time in
// enqueue order; the chat id is the natural key, so a user never sees the
// menu photo before the message that precedes it.
type Job struct {
	Key      string
	Action   string
	Endpoint string
	// Run must be safe to call again after a failure when retries are enabled.
	Run func() error
}

type queued struct {
	ctx context.Context
	Job
}

// Dispatcher runs jobs on a fixed set of workers, each owning a queue.
type Dispatcher struct {
	opts   Options
	shards []chan queued
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	errs atomic.Uint64
}

// NewDispatcher starts the workers; zero options get defaults.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	opts.MaxRetries = max(opts.MaxRetries, 0)
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	d := &Dispatcher{opts: opts, shards: make([]chan queued, opts.Workers)}
	perShard := max(opts.QueueSize/opts.Workers, 1)
	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan queued, perShard)
		go d.worker(d.shards[i])
	}
	return d
}

// Enqueue schedules j without blocking.
func (d *Dispatcher) Enqueue(ctx context.Context, j Job) error {
	if j.Run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.shardFor(j.Key) <- queued{ctx: ctx, Job: j}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shardFor(key string) chan queued {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return d.shards[h.Sum32()%uint32(len(d.shards))]
}

// Pending returns the number of queued jobs not yet picked up by a worker.
func (d *Dispatcher) Pending() int {
	n := 0
	for _, s := range d.shards {
		n += len(s)
	}
	return n
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close rejects new jobs and waits until the queued ones are done.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, s := range d.shards {
			close(s)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(jobs <-chan queued) {
	defer d.wg.Done()
	for q := range jobs {
		if err := d.run(q); err != nil {
			d.errs.Add(1)
		}
	}
}

// run executes q, retrying retryable errors with linear backoff. A flood
// error's retry_after stretches the wait when it is longer.
func (d *Dispatcher) run(q queued) error {
	ctx, cancel := context.WithTimeout(q.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		err := q.Run()
		if err == nil {
			attrs := jobAttrs(q.Job, slog.Duration("elapsed", time.Since(start)))
			if attempt > 1 {
				logger.Info(q.ctx, "tg.sender", "send.retry.success", append(attrs, slog.Int("attempts", attempt))...)
			} else {
				logger.Debug(q.ctx, "tg.sender", "send.success", attrs...)
			}
			return nil
		}
		if attempt == attempts || !netutil.ShouldRetry(err) {
			logFailure(q, err, attempt, start)
			return err
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		if wait, ok := netutil.RetryAfter(err); ok && wait > delay {
			delay = wait
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			err = errors.Join(err, ctx.Err())
			logFailure(q, err, attempt, start)
			return err
		case <-timer.C:
		}
		logger.Debug(q.ctx, "tg.sender", "send.retry.backoff",
			jobAttrs(q.Job, slog.Int("attempt", attempt), slog.Duration("delay", delay))...,
		)
	}
}

func jobAttrs(j Job, extra ...slog.Attr) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.Action)}
	if j.Endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.Endpoint))
	}
	return append(attrs, extra...)
}

func logFailure(q queued, err error, attempts int, start time.Time) {
	logger.Error(q.ctx, "tg.sender", "send.fail", jobAttrs(q.Job,
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("error_kind", classifyError(err)),
		slog.Int("attempts", attempts),
		slog.Duration("elapsed", time.Since(start)),
	)...)
}

// classifyError buckets err for the send.fail line. "forbidden" usually means
// the recipient blocked the bot before an admin decision reached them.
func classifyError(err error) string {
	var (
		apiErr   *tele.Error
		dnsErr   *net.DNSError
		opErr    *net.OpError
		netErr   net.Error
		alertErr tls.AlertError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return "dial"
	case errors.As(err, &alertErr):
		return "tls"
	case isFlood(err):
		return "rate_limited"
	case errors.As(err, &apiErr):
		switch {
		case apiErr.Code == http.StatusForbidden:
			return "forbidden"
		case apiErr.Code >= 500:
			return "http_5xx"
		case apiErr.Code >= 400:
			return "http_4xx"
		}
	}
	return "unknown"
}

func isFlood(err error) bool {
	_, ok := netutil.RetryAfter(err)
	return ok
}

// sanitizeErrorMessage keeps the bot token out of logs.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
