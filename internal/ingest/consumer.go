package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rhurkes/rofka/internal/faultlog"
	"github.com/rhurkes/rofka/internal/store"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

const maxRetryInterval = 2 * time.Second

// Writer performs the dual write for one message.
type Writer interface {
	Write(ctx context.Context, key, value []byte) (store.WriteResult, error)
}

// FaultSink records per-message failures.
type FaultSink interface {
	Append(ctx context.Context, recs ...faultlog.AppendRecord) ([]uint64, error)
}

// Options configures a Consumer.
type Options struct {
	Source Source
	Writer Writer
	// Faults is optional.
	Faults FaultSink
	Logger logpkg.Logger
	// PollTimeout bounds each wait for a message.
	PollTimeout time.Duration
	// WriteAttempts caps tries per message, first try included.
	WriteAttempts int
	// RetryBackoff is the first wait between tries; later waits grow exponentially.
	RetryBackoff time.Duration
}

// Stats is a point-in-time copy of the consumer counters.
type Stats struct {
	Polled         uint64 `json:"polled"`
	EmptyPolls     uint64 `json:"empty_polls"`
	PollErrors     uint64 `json:"poll_errors"`
	Dropped        uint64 `json:"dropped"`
	Written        uint64 `json:"written"`
	Projected      uint64 `json:"projected"`
	DecodeFailures uint64 `json:"decode_failures"`
	WriteFailures  uint64 `json:"write_failures"`
}

// Consumer is the single-threaded ingest loop.
type Consumer struct {
	src      Source
	writer   Writer
	faults   FaultSink
	log      logpkg.Logger
	wait     time.Duration
	attempts int
	backoff  time.Duration

	polled, empty, pollErrs, dropped          atomic.Uint64
	written, projected, decodeErrs, writeErrs atomic.Uint64
}

// New builds a Consumer, filling unset options with defaults.
func New(opts Options) *Consumer {
	c := &Consumer{
		src:      opts.Source,
		writer:   opts.Writer,
		faults:   opts.Faults,
		log:      opts.Logger,
		wait:     opts.PollTimeout,
		attempts: opts.WriteAttempts,
		backoff:  opts.RetryBackoff,
	}
	if c.log == nil {
		c.log = logpkg.NewNopLogger()
	}
	c.log = c.log.WithComponent("ingest")
	if c.wait <= 0 {
		c.wait = 500 * time.Millisecond
	}
	if c.attempts <= 0 {
		c.attempts = 1
	}
	if c.backoff <= 0 {
		c.backoff = 50 * time.Millisecond
	}
	return c
}

// Stats returns the current counters.
func (c *Consumer) Stats() Stats {
	return Stats{
		Polled:         c.polled.Load(),
		EmptyPolls:     c.empty.Load(),
		PollErrors:     c.pollErrs.Load(),
		Dropped:        c.dropped.Load(),
		Written:        c.written.Load(),
		Projected:      c.projected.Load(),
		DecodeFailures: c.decodeErrs.Load(),
		WriteFailures:  c.writeErrs.Load(),
	}
}

// Run polls until ctx is cancelled or the source is closed. Per-message
// failures never stop the loop. Cancellation is observed once per
// iteration; a write already started runs to completion.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer started", logpkg.Dur("poll_timeout", c.wait), logpkg.Int("write_attempts", c.attempts))
	defer func() {
		s := c.Stats()
		c.log.Info("consumer stopped",
			logpkg.Uint64("polled", s.Polled),
			logpkg.Uint64("written", s.Written),
			logpkg.Uint64("dropped", s.Dropped),
			logpkg.Uint64("write_failures", s.WriteFailures),
		)
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		msg, ok, err := c.src.Poll(ctx, c.wait)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			c.pollErrs.Add(1)
			c.log.Warn("poll failed", logpkg.Err(err))
			continue
		}
		if !ok {
			c.empty.Add(1)
			continue
		}
		c.polled.Add(1)
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg Message) {
	if msg.Key == nil || msg.Value == nil {
		c.dropped.Add(1)
		c.log.Warn("dropping message without key or value",
			logpkg.Str("topic", msg.Topic),
			logpkg.Int("partition", int(msg.Partition)),
			logpkg.Int64("offset", msg.Offset),
			logpkg.Bool("has_key", msg.Key != nil),
			logpkg.Bool("has_value", msg.Value != nil),
		)
		return
	}

	res, tries, err := c.write(ctx, msg)
	if err != nil {
		c.writeErrs.Add(1)
		c.log.Error("write failed",
			logpkg.Str("key", string(msg.Key)),
			logpkg.Int64("offset", msg.Offset),
			logpkg.Int("attempts", tries),
			logpkg.Err(err),
		)
		c.fault(ctx, faultlog.Fault{Kind: faultlog.KindWriteFailed, Key: msg.Key, Reason: err.Error(), Attempts: tries}, msg.Value)
		return
	}
	c.written.Add(1)
	if res.Projected {
		c.projected.Add(1)
		return
	}
	c.decodeErrs.Add(1)
	c.log.Warn("stored raw value without projection",
		logpkg.Str("key", string(msg.Key)),
		logpkg.Int64("offset", msg.Offset),
		logpkg.Err(res.DecodeErr),
	)
	c.fault(ctx, faultlog.Fault{Kind: faultlog.KindProjectionDecode, Key: msg.Key, Reason: res.DecodeErr.Error()}, msg.Value)
}

// write retries the dual write with exponential backoff. The write itself
// ignores cancellation so a started write completes; waits between tries do not.
func (c *Consumer) write(ctx context.Context, msg Message) (store.WriteResult, int, error) {
	wctx := context.WithoutCancel(ctx)
	tries := 0

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.backoff
	bo.MaxInterval = maxRetryInterval

	res, err := backoff.Retry(ctx, func() (store.WriteResult, error) {
		tries++
		res, err := c.writer.Write(wctx, msg.Key, msg.Value)
		if errors.Is(err, store.ErrNilKey) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Debug("retrying write", logpkg.Str("key", string(msg.Key)), logpkg.Dur("backoff", next), logpkg.Err(err))
		}),
	)
	return res, tries, err
}

func (c *Consumer) fault(ctx context.Context, f faultlog.Fault, payload []byte) {
	if c.faults == nil {
		return
	}
	if _, err := c.faults.Append(context.WithoutCancel(ctx), faultlog.AppendRecord{Fault: f, Payload: payload}); err != nil {
		c.log.Error("fault log append failed", logpkg.Err(err))
	}
}
