package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	logpkg "github.com/rhurkes/rofka/pkg/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaOptions configures a KafkaSource.
type KafkaOptions struct {
	Brokers []string
	Topic   string
	GroupID string
	Logger  logpkg.Logger
}

// KafkaSource consumes one topic as a member of a consumer group. Offsets are
// never committed and an unknown group position starts at the earliest offset.
type KafkaSource struct {
	client *kgo.Client
	buf    []*kgo.Record
}

// NewKafkaSource creates the client. Brokers are contacted lazily on the
// first poll.
func NewKafkaSource(opts KafkaOptions) (*KafkaSource, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("ingest: no brokers")
	}
	if opts.Topic == "" {
		return nil, errors.New("ingest: no topic")
	}
	kopts := []kgo.Opt{
		kgo.SeedBrokers(opts.Brokers...),
		kgo.ConsumerGroup(opts.GroupID),
		kgo.ConsumeTopics(opts.Topic),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	if opts.Logger != nil {
		kopts = append(kopts, kgo.WithLogger(kgoLogger{l: opts.Logger.WithComponent("kafka")}))
	}
	cl, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("ingest: kafka client: %w", err)
	}
	return &KafkaSource{client: cl}, nil
}

// Poll hands out buffered records first and fetches when the buffer is empty.
// Records fetched alongside an error stay buffered for the next poll.
func (s *KafkaSource) Poll(ctx context.Context, wait time.Duration) (Message, bool, error) {
	if len(s.buf) == 0 {
		pctx, cancel := context.WithTimeout(ctx, wait)
		fetches := s.client.PollFetches(pctx)
		cancel()
		if fetches.IsClientClosed() {
			return Message{}, false, ErrClosed
		}
		var errs []error
		fetches.EachError(func(topic string, partition int32, err error) {
			// an elapsed wait or a cancelled ctx is an empty poll
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return
			}
			errs = append(errs, fmt.Errorf("fetch %s[%d]: %w", topic, partition, err))
		})
		s.buf = fetches.Records()
		if len(errs) > 0 {
			return Message{}, false, errors.Join(errs...)
		}
	}
	if len(s.buf) == 0 {
		return Message{}, false, nil
	}
	r := s.buf[0]
	s.buf[0] = nil
	s.buf = s.buf[1:]
	return Message{
		Key:       r.Key,
		Value:     r.Value,
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
	}, true, nil
}

// Close leaves the group and closes the client.
func (s *KafkaSource) Close() {
	s.client.Close()
}

// kgoLogger routes franz-go's leveled logging into our logger.
type kgoLogger struct {
	l logpkg.Logger
}

func (k kgoLogger) Level() kgo.LogLevel {
	switch k.l.GetLevel() {
	case logpkg.DebugLevel:
		return kgo.LogLevelDebug
	case logpkg.InfoLevel:
		return kgo.LogLevelInfo
	case logpkg.WarnLevel:
		return kgo.LogLevelWarn
	default:
		return kgo.LogLevelError
	}
}

func (k kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	fields := make([]logpkg.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fields = append(fields, logpkg.F(fmt.Sprint(keyvals[i]), keyvals[i+1]))
	}
	switch level {
	case kgo.LogLevelError:
		k.l.Error(msg, fields...)
	case kgo.LogLevelWarn:
		k.l.Warn(msg, fields...)
	case kgo.LogLevelInfo:
		k.l.Info(msg, fields...)
	default:
		k.l.Debug(msg, fields...)
	}
}
