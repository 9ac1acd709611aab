package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// LogstashSink ships newline delimited log records to a Logstash TCP input
// from a background goroutine. Write never blocks on the network: records
// are dropped when the queue is full or Logstash is unreachable.
type LogstashSink struct {
	addr          string
	dialTimeout   time.Duration
	writeTimeout  time.Duration
	retryInterval time.Duration

	queue chan []byte
	done  chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
	dropped   uint64

	dial func(network, addr string, timeout time.Duration) (net.Conn, error)
}

type SinkOption func(*LogstashSink)

func WithDialTimeout(d time.Duration) SinkOption {
	return func(s *LogstashSink) { s.dialTimeout = d }
}

func WithWriteTimeout(d time.Duration) SinkOption {
	return func(s *LogstashSink) { s.writeTimeout = d }
}

// WithRetryInterval sets the pause after a failed connect. Records arriving
// during the pause are dropped.
func WithRetryInterval(d time.Duration) SinkOption {
	return func(s *LogstashSink) { s.retryInterval = d }
}

func WithQueueSize(n int) SinkOption {
	return func(s *LogstashSink) {
		if n > 0 {
			s.queue = make(chan []byte, n)
		}
	}
}

func NewLogstashSink(addr string, opts ...SinkOption) (*LogstashSink, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	s := &LogstashSink{
		addr:          addr,
		dialTimeout:   2 * time.Second,
		writeTimeout:  time.Second,
		retryInterval: 5 * time.Second,
		queue:         make(chan []byte, 1024),
		done:          make(chan struct{}),
		dial:          net.DialTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s, nil
}

func (s *LogstashSink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	record := make([]byte, len(p), len(p)+1)
	copy(record, p)
	if record[len(record)-1] != '\n' {
		record = append(record, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	select {
	case s.queue <- record:
	default:
		s.dropped++
	}
	return len(p), nil
}

// Dropped reports how many records were discarded because the queue was full.
func (s *LogstashSink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops accepting records and waits for the queue to drain.
func (s *LogstashSink) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
	<-s.done
	return nil
}

func (s *LogstashSink) run() {
	defer close(s.done)

	var (
		conn      net.Conn
		nextRetry time.Time
	)
	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	for record := range s.queue {
		if conn == nil {
			if time.Now().Before(nextRetry) {
				continue
			}
			c, err := s.dial("tcp", s.addr, s.dialTimeout)
			if err != nil {
				nextRetry = time.Now().Add(s.retryInterval)
				continue
			}
			conn = c
		}
		if s.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		}
		if _, err := conn.Write(record); err != nil {
			_ = conn.Close()
			conn = nil
			nextRetry = time.Now().Add(s.retryInterval)
		}
	}
}
