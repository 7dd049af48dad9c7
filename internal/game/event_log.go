package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize     = 1024                   // Circular buffer size
	MaxEventsPerSec     = 10000                  // Global rate limit
	MaxEventsPerActor   = 100                    // Per-actor rate limit per second
	BatchFlushSize      = 64                     // Events per batch write
	BatchFlushInterval  = 100 * time.Millisecond // How often to flush
	ActorLimiterCleanup = 5 * time.Minute        // Cleanup interval for actor limiters
)

// EventLog provides bounded, rate-limited event logging with backpressure
type EventLog struct {
	// Circular buffer (single producer: the tick goroutine)
	buffer    [EventBufferSize]Event
	writeHead uint64 // atomic - producer position
	readHead  uint64 // atomic - consumer position

	// Rate limiting keeps one chatty fighter from flooding the log
	globalLimiter *rate.Limiter
	actorLimit    rate.Limit
	actorBurst    int
	actorLimiters sync.Map // map[string]*actorLimiterEntry

	// Async writer
	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// File output; fileMu also serializes consumers
	filePath string
	file     *os.File
	fileMu   sync.Mutex

	// Stats
	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
	writtenCount uint64 // atomic
}

// actorLimiterEntry tracks per-actor rate limiting
type actorLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // unix nano
}

// EventLogOption configures an EventLog
type EventLogOption func(*EventLog)

// WithoutRateLimit disables both limiters. Scripted runs step faster than
// wall time and would otherwise lose events.
func WithoutRateLimit() EventLogOption {
	return func(el *EventLog) {
		el.globalLimiter = rate.NewLimiter(rate.Inf, 0)
		el.actorLimit = rate.Inf
		el.actorBurst = 0
	}
}

// NewEventLog creates a new bounded event log
func NewEventLog(opts ...EventLogOption) *EventLog {
	el := &EventLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		actorLimit:    MaxEventsPerActor,
		actorBurst:    MaxEventsPerActor / 10,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(el)
	}
	return el
}

// Start begins the async writer goroutine. An empty path keeps events in
// memory only.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}

	el.filePath = filePath

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = file
	}

	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()

	return nil
}

// Stop flushes pending events and closes the file
func (el *EventLog) Stop() {
	if !el.running.Load() {
		return
	}
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
			el.file = nil
		}
		el.fileMu.Unlock()
	})
}

// Emit adds an event with rate limiting.
// Returns false if rate limited or the log is not running.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}

	if !el.globalLimiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}

	if event.ActorID != "" && el.actorLimit != rate.Inf {
		if !el.getActorLimiter(event.ActorID).Allow() {
			atomic.AddUint64(&el.droppedCount, 1)
			return false
		}
	}

	head := atomic.AddUint64(&el.writeHead, 1)
	tail := atomic.LoadUint64(&el.readHead)

	// Buffer full: drop the oldest event
	if head-tail > EventBufferSize {
		atomic.AddUint64(&el.readHead, 1)
		atomic.AddUint64(&el.droppedCount, 1)
	}

	event.Sequence = head
	el.buffer[head%EventBufferSize] = event

	atomic.AddUint64(&el.totalCount, 1)
	return true
}

// EmitSimple is a convenience method to emit an event with automatic creation
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, actorID string, payload interface{}) bool {
	if !el.running.Load() {
		return false
	}
	return el.Emit(NewEvent(eventType, tickNum, actorID, payload))
}

// getActorLimiter returns/creates a per-actor rate limiter
func (el *EventLog) getActorLimiter(actorID string) *rate.Limiter {
	now := time.Now().UnixNano()
	if entry, ok := el.actorLimiters.Load(actorID); ok {
		e := entry.(*actorLimiterEntry)
		e.lastUsed.Store(now)
		return e.limiter
	}

	entry := &actorLimiterEntry{limiter: rate.NewLimiter(el.actorLimit, el.actorBurst)}
	entry.lastUsed.Store(now)
	actual, _ := el.actorLimiters.LoadOrStore(actorID, entry)
	return actual.(*actorLimiterEntry).limiter
}

// writerLoop batches and writes events to disk asynchronously
func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			el.Flush()
			return
		case <-ticker.C:
			el.Flush()
		}
	}
}

// cleanupLoop removes stale actor limiters
func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(ActorLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			el.cleanupActorLimiters(time.Now().Add(-ActorLimiterCleanup))
		}
	}
}

// cleanupActorLimiters removes limiters unused since cutoff
func (el *EventLog) cleanupActorLimiters(cutoff time.Time) {
	el.actorLimiters.Range(func(key, value interface{}) bool {
		entry := value.(*actorLimiterEntry)
		if entry.lastUsed.Load() < cutoff.UnixNano() {
			el.actorLimiters.Delete(key)
		}
		return true
	})
}

// Flush drains every pending event to the file in batches.
func (el *EventLog) Flush() {
	el.fileMu.Lock()
	defer el.fileMu.Unlock()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		batch = el.collectBatch(batch[:0])
		if len(batch) == 0 {
			return
		}
		el.writeBatch(batch)
	}
}

// collectBatch reads available events from circular buffer
func (el *EventLog) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	for i := tail + 1; i <= head && len(batch) < BatchFlushSize; i++ {
		batch = append(batch, el.buffer[i%EventBufferSize])
	}

	if len(batch) > 0 {
		atomic.AddUint64(&el.readHead, uint64(len(batch)))
	}

	return batch
}

// writeBatch appends newline-delimited JSON. Caller holds fileMu.
func (el *EventLog) writeBatch(batch []Event) {
	if el.file == nil {
		return
	}

	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		data = append(data, '\n')
		if _, err := el.file.Write(data); err != nil {
			atomic.AddUint64(&el.droppedCount, 1)
			continue
		}
		atomic.AddUint64(&el.writtenCount, 1)
	}
}

// EventLogStats is a point-in-time view of the log counters
type EventLogStats struct {
	Total   uint64 `json:"total"`
	Dropped uint64 `json:"dropped"`
	Written uint64 `json:"written"`
	Pending uint64 `json:"pending"`
	Running bool   `json:"running"`
}

// Stats returns the log counters
func (el *EventLog) Stats() EventLogStats {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	return EventLogStats{
		Total:   atomic.LoadUint64(&el.totalCount),
		Dropped: atomic.LoadUint64(&el.droppedCount),
		Written: atomic.LoadUint64(&el.writtenCount),
		Pending: head - tail,
		Running: el.running.Load(),
	}
}
