package utils

import (
	"encoding/json"
	"expvar"
	"sync"
	"time"

	log "github.com/golang/glog"
)

// Request is the record of an inference request.
type Request struct {
	StartTime time.Time
	Duration  time.Duration
	Words     int
	Topics    int
}

// RequestStats keeps the total count and latency of requests, and the
// most recent ones.  It implements expvar.Var.
type RequestStats struct {
	mu       sync.Mutex
	count    int64
	failures int64
	total    time.Duration
	recent   []*Request
	capacity int
}

func NewRequestStats(recent int) *RequestStats {
	return &RequestStats{capacity: recent}
}

// Start records the beginning of a request of numWords words.
func (s *RequestStats) Start(numWords int) *Request {
	return &Request{StartTime: time.Now(), Words: numWords}
}

// End records a finished request.  numTopics < 0 marks a failure.
func (s *RequestStats) End(r *Request, numTopics int) {
	r.Duration = time.Since(r.StartTime)
	r.Topics = numTopics

	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if numTopics < 0 {
		s.failures++
	}
	s.total += r.Duration
	if s.capacity > 0 {
		if len(s.recent) == s.capacity {
			s.recent = s.recent[1:]
		}
		s.recent = append(s.recent, r)
	}
}

func (s *RequestStats) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

type requestJSON struct {
	Start    time.Time `json:"start"`
	Duration string    `json:"duration"`
	Words    int       `json:"words"`
	Topics   int       `json:"topics"`
}

type statsJSON struct {
	Count      int64         `json:"count"`
	Failures   int64         `json:"failures"`
	AvgLatency string        `json:"avg_latency"`
	Recent     []requestJSON `json:"recent"`
}

// String returns the stats in JSON.
func (s *RequestStats) String() string {
	s.mu.Lock()
	j := statsJSON{
		Count:    s.count,
		Failures: s.failures,
		Recent:   make([]requestJSON, 0, len(s.recent)),
	}
	var avg time.Duration
	if s.count > 0 {
		avg = s.total / time.Duration(s.count)
	}
	j.AvgLatency = avg.String()
	for _, r := range s.recent {
		j.Recent = append(j.Recent, requestJSON{r.StartTime, r.Duration.String(), r.Words, r.Topics})
	}
	s.mu.Unlock()

	b, e := json.Marshal(j)
	if e != nil {
		log.Errorf("Cannot encode request stats: %v", e)
		return "{}"
	}
	return string(b)
}

var publishOnce sync.Once

// PublishRequestStats publishes s as the expvar "requests".  Only the
// first call in a process takes effect.
func PublishRequestStats(s *RequestStats) {
	publishOnce.Do(func() { expvar.Publish("requests", s) })
}
