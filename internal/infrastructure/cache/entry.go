package cache

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"
)

// Options are shared by every backend.
type Options struct {
	// TTL bounds entry age. Zero or negative disables expiry.
	TTL    time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

func (o Options) normalize() Options {
	out := o
	if out.Now == nil {
		out.Now = time.Now
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}

func (o Options) expired(storedAt time.Time) bool {
	if o.TTL <= 0 {
		return false
	}
	return o.Now().Sub(storedAt) >= o.TTL
}

// entry is the stored envelope: {"timestamp": <unix seconds>, "value": <payload>}.
type entry struct {
	Timestamp float64 `json:"timestamp"`
	Value     *string `json:"value"`
}

func encodeEntry(storedAt time.Time, payload string) ([]byte, error) {
	return json.Marshal(entry{
		Timestamp: float64(storedAt.UnixNano()) / float64(time.Second),
		Value:     &payload,
	})
}

func decodeEntry(raw []byte) (time.Time, string, error) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return time.Time{}, "", err
	}
	if e.Value == nil || e.Timestamp <= 0 || math.IsInf(e.Timestamp, 0) || math.IsNaN(e.Timestamp) {
		return time.Time{}, "", errors.New("cache entry missing timestamp or value")
	}
	sec, frac := math.Modf(e.Timestamp)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))), *e.Value, nil
}
