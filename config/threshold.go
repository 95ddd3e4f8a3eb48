package config

import (
	"sync/atomic"
	"time"

	"github.com/jonwraymond/storagecache/retention"
)

// Threshold is a process-wide retention threshold that can be changed
// while queries are running. Every retention decision reads the current
// value.
type Threshold struct {
	v atomic.Int64
}

// NewThreshold returns a Threshold holding d.
func NewThreshold(d time.Duration) *Threshold {
	t := &Threshold{}
	t.Store(d)
	return t
}

// Store replaces the threshold. The next retention decision observes it.
func (t *Threshold) Store(d time.Duration) { t.v.Store(int64(d)) }

// RetentionThreshold implements retention.ThresholdSource.
func (t *Threshold) RetentionThreshold() time.Duration { return time.Duration(t.v.Load()) }

// Reload loads the file at path and stores its retention threshold. On
// error the current threshold is kept.
func (t *Threshold) Reload(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	t.Store(cfg.Retention.Threshold.Std())
	return nil
}

var _ retention.ThresholdSource = (*Threshold)(nil)
