package live

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bpma/roster-engine/events"
	"github.com/bpma/roster-engine/leave"
)

// QuotaView caches the computed monthly quota per (type, year, month).
// A leave write to a type/year drops every cached month in that bucket.
type QuotaView struct {
	agg *leave.Aggregator
	bus *events.Broker
	log zerolog.Logger

	mu    sync.RWMutex
	cache map[string]leave.QuotaData

	sub    events.Subscriber
	doneCh chan struct{}
}

// NewQuotaView wires the cache. Call Start to begin invalidation.
func NewQuotaView(agg *leave.Aggregator, bus *events.Broker, log zerolog.Logger) *QuotaView {
	return &QuotaView{
		agg:    agg,
		bus:    bus,
		log:    log,
		cache:  make(map[string]leave.QuotaData),
		doneCh: make(chan struct{}),
	}
}

// Start subscribes to every leaveFact topic. Leave events span all
// years, so the view subscribes unfiltered and matches by prefix.
func (v *QuotaView) Start() {
	v.sub = v.bus.Subscribe()
	go v.watch()
}

// Stop detaches from the bus.
func (v *QuotaView) Stop() {
	v.bus.Unsubscribe(v.sub)
	close(v.doneCh)
}

func (v *QuotaView) watch() {
	for {
		select {
		case ev, ok := <-v.sub:
			if !ok {
				return
			}
			if bucket, ok := strings.CutPrefix(string(ev.Topic), "leaveFact:"); ok {
				v.invalidate(bucket)
			}
		case <-v.doneCh:
			return
		}
	}
}

// invalidate drops every cached month of one "type:year" bucket.
func (v *QuotaView) invalidate(bucket string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	prefix := bucket + ":"
	for key := range v.cache {
		if strings.HasPrefix(key, prefix) {
			delete(v.cache, key)
		}
	}
	v.log.Debug().Str("bucket", bucket).Msg("quota cache invalidated")
}

func quotaKey(t leave.Type, year, month int) string {
	return fmt.Sprintf("%s:%d:%02d", t, year, month)
}

// Month returns the quota for one type and month, computing and caching
// it on miss.
func (v *QuotaView) Month(ctx context.Context, t leave.Type, year, month int) (leave.QuotaData, error) {
	key := quotaKey(t, year, month)

	v.mu.RLock()
	cached, ok := v.cache[key]
	v.mu.RUnlock()
	if ok {
		return cached, nil
	}
	return v.refetch(ctx, t, year, month, key)
}

// Refetch recomputes one quota bucket unconditionally.
func (v *QuotaView) Refetch(ctx context.Context, t leave.Type, year, month int) (leave.QuotaData, error) {
	return v.refetch(ctx, t, year, month, quotaKey(t, year, month))
}

func (v *QuotaView) refetch(ctx context.Context, t leave.Type, year, month int, key string) (leave.QuotaData, error) {
	data, err := v.agg.ComputeQuota(ctx, t, year, month)
	if err != nil {
		return leave.QuotaData{}, err
	}

	v.mu.Lock()
	v.cache[key] = data
	v.mu.Unlock()
	return data, nil
}
