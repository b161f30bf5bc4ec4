package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Report names used for generation counters and snapshots.
const (
	ReportDashboard  = "dashboard"
	ReportFinance    = "finance"
	ReportBookings   = "bookings"
	ReportGuests     = "guests"
	ReportProperties = "properties"
)

// Reports lists every report kept per owner.
var Reports = []string{ReportDashboard, ReportFinance, ReportBookings, ReportGuests, ReportProperties}

const (
	generationPrefix = "reporting:gen"
	snapshotPrefix   = "reporting:last"
	bumpChannel      = "reporting.bump"
)

// commitScript stores a snapshot only while its generation is still the
// newest one issued for the report.
var commitScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current or tonumber(current) ~= tonumber(ARGV[1]) then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// Cache keeps per-owner generation counters and the last committed
// snapshot of each report in Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A zero ttl keeps snapshots
// until they are replaced.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// NextGeneration issues a new generation for the owner's report.
func (c *Cache) NextGeneration(ctx context.Context, ownerID uuid.UUID, report string) (int64, error) {
	return c.client.Incr(ctx, generationKey(ownerID, report)).Result()
}

// Generation returns the newest generation issued, or zero.
func (c *Cache) Generation(ctx context.Context, ownerID uuid.UUID, report string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(ownerID, report)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return gen, nil
}

// CommitSnapshot stores value as the last-known snapshot when generation
// is still current. It reports whether the value was stored.
func (c *Cache) CommitSnapshot(ctx context.Context, ownerID uuid.UUID, report string, generation int64, value any) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	keys := []string{generationKey(ownerID, report), snapshotKey(ownerID, report)}
	stored, err := commitScript.Run(ctx, c.client, keys, generation, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// LoadSnapshot decodes the last-known snapshot into dest. It reports
// false when there is none.
func (c *Cache) LoadSnapshot(ctx context.Context, ownerID uuid.UUID, report string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, snapshotKey(ownerID, report)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Bump advances every report generation of the owner so runs started
// before a write can no longer commit, then announces the bump.
func (c *Cache) Bump(ctx context.Context, ownerID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, report := range Reports {
			pipe.Incr(ctx, generationKey(ownerID, report))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, ownerID.String()).Err()
}

// ListenForInvalidation subscribes to bump notifications and calls onBump
// with the owner of each one until ctx is done.
func (c *Cache) ListenForInvalidation(ctx context.Context, onBump func(uuid.UUID)) error {
	if c == nil || c.client == nil || onBump == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ownerID, err := uuid.Parse(msg.Payload)
				if err != nil {
					continue
				}
				onBump(ownerID)
			}
		}
	}()
	return nil
}

func generationKey(ownerID uuid.UUID, report string) string {
	return strings.Join([]string{generationPrefix, ownerID.String(), report}, ":")
}

func snapshotKey(ownerID uuid.UUID, report string) string {
	return strings.Join([]string{snapshotPrefix, ownerID.String(), report}, ":")
}
