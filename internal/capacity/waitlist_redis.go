package capacity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "opptak/pkg/domain"
)

// statutoryBoost pushes statutory-right entries ahead of every non-statutory
// one regardless of submission date. Scores are submission unix seconds, so
// any boost larger than the representable date range works.
const statutoryBoost = 1 << 40

// RedisWaitlist keeps each queue in a sorted set. The score encodes
// (statutory right, submission time); redis orders equal scores by member
// lexicographically, which is exactly the application-id tie-break.
type RedisWaitlist struct {
	client *redis.Client
}

func NewRedisWaitlist(client *redis.Client) *RedisWaitlist {
	return &RedisWaitlist{client: client}
}

func waitlistKey(kg id.KindergartenID, band id.AgeBand) string {
	return fmt.Sprintf("opptak:waitlist:%s:%s", kg, band)
}

func score(entry WaitlistEntry) float64 {
	s := float64(entry.SubmittedAt.Unix())
	if entry.StatutoryRight {
		s -= statutoryBoost
	}
	return s
}

// decodeScore inverts score. The statutory threshold sits halfway down the
// boost rather than at zero: unix seconds are negative for pre-epoch dates,
// and a migrated birth-register entry can legitimately carry one.
func decodeScore(s float64) (statutory bool, submitted time.Time) {
	statutory = s < -statutoryBoost/2
	if statutory {
		s += statutoryBoost
	}
	return statutory, time.Unix(int64(s), 0).UTC()
}

func (w *RedisWaitlist) Push(ctx context.Context, kg id.KindergartenID, band id.AgeBand, entry WaitlistEntry) (int, error) {
	key := waitlistKey(kg, band)
	member := entry.ApplicationID.String()

	if err := w.client.ZAdd(ctx, key, redis.Z{Score: score(entry), Member: member}).Err(); err != nil {
		return 0, fmt.Errorf("waitlist push: %w", err)
	}
	rank, err := w.client.ZRank(ctx, key, member).Result()
	if err != nil {
		return 0, fmt.Errorf("waitlist rank: %w", err)
	}
	return int(rank) + 1, nil
}

func (w *RedisWaitlist) Queue(ctx context.Context, kg id.KindergartenID, band id.AgeBand) ([]WaitlistEntry, error) {
	members, err := w.client.ZRangeWithScores(ctx, waitlistKey(kg, band), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("waitlist range: %w", err)
	}
	entries := make([]WaitlistEntry, 0, len(members))
	for _, m := range members {
		appID, err := id.ParseApplicationID(fmt.Sprint(m.Member))
		if err != nil {
			continue // skip foreign members rather than failing the read
		}
		statutory, submitted := decodeScore(m.Score)
		entries = append(entries, WaitlistEntry{
			ApplicationID:  appID,
			StatutoryRight: statutory,
			SubmittedAt:    submitted,
		})
	}
	return entries, nil
}

func (w *RedisWaitlist) Len(ctx context.Context, kg id.KindergartenID, band id.AgeBand) (int, error) {
	n, err := w.client.ZCard(ctx, waitlistKey(kg, band)).Result()
	if err != nil {
		return 0, fmt.Errorf("waitlist len: %w", err)
	}
	return int(n), nil
}

func (w *RedisWaitlist) Remove(ctx context.Context, kg id.KindergartenID, band id.AgeBand, appID id.ApplicationID) error {
	if err := w.client.ZRem(ctx, waitlistKey(kg, band), appID.String()).Err(); err != nil {
		return fmt.Errorf("waitlist remove: %w", err)
	}
	return nil
}
