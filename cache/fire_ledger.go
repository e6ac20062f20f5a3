package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// firedTTL outlives the minute it guards, with slack for clock skew.
const firedTTL = 2 * time.Minute

// FireLedger records which alarm fired in which minute so a restarted or
// second instance does not ring the same minute again.
type FireLedger struct {
	client *redis.Client
}

func NewFireLedger(client *redis.Client) *FireLedger {
	return &FireLedger{client: client}
}

// FiredKey is the key claimed for alarmID in the minute containing t.
func FiredKey(alarmID string, t time.Time) string {
	return fmt.Sprintf(firedKeyFormat, alarmID, t.Format(firedMinuteForm))
}

// Claim reports true when this caller is the first to fire alarmID in minute.
func (l *FireLedger) Claim(ctx context.Context, alarmID string, minute time.Time) (bool, error) {
	ok, err := l.client.SetNX(ctx, FiredKey(alarmID, minute), minute.Unix(), firedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", alarmID, err)
	}
	return ok, nil
}
