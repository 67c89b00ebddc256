package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const registerOpTimeout = 500 * time.Millisecond

// RegisterGuard throttles account creation per client IP: a short cooldown between attempts and
// a cap on successful registrations per day. Counters live in redis; any redis error fails open.
type RegisterGuard struct {
	rc       *redis.Client
	cooldown time.Duration
	dailyMax int
	now      func() time.Time
}

// NewRegisterGuard returns a guard over rc. A zero cooldown or dailyMax disables that check.
func NewRegisterGuard(rc *redis.Client, cooldown time.Duration, dailyMax int) *RegisterGuard {
	return &RegisterGuard{rc: rc, cooldown: cooldown, dailyMax: dailyMax, now: time.Now}
}

func regKey(parts ...string) string {
	return "reg:" + strings.Join(parts, ":")
}

// CooldownTry reports whether ip may attempt a registration now, starting a new cooldown if so.
func (g *RegisterGuard) CooldownTry(ip string) bool {
	if g == nil || g.rc == nil || g.cooldown <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), registerOpTimeout)
	defer cancel()
	ok, err := g.rc.SetNX(ctx, regKey("cooldown", ip), "1", g.cooldown).Result()
	if err != nil {
		return true
	} // fail-open
	return ok
}

// DailyLimitCheck reports whether ip is still under today's registration cap.
func (g *RegisterGuard) DailyLimitCheck(ip string) bool {
	if g == nil || g.rc == nil || g.dailyMax <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), registerOpTimeout)
	defer cancel()
	n, err := g.rc.Get(ctx, g.dayKey(ip)).Int()
	if errors.Is(err, redis.Nil) {
		n = 0
	} else if err != nil {
		return true
	}
	return n < g.dailyMax
}

// DailyIncrement counts one successful registration for ip today.
func (g *RegisterGuard) DailyIncrement(ip string) {
	if g == nil || g.rc == nil || g.dailyMax <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), registerOpTimeout)
	defer cancel()
	key := g.dayKey(ip)
	if err := g.rc.Incr(ctx, key).Err(); err == nil {
		now := g.now()
		ttl := now.Truncate(24 * time.Hour).Add(24 * time.Hour).Sub(now)
		_ = g.rc.Expire(ctx, key, ttl).Err()
	}
}

func (g *RegisterGuard) dayKey(ip string) string {
	return regKey("succday", ip, g.now().Format("20060102"))
}
