package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/academic-system/records-api/utils/cache"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

const (
	loginAttemptWindow = 15 * time.Minute

	lockoutShortAfter = 5
	lockoutLongAfter  = 10
	lockoutDayAfter   = 25

	lockoutShort = 2 * time.Minute
	lockoutLong  = 1 * time.Hour
	lockoutDay   = 24 * time.Hour
)

// LoginProtection throttles repeated failed logins per client IP using
// Redis. Lockouts are progressive: short after a handful of failures,
// escalating to a day-long lock for sustained abuse.
type LoginProtection struct {
	redisCache *cache.RedisCache
}

// NewLoginProtection creates a new login protection instance
func NewLoginProtection(redisCache *cache.RedisCache) *LoginProtection {
	return &LoginProtection{redisCache: redisCache}
}

func attemptKey(ip string) string { return fmt.Sprintf("login:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("login:lock:%s", ip) }

// Guard rejects requests from IPs that are currently locked out.
// Mounted in front of the login endpoint.
func (p *LoginProtection) Guard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		locked, err := p.redisCache.Exists(c.Context(), lockKey(ip))
		if err != nil {
			// Redis being unavailable must not lock everyone out.
			return c.Next()
		}

		if locked {
			ttl, _ := p.redisCache.TTL(c.Context(), lockKey(ip))
			retryAfter := int(ttl.Seconds())
			if retryAfter < 0 {
				retryAfter = 60
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed login attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// RecordFailure counts a failed login and applies the progressive
// lockout tiers once the thresholds are crossed.
func (p *LoginProtection) RecordFailure(c *fiber.Ctx, ip string) error {
	ctx := c.Context()

	attempts, err := p.redisCache.Increment(ctx, attemptKey(ip))
	if err != nil {
		return nil
	}
	if attempts == 1 {
		p.redisCache.Expire(ctx, attemptKey(ip), loginAttemptWindow)
	}

	var lockDuration time.Duration
	switch {
	case attempts >= lockoutDayAfter:
		lockDuration = lockoutDay
	case attempts >= lockoutLongAfter:
		lockDuration = lockoutLong
	case attempts >= lockoutShortAfter:
		lockDuration = lockoutShort
	default:
		return nil
	}

	return p.redisCache.Set(ctx, lockKey(ip), "locked", lockDuration)
}

// RecordSuccess clears the failure counter and any active lock after a
// successful login.
func (p *LoginProtection) RecordSuccess(c *fiber.Ctx, ip string) error {
	ctx := c.Context()
	p.redisCache.Delete(ctx, attemptKey(ip), lockKey(ip))
	return nil
}

// FailureCount returns the current failed-attempt count for an IP.
func (p *LoginProtection) FailureCount(c *fiber.Ctx, ip string) (int, error) {
	val, err := p.redisCache.Get(c.Context(), attemptKey(ip))
	if err != nil {
		if err == cache.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, nil
	}
	return count, nil
}
