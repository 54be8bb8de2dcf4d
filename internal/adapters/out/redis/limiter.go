package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/ratelimit"
)

// slidingWindowScript admits one request against a per-key sorted set of
// request timestamps: prune entries older than the window, count, admit if
// under the quota. Returns {allowed, count, oldest-score-ms}. Running it as
// one script keeps prune+count+add atomic across API instances.
const slidingWindowScript = `local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local max_requests = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now_ms - window_ms)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < max_requests then
  allowed = 1
  redis.call("ZADD", key, now_ms, member)
  redis.call("PEXPIRE", key, window_ms)
  count = count + 1
end

local oldest_ms = now_ms
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
if oldest and oldest[2] then
  oldest_ms = tonumber(oldest[2])
end
return {allowed, count, oldest_ms}`

var slidingWindowScriptSHA = func() string {
	sum := sha1.Sum([]byte(slidingWindowScript))
	return hex.EncodeToString(sum[:])
}()

// Limiter is the distributed ratelimit.Limiter backend. Decisions are made
// by slidingWindowScript via EVALSHA; on NOSCRIPT the script is loaded once
// and the call retried once. Backend failures propagate to the caller, which
// decides between fail-closed and fail-open per route.
type Limiter struct {
	client *Client
	prefix string
	now    func() time.Time
}

// NewLimiter creates a limiter over the given client. An empty prefix
// defaults to "rl".
func NewLimiter(client *Client, prefix string) (*Limiter, error) {
	if client == nil {
		return nil, errs.NewInvalidInputError("redis client is required")
	}
	if prefix == "" {
		prefix = "rl"
	}

	return &Limiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}, nil
}

// Check implements ratelimit.Limiter.
func (l *Limiter) Check(ctx context.Context, key string, maxRequests int, window time.Duration) (ratelimit.Result, error) {
	now := l.now()
	nowMS := now.UnixMilli()
	windowMS := window.Milliseconds()
	if windowMS <= 0 {
		windowMS = 1000
	}

	args := []string{
		"EVALSHA", slidingWindowScriptSHA, "1",
		fmt.Sprintf("%s:%s", l.prefix, key),
		strconv.FormatInt(nowMS, 10),
		strconv.FormatInt(windowMS, 10),
		strconv.Itoa(maxRequests),
		uuid.NewString(),
	}

	reply, err := l.client.Do(ctx, args...)
	if err != nil {
		return ratelimit.Result{}, err
	}

	if cmdErr, ok := reply.(*CommandError); ok {
		if !cmdErr.HasPrefix("NOSCRIPT") {
			return ratelimit.Result{}, errs.NewUnavailableErrorWithCause(
				serviceName, "rate limit script failed", cmdErr)
		}
		if err := l.loadScript(ctx); err != nil {
			return ratelimit.Result{}, err
		}
		reply, err = l.client.Do(ctx, args...)
		if err != nil {
			return ratelimit.Result{}, err
		}
		if cmdErr, ok := reply.(*CommandError); ok {
			return ratelimit.Result{}, errs.NewUnavailableErrorWithCause(
				serviceName, "rate limit script failed after reload", cmdErr)
		}
	}

	allowed, count, oldestMS, err := decodeScriptReply(reply)
	if err != nil {
		return ratelimit.Result{}, err
	}

	remaining := maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	nowS := float64(nowMS) / 1000
	deadlineS := float64(oldestMS)/1000 + float64(windowMS)/1000
	return ratelimit.BuildResult(allowed, remaining, nowS, deadlineS), nil
}

func (l *Limiter) loadScript(ctx context.Context) error {
	reply, err := l.client.Do(ctx, "SCRIPT", "LOAD", slidingWindowScript)
	if err != nil {
		return err
	}
	if cmdErr, ok := reply.(*CommandError); ok {
		return errs.NewUnavailableErrorWithCause(serviceName, "SCRIPT LOAD rejected", cmdErr)
	}
	sha, ok := reply.(string)
	if !ok || sha != slidingWindowScriptSHA {
		return errs.NewProtocolError(fmt.Sprintf("SCRIPT LOAD returned unexpected sha %v", reply))
	}
	return nil
}

// decodeScriptReply unpacks {allowed, count, oldest_ms}. The oldest score
// arrives as a bulk string when it carries a fractional part.
func decodeScriptReply(reply any) (allowed bool, count int64, oldestMS int64, err error) {
	items, ok := reply.([]any)
	if !ok || len(items) != 3 {
		return false, 0, 0, errs.NewProtocolError(
			fmt.Sprintf("rate limit script returned unexpected reply %v", reply))
	}

	allowedInt, err := replyInt(items[0])
	if err != nil {
		return false, 0, 0, err
	}
	count, err = replyInt(items[1])
	if err != nil {
		return false, 0, 0, err
	}
	oldestMS, err = replyInt(items[2])
	if err != nil {
		return false, 0, 0, err
	}
	return allowedInt == 1, count, oldestMS, nil
}

func replyInt(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errs.NewProtocolErrorWithCause(
				fmt.Sprintf("non-numeric script reply element %q", v), err)
		}
		return int64(f), nil
	default:
		return 0, errs.NewProtocolError(
			fmt.Sprintf("unexpected script reply element of type %T", value))
	}
}
