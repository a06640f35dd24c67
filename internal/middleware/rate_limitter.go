package middleware

import (
	"KalaVaani/internal/entity"
	"KalaVaani/pkg/response"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

var (
	ErrTooManyRequests = response.NewError(http.StatusTooManyRequests, "too many requests")
)

type rateLimiter struct {
	bucket    map[string]*rate.Limiter
	rate      rate.Limit
	burstSize int
	mutex     *sync.RWMutex
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		bucket:    make(map[string]*rate.Limiter),
		rate:      reqRate,
		burstSize: burstSize,
		mutex:     &sync.RWMutex{},
	}
}

func (r *rateLimiter) limiterFor(key string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exist := r.bucket[key]; !exist {
		r.bucket[key] = rate.NewLimiter(r.rate, r.burstSize)
	}

	return r.bucket[key]
}

// NewRateLimiter throttles per artisan when the request is authenticated
// and per client IP otherwise. Most artisans reach the API over mobile
// data behind carrier NAT, so the IP alone is a poor key.
func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	key := ctx.IP()
	if user, ok := ctx.Locals("user").(entity.UserLoginData); ok && user.ID != "" {
		key = user.ID
	}

	if !m.rateLimitter.limiterFor(key).Allow() {
		m.log.Warnf("Rate limit exceeded for %s", key)
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": ErrTooManyRequests.Error(),
		})
	}

	return ctx.Next()
}
