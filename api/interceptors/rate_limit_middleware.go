package interceptors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	apiutil "github.com/mailio/go-mailio-identity/api/util"
	"github.com/mailio/go-mailio-identity/global"
)

const LimitRequestsPerSecond = 5

// RateLimitMiddleware limits requests per client fingerprint (ip, user agent, language, referer)
func RateLimitMiddleware(limiter Limiter, perSecond int) gin.HandlerFunc {
	if perSecond <= 0 {
		perSecond = LimitRequestsPerSecond
	}
	return func(c *gin.Context) {
		ip, ipErr := apiutil.GetIPFromContext(c)
		if ipErr != nil {
			level.Debug(global.Logger).Log("msg", "failed to get client ip", "err", ipErr)
		}
		if ip == nil {
			unkn := "unknown"
			ip = &unkn
		}
		userAgent := c.GetHeader("User-Agent")
		acceptLanguage := c.GetHeader("Accept-Language")
		referer := c.GetHeader("Referer")
		all := fmt.Sprintf("%s%s%s%s", *ip, userAgent, acceptLanguage, referer)

		hash := xxhash.Sum64String(all)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		result, err := limiter.Allow(ctx, strconv.FormatUint(hash, 10), perSecond)
		if err != nil {
			level.Error(global.Logger).Log("msg", "rate limit check failed", "err", err)
			c.AbortWithError(http.StatusInternalServerError, errors.New("failed to perform rate limit check"))
			return
		}
		if !result.Allowed {
			c.AbortWithError(http.StatusTooManyRequests, errors.New("too many requests"))
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Writer.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(result.ResetAfter.Milliseconds())))
		c.Next()
	}
}
