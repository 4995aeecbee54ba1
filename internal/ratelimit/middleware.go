package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/IAmRubenNavarro/doula-life/internal/config"
	obsmetrics "github.com/IAmRubenNavarro/doula-life/internal/observability/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	keyWebhook = "ratelimit:webhook:%s:%s"
	keyLogin   = "ratelimit:login:%s"

	endpointWebhook = "webhook"
	endpointLogin   = "login"
)

// Limiter throttles the two unauthenticated surfaces: webhook ingest and
// login. Buckets are keyed by client IP; limits come from the hot-reloaded
// payments config. Without a redis address the limiter passes everything
// through.
type Limiter struct {
	enabled bool
	bucket  *TokenBucket
	holder  *config.PaymentsConfigHolder
	metrics *obsmetrics.Metrics
	log     *zap.Logger
}

func NewLimiter(bucket *TokenBucket, holder *config.PaymentsConfigHolder, metrics *obsmetrics.Metrics, log *zap.Logger) *Limiter {
	return &Limiter{
		enabled: bucket != nil,
		bucket:  bucket,
		holder:  holder,
		metrics: metrics,
		log:     log.Named("ratelimit"),
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.enabled
}

// Webhook limits deliveries per provider per source IP.
func (l *Limiter) Webhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Enabled() {
			c.Next()
			return
		}

		tuning := l.holder.Get().RateLimit
		provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
		key := fmt.Sprintf(keyWebhook, provider, c.ClientIP())
		l.allow(c, endpointWebhook, key, tuning.WebhookRefillPerSec, tuning.WebhookCapacity)
	}
}

// Login limits credential attempts per source IP.
func (l *Limiter) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Enabled() {
			c.Next()
			return
		}

		tuning := l.holder.Get().RateLimit
		key := fmt.Sprintf(keyLogin, c.ClientIP())
		l.allow(c, endpointLogin, key, tuning.LoginRefillPerSec, tuning.LoginCapacity)
	}
}

func (l *Limiter) allow(c *gin.Context, endpoint, key string, rate float64, burst int) {
	res, err := l.bucket.Allow(c.Request.Context(), key, rate, burst)
	if err != nil {
		// Redis trouble must not take payments down with it.
		l.log.Warn("rate limiter unavailable, allowing request",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		c.Next()
		return
	}

	if !res.Allowed {
		if l.metrics != nil {
			l.metrics.RecordRateLimitDenied(c.Request.Context(), endpoint, "bucket_exhausted")
		}
		retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": gin.H{
				"type":    "rate_limited",
				"message": "too many requests",
			},
		})
		return
	}

	if l.metrics != nil {
		l.metrics.RecordRateLimitAllowed(c.Request.Context(), endpoint)
	}
	c.Next()
}
