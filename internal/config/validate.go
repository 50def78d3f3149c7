package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/qareview/internal/domain"
)

// Notification drivers.
const (
	NotifyDriverNone  = "none"
	NotifyDriverLog   = "log"
	NotifyDriverRedis = "redis"
	NotifyDriverMQTT  = "mqtt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.Required && !c.Auth.Enabled() {
		return fmt.Errorf("auth.required needs auth.jwt_secret")
	}

	if err := c.QA.validate(); err != nil {
		return fmt.Errorf("qa: %w", err)
	}

	if err := c.Notify.validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/' (got %q)", c.Metrics.Path)
	}

	return nil
}

func (q *QAConfig) validate() error {
	policy := domain.ActivePolicy(strings.TrimSpace(q.ActivePolicyRaw))
	if !policy.IsValid() {
		return fmt.Errorf("active_policy must be %q or %q (got %q)",
			domain.ActivePolicyLatestEvent, domain.ActivePolicyLatestAccepted, q.ActivePolicyRaw)
	}
	q.ActivePolicy = policy

	if q.DedupWindow < 0 {
		return fmt.Errorf("dedup_window must be >= 0 (got %v)", q.DedupWindow)
	}
	if q.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be >= 1 (got %d)", q.MaxRetries)
	}
	if q.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be >= 0 (got %v)", q.CacheTTL)
	}
	if q.QueueDefaultLimit <= 0 || q.QueueMaxLimit < q.QueueDefaultLimit {
		return fmt.Errorf("queue limits must satisfy 0 < default <= max (got %d, %d)", q.QueueDefaultLimit, q.QueueMaxLimit)
	}
	if q.BatchMaxSubjects <= 0 {
		return fmt.Errorf("batch_max_subjects must be > 0 (got %d)", q.BatchMaxSubjects)
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	switch n.Driver {
	case NotifyDriverNone, NotifyDriverLog:
	case NotifyDriverRedis:
		if n.Redis.Addr == "" || n.Redis.Stream == "" {
			return fmt.Errorf("redis driver needs addr and stream")
		}
	case NotifyDriverMQTT:
		if n.MQTT.Broker == "" || n.MQTT.Topic == "" {
			return fmt.Errorf("mqtt driver needs broker and topic")
		}
		if n.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt qos must be 0, 1 or 2 (got %d)", n.MQTT.QoS)
		}
	default:
		return fmt.Errorf("unknown driver %q", n.Driver)
	}

	if n.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be > 0 (got %d)", n.BufferSize)
	}
	return nil
}
