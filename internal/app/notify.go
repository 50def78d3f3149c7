package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/qareview/internal/config"
	"github.com/heartmarshall/qareview/internal/notify"
)

// newPublisher builds the status-change publisher selected by cfg.Driver.
// Broker connections are verified here so that a misconfigured driver
// fails startup instead of silently dropping notifications.
func newPublisher(ctx context.Context, cfg config.NotifyConfig, logger *slog.Logger) (notify.Publisher, error) {
	switch cfg.Driver {
	case config.NotifyDriverNone:
		return notify.NopPublisher{}, nil
	case config.NotifyDriverLog:
		return notify.NewLogPublisher(logger), nil
	case config.NotifyDriverRedis:
		return notify.NewRedisStreamPublisher(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Stream, cfg.Redis.MaxLen)
	case config.NotifyDriverMQTT:
		return notify.NewMQTTPublisher(notify.MQTTConfig{
			Broker:         cfg.MQTT.Broker,
			ClientID:       cfg.MQTT.ClientID,
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			Topic:          cfg.MQTT.Topic,
			QoS:            cfg.MQTT.QoS,
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}
