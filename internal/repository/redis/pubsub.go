package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	redisx "github.com/kirinyoku/padelgo/internal/redis"
	"github.com/redis/go-redis/v9"
)

type BookingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBookingsPubSub(rdb *redis.Client) *BookingsPubSub {
	return &BookingsPubSub{
		rdb:     rdb,
		channel: redisx.ChannelBookingsChanged(),
	}
}

type bookingChangedMsg struct {
	Type    string `json:"type"`
	CourtID int64  `json:"court_id"`
	Date    string `json:"date"`
	TsUnix  int64  `json:"ts_unix"`
}

// PublishBookingChanged announces that the occupancy of a court day changed.
func (p *BookingsPubSub) PublishBookingChanged(ctx context.Context, courtID int64, date string) error {
	b, _ := json.Marshal(bookingChangedMsg{
		Type:    "booking_changed",
		CourtID: courtID,
		Date:    date,
		TsUnix:  time.Now().Unix(),
	})

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe calls handler for every booking_changed message until ctx is done.
func (p *BookingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, courtID int64, date string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev bookingChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.CourtID != 0 && ev.Date != "" {
				handler(ctx, ev.CourtID, ev.Date)
			}
		}
	}
}

// NotificationPublisher fans notifications out on a redis channel for
// connected clients.
type NotificationPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewNotificationPublisher(rdb *redis.Client) *NotificationPublisher {
	return &NotificationPublisher{
		rdb:     rdb,
		channel: redisx.ChannelNotifications(),
	}
}

func (p *NotificationPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}
