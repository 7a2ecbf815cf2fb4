package redisx

import "fmt"

const ns = "padelgo:v1"

func KeyCourt(courtID int64) string {
	return fmt.Sprintf("%s:court:%d", ns, courtID)
}

func KeyAvailability(courtID int64, date string) string {
	return fmt.Sprintf("%s:court:%d:availability:%s", ns, courtID, date)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdemBooking(userID int64, idemKey string) string {
	return fmt.Sprintf("%s:idem:bookings:%d:%s", ns, userID, idemKey)
}

func KeySweepLock() string {
	return ns + ":lock:sweeper"
}

func ChannelBookingsChanged() string {
	return ns + ":bookings:changed"
}

func ChannelNotifications() string {
	return ns + ":notifications"
}
