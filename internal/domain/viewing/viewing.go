package viewing

import (
	"time"

	"github.com/reelrank/reelrank/internal/domain/content"
)

// Device is the playback device class.
type Device string

// Device constants.
const (
	DeviceTV      Device = "tv"
	DeviceMobile  Device = "mobile"
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
)

// IsValid checks if the device is one of the supported values.
func (d Device) IsValid() bool {
	return d == DeviceTV || d == DeviceMobile || d == DeviceDesktop || d == DeviceTablet
}

// Event is a single watch event fed to strategies by the surrounding
// application. Duplicate events are idempotent for all consumers.
type Event struct {
	UserID    string
	Key       content.Key
	Device    Device
	WatchedAt time.Time
}

// ContextKey derives the temporal context bucket for an event,
// e.g. "evening_weekend_tv".
func (e Event) ContextKey() string {
	return ContextKey(e.WatchedAt, e.Device)
}

// ContextKey buckets a moment into time-of-day x weekend/weekday x device.
func ContextKey(t time.Time, device Device) string {
	return dayPart(t.Hour()) + "_" + weekPart(t.Weekday()) + "_" + string(device)
}

func dayPart(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

func weekPart(day time.Weekday) string {
	if day == time.Saturday || day == time.Sunday {
		return "weekend"
	}
	return "weekday"
}
