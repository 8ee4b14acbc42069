package domain

// Topic every content notification is sent to
const Topic = "new-content"

// ClickAction is the routing key read by the mobile client on tap
const ClickAction = "FLUTTER_NOTIFICATION_CLICK"

// Data payload keys
const (
	DataContentID   = "contentId"
	DataContentType = "contentType"
	DataTitle       = "title"
	DataSeasonName  = "seasonName"
	DataClickAction = "clickAction"
)

// AndroidPriority mirrors the FCM android priority values
type AndroidPriority string

const (
	AndroidPriorityHigh   AndroidPriority = "high"
	AndroidPriorityNormal AndroidPriority = "normal"
)

// AndroidHints are the Android delivery options attached to every request
type AndroidHints struct {
	ChannelID             string          `json:"channel_id"`
	Priority              AndroidPriority `json:"priority"`
	DefaultSound          bool            `json:"default_sound"`
	DefaultVibrateTimings bool            `json:"default_vibrate_timings"`
}

// APNSHints are the iOS delivery options attached to every request
type APNSHints struct {
	Sound            string `json:"sound"`
	Badge            int    `json:"badge"`
	ContentAvailable bool   `json:"content_available"`
}

// DefaultAndroidHints returns the static Android hints
func DefaultAndroidHints() AndroidHints {
	return AndroidHints{
		ChannelID:             "gaiosophy_content_updates",
		Priority:              AndroidPriorityHigh,
		DefaultSound:          true,
		DefaultVibrateTimings: true,
	}
}

// DefaultAPNSHints returns the static iOS hints
func DefaultAPNSHints() APNSHints {
	return APNSHints{
		Sound:            "default",
		Badge:            1,
		ContentAvailable: true,
	}
}

// NotificationRequest is a fully formed push request handed to a Transport.
// It is built once per event and never modified afterwards.
type NotificationRequest struct {
	Topic   string            `json:"topic"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data"`
	Android AndroidHints      `json:"android"`
	APNS    APNSHints         `json:"apns"`
}

// ContentID returns the document id carried in the data payload
func (r *NotificationRequest) ContentID() string {
	return r.Data[DataContentID]
}
