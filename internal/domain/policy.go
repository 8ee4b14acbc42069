package domain

import "fmt"

// Fallback literals used when a document omits a field
const (
	DefaultTitle      = "New wisdom available"
	DefaultBody       = "Tap to explore the latest seasonal guidance."
	DefaultSeasonName = "Current Season"
)

// Ordered candidate lists, first present field wins
var (
	TitleCandidates  = []string{FieldTitle}
	BodyCandidates   = []string{FieldSummary, FieldSubtitle}
	SeasonCandidates = []string{FieldSeasonName, FieldSeason}
)

// SkipReason explains why no notification was produced
type SkipReason string

const (
	SkipNone              SkipReason = ""
	SkipMissingData       SkipReason = "missing_data"
	SkipNotPublished      SkipReason = "not_published"
	SkipNotTransitioned   SkipReason = "not_transitioned"
	SkipDuplicate         SkipReason = "duplicate"
	SkipUnboundCollection SkipReason = "unbound_collection"
	SkipUpdatesDisabled   SkipReason = "updates_disabled"
)

// Decision is the outcome of the dispatch policy
type Decision struct {
	Kind    ContentKind          `json:"kind"`
	Send    bool                 `json:"send"`
	Reason  SkipReason           `json:"reason,omitempty"`
	Request *NotificationRequest `json:"request,omitempty"`
}

func skip(kind ContentKind, reason SkipReason) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// Decide decides whether a newly written document produces a notification
// and builds the request when it does. It has no side effects.
func Decide(doc *ContentDocument, kind ContentKind) Decision {
	if !doc.HasData() {
		return skip(kind, SkipMissingData)
	}
	if !doc.IsPublished() {
		return skip(kind, SkipNotPublished)
	}

	title := doc.FirstPresent(DefaultTitle, TitleCandidates...)
	body := doc.FirstPresent(DefaultBody, BodyCandidates...)
	seasonName := doc.FirstPresent(DefaultSeasonName, SeasonCandidates...)

	return Decision{
		Kind: kind,
		Send: true,
		Request: &NotificationRequest{
			Topic: Topic,
			Title: DisplayTitle(kind, title),
			Body:  body,
			Data: map[string]string{
				DataContentID:   doc.ID,
				DataContentType: kind.Label(),
				DataTitle:       title,
				DataSeasonName:  seasonName,
				DataClickAction: ClickAction,
			},
			Android: DefaultAndroidHints(),
			APNS:    DefaultAPNSHints(),
		},
	}
}

// DecideTransition notifies only when an update moves a document into the
// published state. A document that was already published stays silent.
func DecideTransition(before, after *ContentDocument, kind ContentKind) Decision {
	if before.IsPublished() {
		if !after.HasData() {
			return skip(kind, SkipMissingData)
		}
		return skip(kind, SkipNotTransitioned)
	}
	return Decide(after, kind)
}

// DisplayTitle formats the notification title for a kind
func DisplayTitle(kind ContentKind, title string) string {
	return fmt.Sprintf("New %s: %s", kind.Label(), title)
}
