package domain

import "time"

// Channel is a notification delivery medium.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
)

// NotificationTypeLunchCount tags the daily headcount message.
const NotificationTypeLunchCount = "lunch_count"

// Message is a channel-independent notification.
type Message struct {
	Title string
	Body  string
	// Data travels as the structured payload of push messages.
	Data map[string]string
}

// Delivery is one message addressed to one recipient over one channel.
type Delivery struct {
	RecipientID string
	Channel     Channel
	// Address is the FCM registration token or the email address.
	Address string
	Message Message
}

// DeliveryResult is the outcome of a single Delivery.
type DeliveryResult struct {
	Delivery Delivery
	Err      error
}

// NotifySummary reports one headcount notifier run.
type NotifySummary struct {
	RunID       string
	Date        time.Time
	Skipped     bool
	SkipReason  string
	OfficeCount int64
	Recipients  int
	Sent        int
	Failed      int
}
