package domain

import "time"

// TopicMessage is a push notification sent to every subscriber of a topic.
type TopicMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Admin notification types and priorities.
const (
	NotificationTypeDriver = "driver"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// AdminNotification is an in-app notification in an admin's inbox. Title and
// Message are Arabic; TitleEn and MessageEn carry the English text.
type AdminNotification struct {
	ID        string            `json:"id" firestore:"-"`
	Type      string            `json:"type" firestore:"type"`
	Title     string            `json:"title" firestore:"title"`
	TitleEn   string            `json:"titleEn" firestore:"titleEn"`
	Message   string            `json:"message" firestore:"message"`
	MessageEn string            `json:"messageEn" firestore:"messageEn"`
	ActionURL string            `json:"actionUrl" firestore:"actionUrl"`
	Data      map[string]string `json:"data" firestore:"data"`
	Priority  string            `json:"priority" firestore:"priority"`
	IsRead    bool              `json:"isRead" firestore:"isRead"`
	// CreatedAt is assigned by the store on write.
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	RelatedID string    `json:"relatedId" firestore:"relatedId"`
}
