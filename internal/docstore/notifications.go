package docstore

import (
	"context"
	"sort"
)

type NotificationInput struct {
	Recipient Recipient
	Type      string
	Message   string
	Data      *NotificationData
}

// CreateNotification appends a new unread notification.
func (s *Store) CreateNotification(ctx context.Context, in NotificationInput) (*Notification, error) {
	notification := Notification{
		ID:        newID("NOT"),
		Recipient: in.Recipient,
		Type:      in.Type,
		Message:   in.Message,
		Data:      in.Data,
		Read:      false,
		CreatedAt: isoTime(s.now()),
	}

	err := mutateDoc(ctx, s, CollectionNotifications, "create_notification", func(doc *notificationsDoc) (bool, error) {
		doc.Notifications = append(doc.Notifications, notification)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkNotificationRead flips a notification's read flag. Returns nil
// on an unknown id; nothing is written then.
func (s *Store) MarkNotificationRead(ctx context.Context, notificationID string) (*Notification, error) {
	var updated *Notification
	err := mutateDoc(ctx, s, CollectionNotifications, "mark_notification_read", func(doc *notificationsDoc) (bool, error) {
		updated = nil
		for i := range doc.Notifications {
			n := &doc.Notifications[i]
			if n.ID != notificationID {
				continue
			}
			n.Read = true
			copied := *n
			updated = &copied
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RecipientNotifications lists notifications addressed to the given
// recipient, newest first.
func (s *Store) RecipientNotifications(ctx context.Context, r Recipient) ([]Notification, error) {
	doc, _, err := readDoc[notificationsDoc](ctx, s, CollectionNotifications, "recipient_notifications")
	if err != nil {
		return nil, err
	}

	var notifications []Notification
	for _, n := range doc.Notifications {
		if n.Recipient == r {
			notifications = append(notifications, n)
		}
	}

	// ISO-8601 UTC timestamps sort lexicographically in time order.
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt > notifications[j].CreatedAt
	})
	return notifications, nil
}
