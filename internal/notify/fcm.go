package notify

import (
	"context"
	"fmt"

	"firebase.google.com/go/messaging"

	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
)

// TokenSource lists the device tokens registered by a user.
type TokenSource interface {
	DeviceTokens(ctx context.Context, userID int64) ([]string, error)
}

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMPusher sends a mobile push for each registered device of the
// recipient. A failure on one device does not stop the others.
type FCMPusher struct {
	client messageSender
	tokens TokenSource
	logger logging.Logger
}

func NewFCMPusher(client *messaging.Client, tokens TokenSource, logger logging.Logger) *FCMPusher {
	return &FCMPusher{client: client, tokens: tokens, logger: logger}
}

func (p *FCMPusher) Push(ctx context.Context, n models.Notification) error {
	tokens, err := p.tokens.DeviceTokens(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("device tokens of user %d: %w", n.RecipientID, err)
	}
	var failed int
	for _, token := range tokens {
		if _, err := p.client.Send(ctx, buildMessage(token, n)); err != nil {
			p.logger.Errorf("fcm send to user %d failed: %v", n.RecipientID, err)
			failed++
		}
	}
	if failed > 0 && failed == len(tokens) {
		return fmt.Errorf("fcm: all %d sends failed for user %d", failed, n.RecipientID)
	}
	return nil
}

func buildMessage(token string, n models.Notification) *messaging.Message {
	data := map[string]string{
		"type":            string(n.Type),
		"notification_id": fmt.Sprintf("%d", n.ID),
	}
	for k, v := range n.Metadata {
		data[k] = v
	}
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Subject,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: n.Subject,
						Body:  n.Body,
					},
					Sound: "default",
				},
			},
		},
	}
}
