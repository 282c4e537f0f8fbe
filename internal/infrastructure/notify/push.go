package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

const (
	fcmScope    = "https://www.googleapis.com/auth/firebase.messaging"
	fcmEndpoint = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
)

// FCMConfig identifies the Firebase project push messages are sent through.
// An empty CredentialsFile falls back to application default credentials.
type FCMConfig struct {
	ProjectID       string
	CredentialsFile string
}

// PushSender delivers notifications through the FCM HTTP v1 API.
type PushSender struct {
	client   *http.Client
	endpoint string
	log      zerolog.Logger
}

// NewPushSender builds an OAuth2-authenticated FCM client.
func NewPushSender(ctx context.Context, cfg FCMConfig, log zerolog.Logger) (*PushSender, error) {
	if cfg.ProjectID == "" {
		return nil, ErrNotConfigured
	}

	var (
		client *http.Client
		err    error
	)
	if cfg.CredentialsFile != "" {
		data, readErr := os.ReadFile(cfg.CredentialsFile)
		if readErr != nil {
			return nil, fmt.Errorf("read fcm credentials: %w", readErr)
		}
		creds, credErr := google.CredentialsFromJSON(ctx, data, fcmScope)
		if credErr != nil {
			return nil, fmt.Errorf("parse fcm credentials: %w", credErr)
		}
		client = oauth2.NewClient(ctx, creds.TokenSource)
	} else {
		client, err = google.DefaultClient(ctx, fcmScope)
		if err != nil {
			return nil, fmt.Errorf("fcm default credentials: %w", err)
		}
	}

	return newPushSender(client, fmt.Sprintf(fcmEndpoint, cfg.ProjectID), log), nil
}

func newPushSender(client *http.Client, endpoint string, log zerolog.Logger) *PushSender {
	return &PushSender{client: client, endpoint: endpoint, log: log}
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *fcmAndroid       `json:"android,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority string `json:"priority"`
}

type fcmError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (s *PushSender) Send(ctx context.Context, token string, msg domain.Message) error {
	payload, err := json.Marshal(fcmRequest{Message: fcmMessage{
		Token:        token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
		Android:      &fcmAndroid{Priority: "high"},
	}})
	if err != nil {
		return fmt.Errorf("encode fcm message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		var fe fcmError
		if json.Unmarshal(body, &fe) == nil && fe.Error.Status != "" {
			return fmt.Errorf("fcm send: %d %s: %s", resp.StatusCode, fe.Error.Status, fe.Error.Message)
		}
		return fmt.Errorf("fcm send: unexpected status %d", resp.StatusCode)
	}

	s.log.Debug().Str("channel", string(domain.ChannelPush)).Msg("push sent")
	return nil
}
