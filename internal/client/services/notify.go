package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vaultshare/vaultshare/internal/client/client"
	"github.com/vaultshare/vaultshare/internal/client/models"
	"github.com/vaultshare/vaultshare/internal/client/repositories/notifications"
	"github.com/vaultshare/vaultshare/internal/share"
)

// Project derives the notification list from the Sent and Received views.
// It is a pure function of its inputs: recomputing with the same data and
// clock yields the same notifications with the same ids, which is what
// lets locally stored read/dismissed flags survive recomputation.
//
// Produced kinds:
//   - access: one per access-log entry on an own share by someone else
//   - expiry: one per own share that is expired at now
//   - newFile: one per received share
func Project(sent []*models.SentShare, received []*models.ReceivedShare, selfEmail string, now time.Time) []*models.Notification {

	selfEmail = strings.ToLower(strings.TrimSpace(selfEmail))
	var result []*models.Notification

	for _, s := range sent {
		for _, l := range s.AccessLogs {
			if strings.EqualFold(l.UserEmail, selfEmail) {
				continue
			}
			result = append(result, &models.Notification{
				ID:        fmt.Sprintf("access:%s:%s:%d", s.ID, l.UserEmail, l.Timestamp),
				Kind:      models.NotificationAccess,
				FileID:    s.ID,
				FileName:  s.FileName,
				Actor:     l.UserEmail,
				Timestamp: l.Timestamp,
				Message:   fmt.Sprintf("%s %s %s", l.UserEmail, l.Action, s.FileName),
			})
		}

		expiresAt, err := time.Parse(time.RFC3339, s.ExpiresAt)
		if err != nil {
			continue
		}
		if share.IsExpired(expiresAt.Unix(), now) {
			result = append(result, &models.Notification{
				ID:        "expiry:" + s.ID,
				Kind:      models.NotificationExpiry,
				FileID:    s.ID,
				FileName:  s.FileName,
				Timestamp: expiresAt.Unix(),
				Message:   fmt.Sprintf("%s has expired", s.FileName),
			})
		}
	}

	for _, r := range received {
		ts := int64(0)
		if uploadedAt, err := time.Parse(time.RFC3339, r.UploadedAt); err == nil {
			ts = uploadedAt.Unix()
		}
		result = append(result, &models.Notification{
			ID:        "newFile:" + r.ID,
			Kind:      models.NotificationNewFile,
			FileID:    r.ID,
			FileName:  r.FileName,
			Actor:     r.Owner,
			Timestamp: ts,
			Message:   fmt.Sprintf("%s shared %s with you", r.Owner, r.FileName),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp > result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// NotificationService recomputes the projection from the server and
// overlays the locally stored read/dismissed flags.
type NotificationService interface {
	// List returns current notifications, newest first, without dismissed
	// ones. Stored state for ids no longer projected is pruned.
	List(ctx context.Context) ([]*models.Notification, error)

	MarkRead(ctx context.Context, id string) error
	Dismiss(ctx context.Context, id string) error
}

type notificationService struct {
	client client.Client
	repo   notifications.Repository
}

func NewNotificationService(client client.Client, repo notifications.Repository) NotificationService {
	return &notificationService{client: client, repo: repo}
}

func (s *notificationService) List(ctx context.Context) ([]*models.Notification, error) {

	session, err := s.client.Session()
	if err != nil {
		return nil, err
	}

	sent, err := s.client.GetSentFiles(ctx)
	if err != nil {
		return nil, err
	}
	received, err := s.client.GetReceivedFiles(ctx)
	if err != nil {
		return nil, err
	}

	projected := Project(sent, received, session.Email, time.Now())

	states, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	liveIDs := make([]string, 0, len(projected))
	result := make([]*models.Notification, 0, len(projected))
	for _, n := range projected {
		liveIDs = append(liveIDs, n.ID)
		if state, ok := states[n.ID]; ok {
			n.Read = state.Read
			n.Dismissed = state.Dismissed
		}
		if n.Dismissed {
			continue
		}
		result = append(result, n)
	}

	if err := s.repo.Prune(ctx, liveIDs); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *notificationService) Dismiss(ctx context.Context, id string) error {
	return s.repo.MarkDismissed(ctx, id)
}
