package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// Notifications prints the current notification list, newest first.
// Dismissed notifications are filtered out by the service; read ones are
// shown without the unread marker.
func (a *App) Notifications(ctx context.Context) error {
	list, err := a.notifications.List(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(list) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	for _, n := range list {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s\n", marker,
			time.Unix(n.Timestamp, 0).UTC().Format(time.RFC3339), n.Message, n.ID)
	}
	return nil
}

// MarkRead marks one notification as read by its id.
func (a *App) MarkRead(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter notification id", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.notifications.MarkRead(ctx, id); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}

// Dismiss hides one notification permanently. The stored flag keys on the
// deterministic notification id, so the notification stays hidden even
// after the list is recomputed from the server.
func (a *App) Dismiss(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter notification id", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.notifications.Dismiss(ctx, id); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}
