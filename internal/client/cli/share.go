package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vaultshare/vaultshare/internal/client/models"
	"github.com/vaultshare/vaultshare/internal/share"
)

const defaultExpiryHours = 24

// Send collects a batch of file paths plus the share parameters, submits
// every file independently, and prints the per-file outcome and the tally.
func (a *App) Send(ctx context.Context) error {
	paths, err := GetLines(a.reader, "Enter file paths, one per line", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(paths) == 0 {
		fmt.Println("Nothing to send.")
		return nil
	}

	recipients, err := GetCommaList(a.reader, "Enter recipient emails, comma separated", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	hoursText, err := getSimpleText(a.reader,
		fmt.Sprintf("Enter expiry in hours (default %d)", defaultExpiryHours), os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	hours := defaultExpiryHours
	if hoursText != "" {
		hours, err = strconv.Atoi(hoursText)
		if err != nil || hours <= 0 {
			fmt.Println("Expiry must be a positive number of hours.")
			return nil
		}
	}

	screenshots, err := GetYesNo(a.reader, "Allow screenshots?", false, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	expiresAt := time.Now().Add(time.Duration(hours) * time.Hour).Unix()
	requests := make([]*models.ShareRequest, 0, len(paths))
	for _, path := range paths {
		requests = append(requests, &models.ShareRequest{
			FilePath:           path,
			Recipients:         recipients,
			ExpiresAt:          expiresAt,
			ScreenshotsAllowed: screenshots,
		})
	}

	result := a.shares.SendBatch(ctx, requests)

	for _, r := range result.Results {
		if r.Err != nil {
			fmt.Printf("  FAILED %s: %v\n", r.FilePath, r.Err)
		} else {
			fmt.Printf("  sent   %s (id %s)\n", r.FilePath, r.FileID)
		}
	}
	fmt.Printf("Sent %d of %d file(s), %d failed.\n", result.Sent, len(result.Results), result.Failed)
	return nil
}

// Sent lists the files the user has shared, with the server-computed
// status and the access history of each.
func (a *App) Sent(ctx context.Context) error {
	shares, err := a.shares.ListSent(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(shares) == 0 {
		fmt.Println("No sent files.")
		return nil
	}

	for _, s := range shares {
		fmt.Printf("%s  %s  [%s]  expires %s  recipients: %s\n",
			s.ID, s.FileName, s.Status, s.ExpiresAt, strings.Join(s.Recipients, ", "))
		for _, l := range s.AccessLogs {
			fmt.Printf("    %s %s at %s\n", l.UserEmail, l.Action, l.HumanTime)
		}
	}
	return nil
}

// Received lists the files shared with the user. The server sends the raw
// expiry instant; the status shown here is derived at render time.
func (a *App) Received(ctx context.Context) error {
	list, err := a.shares.ListReceived(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(list) == 0 {
		fmt.Println("No received files.")
		return nil
	}

	now := time.Now()
	for _, r := range list {
		status := share.Compute(r.ExpiresAt, now)
		fmt.Printf("%s  %s  [%s]  from %s  expires %s\n",
			r.ID, r.FileName, status, r.Owner,
			time.Unix(r.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}
	return nil
}

// Download prompts for a file id, authorizes the download with the server,
// and saves the file into ./download.
func (a *App) Download(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter file id to download", os.Stdout)
	if err != nil {
		return err
	}

	fileName := id
	if received, err := a.shares.ListReceived(ctx); err == nil {
		for _, r := range received {
			if r.ID == id {
				fileName = r.FileName
				break
			}
		}
	}

	if err := os.MkdirAll("download", 0o755); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	path, err := a.shares.Download(ctx, id, fileName, "download")
	if err != nil {
		log.Printf("Download unsuccessful: %s", err.Error())
		return err
	}

	fmt.Printf("File saved to: %s\n", path)
	return nil
}
