// Package models holds the client-side view of shares and notifications.
package models

import "time"

// ShareRequest is one file the user wants to send: the local path plus the
// share parameters common to the batch.
type ShareRequest struct {
	FilePath           string
	ContentType        string
	Recipients         []string
	ExpiresAt          int64
	ScreenshotsAllowed bool
}

// FileResult is the per-file outcome of a batch submission.
type FileResult struct {
	FilePath string
	FileID   string
	Err      error
}

// BatchResult tallies a batch submission. One file's failure never rolls
// back the others, so Sent+Failed always equals the batch size.
type BatchResult struct {
	Sent    int
	Failed  int
	Results []FileResult
}

// SentShare is the owner's view of one sent file, as returned by the
// server (status included, computed server-side).
type SentShare struct {
	ID                 string
	FileName           string
	FileSize           int64
	UploadedAt         string
	ExpiresAt          string
	Status             string
	UploadStatus       string
	ScreenshotsAllowed bool
	Recipients         []string
	AccessLogs         []AccessLog
}

// ReceivedShare is the recipient's view of one incoming file. It carries
// the raw expiry instant; status is derived locally at render time.
type ReceivedShare struct {
	ID                 string
	FileName           string
	FileSize           int64
	Owner              string
	UploadedAt         string
	ExpiresAt          int64
	ScreenshotsAllowed bool
	AccessLogs         []AccessLog
}

// AccessLog is one access event on a share.
type AccessLog struct {
	UserEmail string
	Action    string
	Timestamp int64
	HumanTime string
}

// Session is the client's authenticated state.
type Session struct {
	Email    string
	UserID   string
	Name     string
	SignedIn time.Time
}
