// Package api defines the JSON wire contract between the VaultShare server
// and its clients. Both sides marshal exactly these types, so the field
// names here are the contract.
package api

// Error kinds carried in the "error" field of an ErrorResponse. Anything
// else in that field is a free-text message.
const (
	ErrKindInvalidRecipients = "INVALID_RECIPIENTS"
	ErrKindNotFound          = "NOT_FOUND"
	ErrKindForbidden         = "FORBIDDEN"
	ErrKindExpired           = "EXPIRED"
	ErrKindUnauthorized      = "UNAUTHORIZED"
	ErrKindTokenExpired      = "TOKEN_EXPIRED"
)

// ErrorResponse is the error envelope for every endpoint.
// InvalidRecipients is populated only for INVALID_RECIPIENTS.
type ErrorResponse struct {
	Error             string   `json:"error"`
	InvalidRecipients []string `json:"invalidRecipients,omitempty"`
}

// --- identity ---

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type SignUpResponse struct {
	UserID string `json:"user_id"`
}

type ConfirmSignUpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendCodeRequest struct {
	Email string `json:"email"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CurrentUserResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// --- share lifecycle ---

type UploadURLRequest struct {
	FileName           string   `json:"fileName"`
	ContentType        string   `json:"contentType"`
	OwnerEmail         string   `json:"owner_email"`
	OwnerName          string   `json:"owner_name"`
	OwnerID            string   `json:"owner_id"`
	Recipients         []string `json:"recipients"`
	ExpiryTimestamp    int64    `json:"expiry_timestamp"`
	FileSize           int64    `json:"file_size"`
	ScreenshotsAllowed bool     `json:"screenshots_allowed"`
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadURL"`
	FileID    string `json:"file_id"`
}

type MarkUploadedRequest struct {
	FileID string `json:"file_id"`
}

// SentFilesRequest carries the owner email for wire compatibility; the
// server resolves the owner from the bearer token and ignores the field.
type SentFilesRequest struct {
	OwnerEmail string `json:"owner_email"`
}

// AccessLog is one append-only access record as serialized to clients.
// HumanTime is a derived rendering of Timestamp.
type AccessLog struct {
	UserEmail string `json:"user_email"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
	HumanTime string `json:"human_time"`
}

type SentFile struct {
	FileID             string      `json:"file_id"`
	FileName           string      `json:"file_name"`
	FileSize           int64       `json:"file_size"`
	UploadedAt         string      `json:"uploaded_at"`
	ExpiresAt          string      `json:"expires_at"`
	Status             string      `json:"status"`
	UploadStatus       string      `json:"upload_status"`
	ScreenshotsAllowed bool        `json:"screenshots_allowed"`
	RecipientsCount    int         `json:"recipients_count"`
	Recipients         []string    `json:"recipients"`
	AccessLogs         []AccessLog `json:"access_logs"`
}

type SentFilesResponse struct {
	SentFiles []SentFile `json:"sent_files"`
}

// ReceivedFilesRequest carries the recipient email for wire
// compatibility; the server resolves it from the bearer token.
type ReceivedFilesRequest struct {
	Recipient string `json:"recipient"`
}

// ReceivedFile deliberately carries no status field: the recipient view
// recomputes it from ExpiresAt with share.Compute.
type ReceivedFile struct {
	ID                 string      `json:"id"`
	Filename           string      `json:"filename"`
	FileSize           int64       `json:"file_size"`
	Owner              string      `json:"owner"`
	UploadedAt         string      `json:"uploadedAt"`
	ExpiresAt          int64       `json:"expiresAt"`
	ScreenshotsAllowed bool        `json:"screenshots_allowed"`
	AccessLogs         []AccessLog `json:"access_logs"`
}

type ReceivedFilesResponse struct {
	ReceivedFiles []ReceivedFile `json:"received_files"`
}

// DownloadURLRequest identifies the share to download. UserEmail is kept
// for wire compatibility; the server resolves the requester from the
// bearer token.
type DownloadURLRequest struct {
	FileID    string `json:"file_id"`
	UserEmail string `json:"user_email"`
	Action    string `json:"action"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"downloadURL"`
}
