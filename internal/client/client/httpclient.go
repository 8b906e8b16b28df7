package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vaultshare/vaultshare/internal/api"
	"github.com/vaultshare/vaultshare/internal/client/models"
	"github.com/vaultshare/vaultshare/internal/common"
)

// HTTPClient talks JSON to the VaultShare server. It holds the token pair
// and transparently refreshes the access token once when the server
// answers 401 TOKEN_EXPIRED, then retries the request.
type HTTPClient struct {
	endpointURL  string
	httpClient   *http.Client
	accessToken  string
	refreshToken string
	session      *models.Session
}

func NewVaultShareClient(endpointURL string) (*HTTPClient, error) {
	return &HTTPClient{
		endpointURL: endpointURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// post sends one JSON request. When authed is set, the access token rides
// in the Authorization header; an expired-token 401 triggers one refresh
// and one retry.
func (c *HTTPClient) post(ctx context.Context, method, path string, in any, out any, authed bool) error {

	doOnce := func() (int, *api.ErrorResponse, error) {
		var body bytes.Buffer
		if in != nil {
			if err := json.NewEncoder(&body).Encode(in); err != nil {
				return 0, nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.endpointURL+path, &body)
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if authed {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.accessToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, ErrUnavailable
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out != nil {
				if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
					return resp.StatusCode, nil, err
				}
			}
			return resp.StatusCode, nil, nil
		}

		envelope := &api.ErrorResponse{}
		if err := json.NewDecoder(resp.Body).Decode(envelope); err != nil {
			// Non-2xx without a structured body.
			return resp.StatusCode, nil, fmt.Errorf("server error: status %d", resp.StatusCode)
		}
		return resp.StatusCode, envelope, nil
	}

	status, envelope, err := doOnce()
	if err != nil {
		return err
	}
	if envelope == nil {
		return nil
	}

	if authed && status == http.StatusUnauthorized &&
		envelope.Error == api.ErrKindTokenExpired && c.refreshToken != "" {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		status, envelope, err = doOnce()
		if err != nil {
			return err
		}
		if envelope == nil {
			return nil
		}
	}

	return mapError(status, envelope)
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	var pair api.TokenPairResponse
	err := c.post(ctx, http.MethodPost, "/refreshToken",
		&api.RefreshTokenRequest{RefreshToken: c.refreshToken}, &pair, false)
	if err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

func mapError(status int, envelope *api.ErrorResponse) error {
	switch envelope.Error {
	case api.ErrKindInvalidRecipients:
		return &InvalidRecipientsError{Recipients: envelope.InvalidRecipients}
	case api.ErrKindNotFound:
		return ErrNotFound
	case api.ErrKindForbidden:
		return ErrForbidden
	case api.ErrKindExpired:
		return ErrShareExpired
	case api.ErrKindUnauthorized, api.ErrKindTokenExpired:
		return ErrUnauthorized
	}
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return fmt.Errorf("server error: %s", envelope.Error)
}

// --- identity ---

func (c *HTTPClient) SignUp(ctx context.Context, email, password, name, phone string) (string, error) {
	var resp api.SignUpResponse
	err := c.post(ctx, http.MethodPost, "/signup",
		&api.SignUpRequest{Email: email, Password: password, Name: name, Phone: phone}, &resp, false)
	if err != nil {
		return "", err
	}
	return resp.UserID, nil
}

func (c *HTTPClient) ConfirmSignUp(ctx context.Context, email, code string) error {
	return c.post(ctx, http.MethodPost, "/confirmSignup",
		&api.ConfirmSignUpRequest{Email: email, Code: code}, nil, false)
}

func (c *HTTPClient) ResendCode(ctx context.Context, email string) error {
	return c.post(ctx, http.MethodPost, "/resendCode",
		&api.ResendCodeRequest{Email: email}, nil, false)
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) error {
	var pair api.TokenPairResponse
	err := c.post(ctx, http.MethodPost, "/signin",
		&api.SignInRequest{Email: email, Password: password}, &pair, false)
	if err != nil {
		return err
	}

	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken

	var me api.CurrentUserResponse
	if err := c.post(ctx, http.MethodGet, "/me", nil, &me, true); err != nil {
		return err
	}
	c.session = &models.Session{
		Email:    me.Email,
		UserID:   me.UserID,
		Name:     me.Name,
		SignedIn: time.Now(),
	}
	return nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	if c.refreshToken == "" {
		return ErrNotSignedIn
	}
	err := c.post(ctx, http.MethodPost, "/signout",
		&api.SignOutRequest{RefreshToken: c.refreshToken}, nil, false)
	c.accessToken = ""
	c.refreshToken = ""
	c.session = nil
	return err
}

func (c *HTTPClient) Session() (*models.Session, error) {
	if c.session == nil {
		return nil, ErrNotSignedIn
	}
	return c.session, nil
}

// --- share lifecycle ---

func (c *HTTPClient) GetUploadURL(ctx context.Context, fileName, contentType string, fileSize int64,
	recipients []string, expiresAt int64, screenshotsAllowed bool) (string, string, error) {

	session, err := c.Session()
	if err != nil {
		return "", "", err
	}

	var resp api.UploadURLResponse
	err = c.post(ctx, http.MethodPost, "/getUploadUrl", &api.UploadURLRequest{
		FileName:           fileName,
		ContentType:        contentType,
		OwnerEmail:         session.Email,
		OwnerName:          session.Name,
		OwnerID:            session.UserID,
		Recipients:         recipients,
		ExpiryTimestamp:    expiresAt,
		FileSize:           fileSize,
		ScreenshotsAllowed: screenshotsAllowed,
	}, &resp, true)
	if err != nil {
		return "", "", err
	}
	return resp.FileID, resp.UploadURL, nil
}

func (c *HTTPClient) MarkUploaded(ctx context.Context, fileID string) error {
	return c.post(ctx, http.MethodPost, "/markUploaded",
		&api.MarkUploadedRequest{FileID: fileID}, nil, true)
}

func (c *HTTPClient) GetSentFiles(ctx context.Context) ([]*models.SentShare, error) {
	session, err := c.Session()
	if err != nil {
		return nil, err
	}

	var resp api.SentFilesResponse
	err = c.post(ctx, http.MethodPost, "/getSentFiles",
		&api.SentFilesRequest{OwnerEmail: session.Email}, &resp, true)
	if err != nil {
		return nil, err
	}

	result := make([]*models.SentShare, 0, len(resp.SentFiles))
	for _, f := range resp.SentFiles {
		result = append(result, &models.SentShare{
			ID:                 f.FileID,
			FileName:           f.FileName,
			FileSize:           f.FileSize,
			UploadedAt:         f.UploadedAt,
			ExpiresAt:          f.ExpiresAt,
			Status:             f.Status,
			UploadStatus:       f.UploadStatus,
			ScreenshotsAllowed: f.ScreenshotsAllowed,
			Recipients:         f.Recipients,
			AccessLogs:         toModelLogs(f.AccessLogs),
		})
	}
	return result, nil
}

func (c *HTTPClient) GetReceivedFiles(ctx context.Context) ([]*models.ReceivedShare, error) {
	session, err := c.Session()
	if err != nil {
		return nil, err
	}

	var resp api.ReceivedFilesResponse
	err = c.post(ctx, http.MethodPost, "/getReceivedFiles",
		&api.ReceivedFilesRequest{Recipient: session.Email}, &resp, true)
	if err != nil {
		return nil, err
	}

	result := make([]*models.ReceivedShare, 0, len(resp.ReceivedFiles))
	for _, f := range resp.ReceivedFiles {
		result = append(result, &models.ReceivedShare{
			ID:                 f.ID,
			FileName:           f.Filename,
			FileSize:           f.FileSize,
			Owner:              f.Owner,
			UploadedAt:         f.UploadedAt,
			ExpiresAt:          f.ExpiresAt,
			ScreenshotsAllowed: f.ScreenshotsAllowed,
			AccessLogs:         toModelLogs(f.AccessLogs),
		})
	}
	return result, nil
}

func (c *HTTPClient) GetDownloadURL(ctx context.Context, fileID string) (string, error) {
	session, err := c.Session()
	if err != nil {
		return "", err
	}

	var resp api.DownloadURLResponse
	err = c.post(ctx, http.MethodPost, "/getDownloadUrl", &api.DownloadURLRequest{
		FileID:    fileID,
		UserEmail: session.Email,
		Action:    common.ActionDownloaded,
	}, &resp, true)
	if err != nil {
		return "", err
	}
	return resp.DownloadURL, nil
}

func toModelLogs(logs []api.AccessLog) []models.AccessLog {
	result := make([]models.AccessLog, 0, len(logs))
	for _, l := range logs {
		result = append(result, models.AccessLog{
			UserEmail: l.UserEmail,
			Action:    l.Action,
			Timestamp: l.Timestamp,
			HumanTime: l.HumanTime,
		})
	}
	return result
}
