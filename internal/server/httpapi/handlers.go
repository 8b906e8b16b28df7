package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vaultshare/vaultshare/internal/api"
	"github.com/vaultshare/vaultshare/internal/server/models"
)

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func badRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "malformed request body"})
}

// --- identity ---

func (s *HTTPServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req api.SignUpRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	user, err := s.users.SignUp(r.Context(), req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		s.logger.Error(r.Context(), "signup failed", "error", err.Error())
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "email", user.Email)
	writeJSON(w, http.StatusOK, api.SignUpResponse{UserID: user.ID})
}

func (s *HTTPServer) handleConfirmSignUp(w http.ResponseWriter, r *http.Request) {
	var req api.ConfirmSignUpRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	if err := s.users.ConfirmSignUp(r.Context(), req.Email, req.Code); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *HTTPServer) handleResendCode(w http.ResponseWriter, r *http.Request) {
	var req api.ResendCodeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	if err := s.users.ResendCode(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *HTTPServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req api.SignInRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	pair, err := s.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *HTTPServer) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshTokenRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *HTTPServer) handleSignOut(w http.ResponseWriter, r *http.Request) {
	var req api.SignOutRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	if err := s.users.SignOut(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), callerID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.CurrentUserResponse{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
}

// --- share lifecycle ---

func (s *HTTPServer) handleGetUploadURL(w http.ResponseWriter, r *http.Request) {
	var req api.UploadURLRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	grant, err := s.shares.AuthorizeUpload(r.Context(), &models.Share{
		OwnerID:            callerID(r.Context()),
		OwnerEmail:         callerEmail(r.Context()),
		OwnerName:          req.OwnerName,
		FileName:           req.FileName,
		ContentType:        req.ContentType,
		FileSize:           req.FileSize,
		Recipients:         req.Recipients,
		ExpiresAt:          req.ExpiryTimestamp,
		ScreenshotsAllowed: req.ScreenshotsAllowed,
	})
	if err != nil {
		s.logger.Error(r.Context(), "upload authorization failed", "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.UploadURLResponse{
		UploadURL: grant.UploadURL,
		FileID:    grant.ShareID,
	})
}

func (s *HTTPServer) handleMarkUploaded(w http.ResponseWriter, r *http.Request) {
	var req api.MarkUploadedRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	if err := s.shares.MarkUploaded(r.Context(), req.FileID, callerID(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *HTTPServer) handleGetSentFiles(w http.ResponseWriter, r *http.Request) {
	var req api.SentFilesRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	// The owner identity comes from the token, never the body: a caller
	// can only list their own shares.
	items, err := s.shares.ListSent(r.Context(), callerEmail(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := api.SentFilesResponse{SentFiles: make([]api.SentFile, 0, len(items))}
	for _, item := range items {
		resp.SentFiles = append(resp.SentFiles, api.SentFile{
			FileID:             item.Share.ID,
			FileName:           item.Share.FileName,
			FileSize:           item.Share.FileSize,
			UploadedAt:         item.Share.CreatedAt.UTC().Format(time.RFC3339),
			ExpiresAt:          time.Unix(item.Share.ExpiresAt, 0).UTC().Format(time.RFC3339),
			Status:             string(item.Status),
			UploadStatus:       item.Share.UploadStatus,
			ScreenshotsAllowed: item.Share.ScreenshotsAllowed,
			RecipientsCount:    len(item.Share.Recipients),
			Recipients:         item.Share.Recipients,
			AccessLogs:         toAPILogs(item.AccessLogs),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleGetReceivedFiles(w http.ResponseWriter, r *http.Request) {
	var req api.ReceivedFilesRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	items, err := s.shares.ListReceived(r.Context(), callerEmail(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := api.ReceivedFilesResponse{ReceivedFiles: make([]api.ReceivedFile, 0, len(items))}
	for _, item := range items {
		resp.ReceivedFiles = append(resp.ReceivedFiles, api.ReceivedFile{
			ID:                 item.Share.ID,
			Filename:           item.Share.FileName,
			FileSize:           item.Share.FileSize,
			Owner:              item.Share.OwnerEmail,
			UploadedAt:         item.Share.CreatedAt.UTC().Format(time.RFC3339),
			ExpiresAt:          item.Share.ExpiresAt,
			ScreenshotsAllowed: item.Share.ScreenshotsAllowed,
			AccessLogs:         toAPILogs(item.AccessLogs),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleGetDownloadURL(w http.ResponseWriter, r *http.Request) {
	var req api.DownloadURLRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}

	url, err := s.shares.AuthorizeDownload(r.Context(), req.FileID, callerEmail(r.Context()), req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.DownloadURLResponse{DownloadURL: url})
}

func toAPILogs(entries []*models.AccessLogEntry) []api.AccessLog {
	logs := make([]api.AccessLog, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, api.AccessLog{
			UserEmail: e.UserEmail,
			Action:    e.Action,
			Timestamp: e.Timestamp,
			HumanTime: time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339),
		})
	}
	return logs
}
