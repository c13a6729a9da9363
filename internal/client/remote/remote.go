// Package remote talks HTTP/JSON to the authority server. It implements
// the sync engine's Authority interface and the auth calls the CLI needs.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/offcampus/rollcall/internal/api"
	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/common"
)

var ErrUnavailable = errors.New("authority unavailable")

const requestTimeout = 12 * time.Second

// HTTPAuthority is the client side of the authority API. Tokens are held
// behind a mutex because the sync scheduler and the CLI share one instance.
type HTTPAuthority struct {
	baseURL string
	client  *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPAuthority(baseURL string) *HTTPAuthority {
	return &HTTPAuthority{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (a *HTTPAuthority) tokens() (string, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accessToken, a.refreshToken
}

func (a *HTTPAuthority) setTokens(access, refresh string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = access
	a.refreshToken = refresh
}

// LoggedIn reports whether a Login has succeeded on this instance.
func (a *HTTPAuthority) LoggedIn() bool {
	access, _ := a.tokens()
	return access != ""
}

func (a *HTTPAuthority) Register(ctx context.Context, username, password string) error {
	return a.postAuth(ctx, "/api/register", api.RegisterRequest{Username: username, Password: password})
}

func (a *HTTPAuthority) Login(ctx context.Context, username, password string) error {
	return a.postAuth(ctx, "/api/login", api.LoginRequest{Username: username, Password: password})
}

// postAuth posts credentials and stores the returned token pair.
func (a *HTTPAuthority) postAuth(ctx context.Context, path string, payload any) error {
	resp, err := a.send(ctx, http.MethodPost, path, payload, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mapStatus(resp)
	}

	var tokens api.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	a.setTokens(tokens.AccessToken, tokens.RefreshToken)
	return nil
}

func (a *HTTPAuthority) refresh(ctx context.Context) error {
	_, refreshToken := a.tokens()
	if refreshToken == "" {
		return common.ErrorUnauthorized
	}

	resp, err := a.send(ctx, http.MethodPost, "/api/refresh", api.RefreshTokenRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mapStatus(resp)
	}

	var tokens api.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	a.setTokens(tokens.AccessToken, tokens.RefreshToken)
	return nil
}

func (a *HTTPAuthority) UploadAttendance(ctx context.Context, rec *models.AttendanceRecord) error {
	upload := api.AttendanceUpload{
		ID:          rec.ID,
		SessionID:   rec.SessionID,
		SubjectID:   rec.SubjectID,
		CheckInTime: rec.CheckInTime,
		Status:      string(rec.Status),
		Reason:      rec.Reason,
		PhotoRef:    rec.PhotoRef,
		CreatedAt:   rec.CreatedAt,
	}
	if rec.Location != nil {
		upload.Lat = &rec.Location.Lat
		upload.Lng = &rec.Location.Lng
		upload.AccuracyM = &rec.Location.AccuracyM
	}
	return a.doAuthorized(ctx, http.MethodPut, "/api/attendance/"+rec.ID, upload)
}

func (a *HTTPAuthority) UploadLeave(ctx context.Context, req *models.LeaveRequest) error {
	upload := api.LeaveUpload{
		ID:              req.ID,
		SubjectID:       req.SubjectID,
		Category:        req.Category,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		AffectedCourses: req.AffectedCourses,
		Remarks:         req.Remarks,
		DocumentRef:     req.DocumentRef,
		ReviewStatus:    string(req.ReviewStatus),
		CreatedAt:       req.CreatedAt,
	}
	return a.doAuthorized(ctx, http.MethodPut, "/api/leaves/"+req.ID, upload)
}

// FetchSessions pulls the session catalog from the authority. The sync
// engine calls this at the start of each run so new sessions show up on the
// device without any user action.
func (a *HTTPAuthority) FetchSessions(ctx context.Context) ([]*models.Session, error) {
	resp, err := a.getAuthorized(ctx, "/api/sessions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload []api.Session
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	out := make([]*models.Session, 0, len(payload))
	for _, s := range payload {
		out = append(out, sessionFromWire(s))
	}
	return out, nil
}

func sessionFromWire(s api.Session) *models.Session {
	sess := &models.Session{
		ID:          s.ID,
		GroupID:     s.GroupID,
		CourseCode:  s.CourseCode,
		Title:       s.Title,
		Room:        s.Room,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		QRToken:     s.QRToken,
		ClassSecret: s.ClassSecret,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
	}
	if s.Lat != nil && s.Lng != nil && s.RadiusM != nil {
		sess.Fence = &models.Geofence{Lat: *s.Lat, Lng: *s.Lng, RadiusM: *s.RadiusM}
	}
	return sess
}

// getAuthorized is doAuthorized for GETs whose body the caller decodes. The
// returned response is always 200 and the caller owns closing it.
func (a *HTTPAuthority) getAuthorized(ctx context.Context, path string) (*http.Response, error) {
	access, refreshToken := a.tokens()

	resp, err := a.send(ctx, http.MethodGet, path, nil, access)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	if resp.StatusCode != http.StatusUnauthorized || refreshToken == "" {
		defer resp.Body.Close()
		return nil, mapStatus(resp)
	}
	msg := errorMessage(resp)
	resp.Body.Close()
	if msg != common.ErrTokenExpired.Error() {
		return nil, common.ErrorUnauthorized
	}

	if err := a.refresh(ctx); err != nil {
		return nil, err
	}
	access, _ = a.tokens()

	retried, err := a.send(ctx, http.MethodGet, path, nil, access)
	if err != nil {
		return nil, err
	}
	if retried.StatusCode != http.StatusOK {
		defer retried.Body.Close()
		return nil, mapStatus(retried)
	}
	return retried, nil
}

func (a *HTTPAuthority) DeleteLeave(ctx context.Context, id string) error {
	return a.doAuthorized(ctx, http.MethodDelete, "/api/leaves/"+id, nil)
}

func (a *HTTPAuthority) Ping(ctx context.Context) error {
	resp, err := a.send(ctx, http.MethodGet, "/api/ping", nil, "")
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrUnavailable
	}

	var ping api.PingResponse
	if err := json.NewDecoder(resp.Body).Decode(&ping); err != nil || ping.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// doAuthorized sends a bearer-token request. When the server answers 401
// with a token-expired error, the token pair is refreshed once and the
// request replayed with the new access token.
func (a *HTTPAuthority) doAuthorized(ctx context.Context, method, path string, payload any) error {
	access, refreshToken := a.tokens()

	resp, err := a.send(ctx, method, path, payload, access)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode != http.StatusUnauthorized || refreshToken == "" {
		return mapStatus(resp)
	}
	if errorMessage(resp) != common.ErrTokenExpired.Error() {
		return common.ErrorUnauthorized
	}

	if err := a.refresh(ctx); err != nil {
		return err
	}
	access, _ = a.tokens()

	retried, err := a.send(ctx, method, path, payload, access)
	if err != nil {
		return err
	}
	defer retried.Body.Close()

	if retried.StatusCode >= 300 {
		return mapStatus(retried)
	}
	return nil
}

func (a *HTTPAuthority) send(ctx context.Context, method, path string, payload any, accessToken string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+accessToken)
	}

	return a.client.Do(req)
}

// errorMessage pulls the error string out of a failed response body.
func errorMessage(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ""
	}
	var e api.ErrorResponse
	if err := json.Unmarshal(b, &e); err != nil {
		return strings.TrimSpace(string(b))
	}
	return e.Error
}

func mapStatus(resp *http.Response) error {
	msg := errorMessage(resp)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if msg == common.ErrorInvalidCredentials.Error() {
			return common.ErrorInvalidCredentials
		}
		return common.ErrorUnauthorized
	case http.StatusConflict:
		return common.ErrorUsernameTaken
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
	default:
		return fmt.Errorf("authority returned %s: %s", resp.Status, msg)
	}
}
