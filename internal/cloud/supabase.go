package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
)

const (
	userDataPath = "/rest/v1/user_data"
	tokenPath    = "/auth/v1/token"
	signupPath   = "/auth/v1/signup"
)

// SupabaseStore keeps snapshots in the PostgREST user_data table, one row per
// account keyed by the auth user id.
type SupabaseStore struct {
	BaseURL     string
	AnonKey     string
	AccessToken string
	HTTPClient  *http.Client
}

// userDataRow is the table row. The list columns share the snapshot's JSON
// names so the row decodes straight into a Snapshot.
type userDataRow struct {
	ID string `json:"id"`
	model.Snapshot
}

// AuthSession is what the auth endpoint hands back after a password sign in.
type AuthSession struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s *SupabaseStore) base() (string, error) {
	base := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if base == "" {
		return "", fmt.Errorf("supabase url is not configured")
	}
	if strings.TrimSpace(s.AnonKey) == "" {
		return "", fmt.Errorf("supabase anon key is not configured")
	}
	return base, nil
}

func (s *SupabaseStore) client() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (s *SupabaseStore) do(ctx context.Context, method, endpoint string, payload []byte, headers map[string]string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create supabase request: %w", err)
	}
	req.Header.Set("apikey", s.AnonKey)
	token := s.AccessToken
	if token == "" {
		token = s.AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute supabase request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read supabase response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return respBody, fmt.Errorf("supabase request failed with status %d: %w", resp.StatusCode, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, fmt.Errorf("supabase request failed with status %d", resp.StatusCode)
	}
	return respBody, nil
}

func (s *SupabaseStore) Load(ctx context.Context, userID string) (*model.Snapshot, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	base, err := s.base()
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("id", "eq."+userID)
	q.Set("select", "*")
	body, err := s.do(ctx, http.MethodGet, base+userDataPath+"?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []userDataRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode supabase user data: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	snap := rows[0].Snapshot
	snap.Normalize()
	return &snap, nil
}

func (s *SupabaseStore) Save(ctx context.Context, userID string, snap *model.Snapshot) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if snap == nil {
		return fmt.Errorf("snapshot is required")
	}
	base, err := s.base()
	if err != nil {
		return err
	}
	row := userDataRow{ID: userID, Snapshot: *snap}
	row.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode supabase user data: %w", err)
	}
	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}
	if _, err := s.do(ctx, http.MethodPost, base+userDataPath+"?on_conflict=id", payload, headers); err != nil {
		return err
	}
	return nil
}

// SignIn exchanges an email and password for an access token.
func (s *SupabaseStore) SignIn(ctx context.Context, email, password string) (AuthSession, error) {
	return s.authenticate(ctx, tokenPath+"?grant_type=password", email, password)
}

// SignUp registers a new account. Projects that require email confirmation
// return no access token; the caller signs in after confirming.
func (s *SupabaseStore) SignUp(ctx context.Context, email, password string) (AuthSession, error) {
	return s.authenticate(ctx, signupPath, email, password)
}

func (s *SupabaseStore) authenticate(ctx context.Context, path, email, password string) (AuthSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthSession{}, fmt.Errorf("email and password are required")
	}
	base, err := s.base()
	if err != nil {
		return AuthSession{}, err
	}
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return AuthSession{}, fmt.Errorf("encode supabase credentials: %w", err)
	}
	anon := &SupabaseStore{BaseURL: s.BaseURL, AnonKey: s.AnonKey, HTTPClient: s.HTTPClient}
	body, err := anon.do(ctx, http.MethodPost, base+path, payload, nil)
	if err != nil {
		return AuthSession{}, err
	}

	var parsed authResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return AuthSession{}, fmt.Errorf("decode supabase auth response: %w", err)
	}
	out := AuthSession{
		UserID:       parsed.User.ID,
		Email:        parsed.User.Email,
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
	}
	if parsed.ExpiresIn > 0 {
		out.ExpiresAt = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second).UTC()
	}
	if out.UserID == "" {
		return AuthSession{}, fmt.Errorf("supabase auth response has no user id")
	}
	return out, nil
}
