package cloud

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/checkin-cli/internal/logger"
	"github.com/saadjs/checkin-cli/internal/service"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Session identifies the signed-in account. It lives in app_config so every
// command and the API server share it.
type Session struct {
	UserID      string
	AccessToken string
}

func (s Session) Active() bool {
	return strings.TrimSpace(s.UserID) != ""
}

func LoadSession(db *sql.DB) (Session, error) {
	userID, _, err := service.GetConfig(db, service.ConfigSyncUserID)
	if err != nil {
		return Session{}, err
	}
	token, _, err := service.GetConfig(db, service.ConfigSyncAccessToken)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: userID, AccessToken: token}, nil
}

func SaveSession(db *sql.DB, s Session) error {
	if !s.Active() {
		return fmt.Errorf("session user id is required")
	}
	if err := service.SetConfig(db, service.ConfigSyncUserID, s.UserID); err != nil {
		return err
	}
	return service.SetConfig(db, service.ConfigSyncAccessToken, s.AccessToken)
}

// ClearSession signs out. Local data and sync bookkeeping are kept.
func ClearSession(db *sql.DB) error {
	if err := service.DeleteConfig(db, service.ConfigSyncUserID); err != nil {
		return err
	}
	return service.DeleteConfig(db, service.ConfigSyncAccessToken)
}

type Syncer struct {
	DB      *sql.DB
	Store   Store
	Session Session
	Log     *logger.Logger
	Now     func() time.Time
}

type PullResult struct {
	// Seeded is set when the remote had no row and was created from local data.
	Seeded bool                 `json:"seeded"`
	Report service.ImportReport `json:"report"`
}

type Status struct {
	Mode          Mode      `json:"mode"`
	UserID        string    `json:"userId,omitempty"`
	LastPullAt    time.Time `json:"lastPullAt"`
	LastPushAt    time.Time `json:"lastPushAt"`
	DataUpdatedAt time.Time `json:"dataUpdatedAt"`
	Pending       bool      `json:"pending"`
}

func (s *Syncer) Mode() Mode {
	if s.Store != nil && s.Session.Active() {
		return ModeRemote
	}
	return ModeLocal
}

func (s *Syncer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Syncer) log() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}

func (s *Syncer) requireRemote() error {
	if s.Mode() != ModeRemote {
		return fmt.Errorf("not signed in; run `checkin sync login` first")
	}
	return nil
}

// Pull replaces local data with the remote snapshot. When the account has no
// remote row yet, the local data is uploaded instead.
func (s *Syncer) Pull(ctx context.Context) (PullResult, error) {
	if err := s.requireRemote(); err != nil {
		return PullResult{}, err
	}
	started := time.Now()
	remote, err := s.Store.Load(ctx, s.Session.UserID)
	if err != nil {
		return PullResult{}, fmt.Errorf("load remote snapshot: %w", err)
	}
	now := s.now()
	if remote == nil {
		if err := s.push(ctx, now); err != nil {
			return PullResult{}, err
		}
		s.log().Info("seeded remote from local data", "user_id", s.Session.UserID, "duration_ms", time.Since(started).Milliseconds())
		return PullResult{Seeded: true}, nil
	}

	report, err := service.ReplaceSnapshot(s.DB, remote, now)
	if err != nil {
		return PullResult{}, fmt.Errorf("apply remote snapshot: %w", err)
	}
	if err := service.SetConfigTime(s.DB, service.ConfigLastPullAt, now); err != nil {
		return PullResult{}, err
	}
	s.log().Info("pulled remote snapshot",
		"user_id", s.Session.UserID,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	for _, w := range report.Warnings {
		s.log().Warn("remote snapshot warning", "warning", w)
	}
	return PullResult{Report: report}, nil
}

// Push uploads the full local snapshot. The remote row is overwritten.
func (s *Syncer) Push(ctx context.Context) error {
	if err := s.requireRemote(); err != nil {
		return err
	}
	return s.push(ctx, s.now())
}

func (s *Syncer) push(ctx context.Context, now time.Time) error {
	started := time.Now()
	snap, err := service.LoadSnapshot(s.DB)
	if err != nil {
		return err
	}
	if err := s.Store.Save(ctx, s.Session.UserID, snap); err != nil {
		return fmt.Errorf("save remote snapshot: %w", err)
	}
	if err := service.SetConfigTime(s.DB, service.ConfigLastPushAt, now); err != nil {
		return err
	}
	s.log().Info("pushed local snapshot",
		"user_id", s.Session.UserID,
		"events", snap.EventCount(),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

// PushIfRemote is the write hook used after local changes. It is a no-op
// without a session.
func (s *Syncer) PushIfRemote(ctx context.Context) error {
	if s.Mode() != ModeRemote {
		return nil
	}
	return s.Push(ctx)
}

func (s *Syncer) Status() (Status, error) {
	st := Status{Mode: s.Mode(), UserID: s.Session.UserID}
	var err error
	if st.LastPullAt, err = service.ConfigTime(s.DB, service.ConfigLastPullAt); err != nil {
		return st, err
	}
	if st.LastPushAt, err = service.ConfigTime(s.DB, service.ConfigLastPushAt); err != nil {
		return st, err
	}
	if st.DataUpdatedAt, err = service.ConfigTime(s.DB, service.ConfigDataUpdatedAt); err != nil {
		return st, err
	}
	lastSync := st.LastPushAt
	if st.LastPullAt.After(lastSync) {
		lastSync = st.LastPullAt
	}
	st.Pending = st.DataUpdatedAt.After(lastSync)
	return st, nil
}
