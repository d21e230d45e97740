package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kerbaras/companion/pkg/data"
	"github.com/kerbaras/companion/pkg/sources"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNoMembership    = errors.New("no membership configured")
	ErrNoLocalSettings = errors.New("no local settings")
)

// SettingsAPI is the remote settings service.
type SettingsAPI interface {
	GetMemberSettings(ctx context.Context, bnetMembershipID string) (*sources.Envelope[sources.MemberSettings], error)
	PostMemberSettings(ctx context.Context, update sources.MemberSettingsUpdate) (*sources.Envelope[sources.MemberSettingsUpdated], error)
}

// SettingsStore is the local settings cache.
type SettingsStore interface {
	GetSettings(membershipID string) (*data.Settings, error)
	SaveSettings(settings *data.Settings) error
	GetSyncState() (data.SyncState, error)
	SaveSyncState(state data.SyncState) error
}

// Outcome reports what a sync call did.
type Outcome string

const (
	OutcomeDownloaded   Outcome = "downloaded"
	OutcomeUploaded     Outcome = "uploaded"
	OutcomeCurrent      Outcome = "current"
	OutcomeNoMembership Outcome = "no-membership"
	OutcomeReset        Outcome = "reset"
	OutcomeLocalOnly    Outcome = "local-only"
)

// SettingsSync reconciles local settings with the remote settings service.
// Whichever side was updated last wins.
type SettingsSync struct {
	api          SettingsAPI
	store        SettingsStore
	bnetID       string
	membershipID string
	logger       *zap.Logger
	group        singleflight.Group
	now          func() time.Time
}

func NewSettingsSync(api SettingsAPI, store SettingsStore, bnetID, membershipID string, logger *zap.Logger) *SettingsSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsSync{
		api:          api,
		store:        store,
		bnetID:       bnetID,
		membershipID: membershipID,
		logger:       logger,
		now:          time.Now,
	}
}

// Pull adopts the remote settings when they are newer than the last sync.
func (s *SettingsSync) Pull(ctx context.Context) (Outcome, error) {
	return s.do("pull", func() (Outcome, error) { return s.pull(ctx) })
}

// Push uploads the local settings.
func (s *SettingsSync) Push(ctx context.Context) (Outcome, error) {
	return s.do("push", func() (Outcome, error) { return s.push(ctx) })
}

// Sync pushes when local settings changed since the last sync and pulls
// otherwise. With sync disabled nothing leaves the machine.
func (s *SettingsSync) Sync(ctx context.Context) (Outcome, error) {
	return s.do("sync", func() (Outcome, error) {
		state, err := s.store.GetSyncState()
		if err != nil {
			return "", err
		}
		if !state.Enabled {
			return OutcomeLocalOnly, nil
		}

		local, err := s.store.GetSettings(s.membershipID)
		if err != nil {
			return "", err
		}
		if local != nil && local.Updated.After(state.Updated) {
			return s.push(ctx)
		}
		return s.pull(ctx)
	})
}

// Update stores values locally and then syncs them.
func (s *SettingsSync) Update(ctx context.Context, values map[string]any) (Outcome, error) {
	if s.membershipID == "" {
		return "", ErrNoMembership
	}
	err := s.store.SaveSettings(&data.Settings{
		MembershipID: s.membershipID,
		Values:       values,
		Updated:      s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return s.Sync(ctx)
}

// SetEnabled switches remote sync on or off.
func (s *SettingsSync) SetEnabled(enabled bool) error {
	state, err := s.store.GetSyncState()
	if err != nil {
		return err
	}
	state.Enabled = enabled
	return s.store.SaveSyncState(state)
}

func (s *SettingsSync) do(key string, fn func() (Outcome, error)) (Outcome, error) {
	v, err, shared := s.group.Do(key, func() (any, error) {
		return fn()
	})
	if shared {
		s.logger.Debug("joined in-flight settings call", zap.String("op", key))
	}
	if err != nil {
		return "", err
	}
	return v.(Outcome), nil
}

func (s *SettingsSync) pull(ctx context.Context) (Outcome, error) {
	if s.bnetID == "" || s.membershipID == "" {
		return "", ErrNoMembership
	}

	env, err := s.api.GetMemberSettings(ctx, s.bnetID)
	if err != nil {
		return "", fmt.Errorf("pull settings: %w", err)
	}

	state, err := s.store.GetSyncState()
	if err != nil {
		return "", err
	}

	if env.ErrorCode == sources.ErrorCodeNotFound {
		state.Updated = data.DefaultSyncUpdated
		if err := s.store.SaveSyncState(state); err != nil {
			return "", err
		}
		s.logger.Info("remote settings missing, sync state reset")
		return OutcomeReset, nil
	}
	if err := env.Err(); err != nil {
		return "", fmt.Errorf("pull settings: %w", err)
	}

	remote, ok := env.Response.Find(s.membershipID)
	if !ok {
		return OutcomeNoMembership, nil
	}
	if !remote.Updated.After(state.Updated) {
		return OutcomeCurrent, nil
	}

	values := map[string]any{}
	if remote.Settings != "" {
		if err := json.Unmarshal([]byte(remote.Settings), &values); err != nil {
			return "", fmt.Errorf("decode remote settings: %w", err)
		}
	}

	err = s.store.SaveSettings(&data.Settings{
		MembershipID: s.membershipID,
		Values:       values,
		Updated:      remote.Updated.UTC(),
	})
	if err != nil {
		return "", err
	}

	state.Updated = remote.Updated.UTC()
	if err := s.store.SaveSyncState(state); err != nil {
		return "", err
	}

	s.logger.Info("adopted remote settings", zap.Time("updated", remote.Updated))
	return OutcomeDownloaded, nil
}

func (s *SettingsSync) push(ctx context.Context) (Outcome, error) {
	if s.bnetID == "" || s.membershipID == "" {
		return "", ErrNoMembership
	}

	local, err := s.store.GetSettings(s.membershipID)
	if err != nil {
		return "", err
	}
	if local == nil {
		return "", ErrNoLocalSettings
	}

	env, err := s.api.PostMemberSettings(ctx, sources.MemberSettingsUpdate{
		BnetMembershipID: s.bnetID,
		MembershipID:     s.membershipID,
		Settings:         local.Values,
	})
	if err != nil {
		return "", fmt.Errorf("push settings: %w", err)
	}
	if err := env.Err(); err != nil {
		return "", fmt.Errorf("push settings: %w", err)
	}

	updated := env.Response.Updated.UTC()
	if updated.IsZero() {
		updated = local.Updated
	}

	local.Updated = updated
	if err := s.store.SaveSettings(local); err != nil {
		return "", err
	}

	state, err := s.store.GetSyncState()
	if err != nil {
		return "", err
	}
	state.Updated = updated
	if err := s.store.SaveSyncState(state); err != nil {
		return "", err
	}

	s.logger.Info("uploaded settings", zap.Time("updated", updated))
	return OutcomeUploaded, nil
}
