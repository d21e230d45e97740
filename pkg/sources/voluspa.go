package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kerbaras/companion/pkg/manifest"
	"github.com/kerbaras/companion/pkg/utils"
)

// DefaultVoluspaURL is the statistics and settings service host.
const DefaultVoluspaURL = "https://voluspa.braytech.org"

// MembershipSettings is one membership's stored settings. Settings is a JSON
// document encoded as a string.
type MembershipSettings struct {
	MembershipID string    `json:"membershipId"`
	Settings     string    `json:"settings"`
	Updated      time.Time `json:"updated"`
}

// MemberSettings lists stored settings for every membership of an account.
type MemberSettings struct {
	Memberships []MembershipSettings `json:"memberships"`
}

// Find returns the settings stored for membershipID.
func (s MemberSettings) Find(membershipID string) (MembershipSettings, bool) {
	for _, m := range s.Memberships {
		if m.MembershipID == membershipID {
			return m, true
		}
	}
	return MembershipSettings{}, false
}

// MemberSettingsUpdate is the body of a settings upload.
type MemberSettingsUpdate struct {
	BnetMembershipID string         `json:"bnetMembershipId"`
	MembershipID     string         `json:"membershipId"`
	Settings         map[string]any `json:"settings"`
}

// MemberSettingsUpdated acknowledges an upload.
type MemberSettingsUpdated struct {
	Updated time.Time `json:"updated"`
}

// Voluspa is a client for the statistics and settings-sync service.
type Voluspa struct {
	api *utils.API
}

func NewVoluspa(baseURL string, timeout time.Duration) *Voluspa {
	if baseURL == "" {
		baseURL = DefaultVoluspaURL
	}
	return &Voluspa{api: utils.NewAPI(baseURL, utils.WithTimeout(timeout))}
}

// GetStatistics fetches usage statistics.
func (v *Voluspa) GetStatistics(ctx context.Context) (manifest.Statistics, error) {
	var env Envelope[manifest.Statistics]
	if err := getEnvelope(ctx, v.api, "/statistics", nil, &env); err != nil {
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	if err := env.Err(); err != nil {
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	return env.Response, nil
}

// GetMemberSettings fetches settings stored for an account.
func (v *Voluspa) GetMemberSettings(ctx context.Context, bnetMembershipID string) (*Envelope[MemberSettings], error) {
	params := url.Values{}
	params.Set("bnetMembershipId", bnetMembershipID)
	var env Envelope[MemberSettings]
	if err := getEnvelope(ctx, v.api, "/member-settings", params, &env); err != nil {
		return nil, fmt.Errorf("get member settings: %w", err)
	}
	return &env, nil
}

// PostMemberSettings uploads settings for one membership.
func (v *Voluspa) PostMemberSettings(ctx context.Context, update MemberSettingsUpdate) (*Envelope[MemberSettingsUpdated], error) {
	var env Envelope[MemberSettingsUpdated]
	if err := postEnvelope(ctx, v.api, "/member-settings", update, &env); err != nil {
		return nil, fmt.Errorf("post member settings: %w", err)
	}
	return &env, nil
}
