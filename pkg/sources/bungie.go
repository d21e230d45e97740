package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kerbaras/companion/pkg/manifest"
	"github.com/kerbaras/companion/pkg/utils"
)

// DefaultBungieURL is the public game API host.
const DefaultBungieURL = "https://www.bungie.net"

// Bungie is a client for the game's REST API.
type Bungie struct {
	api *utils.API
}

// NewBungie creates a client. apiKey is sent as X-API-Key when non-empty.
func NewBungie(baseURL, apiKey string, timeout time.Duration) *Bungie {
	if baseURL == "" {
		baseURL = DefaultBungieURL
	}
	api := utils.NewAPI(baseURL,
		utils.WithHeader("X-API-Key", apiKey),
		utils.WithTimeout(timeout),
	)
	return &Bungie{api: api}
}

// NewBungieWithAPI wraps an existing API client.
func NewBungieWithAPI(api *utils.API) *Bungie {
	return &Bungie{api: api}
}

// GetManifestIndex fetches the manifest descriptor.
func (b *Bungie) GetManifestIndex(ctx context.Context) (*Envelope[manifest.Index], error) {
	var env Envelope[manifest.Index]
	if err := getEnvelope(ctx, b.api, "/Platform/Destiny2/Manifest/", nil, &env); err != nil {
		return nil, fmt.Errorf("get manifest index: %w", err)
	}
	return &env, nil
}

// GetCommonSettings fetches service-wide settings, including which
// subsystems are enabled.
func (b *Bungie) GetCommonSettings(ctx context.Context) (*Envelope[manifest.CommonSettings], error) {
	var env Envelope[manifest.CommonSettings]
	if err := getEnvelope(ctx, b.api, "/Platform/Settings/", nil, &env); err != nil {
		return nil, fmt.Errorf("get common settings: %w", err)
	}
	return &env, nil
}

// DownloadTable downloads one manifest table from a path listed in the
// index.
func (b *Bungie) DownloadTable(ctx context.Context, path string) (manifest.Table, error) {
	if path == "" {
		return nil, fmt.Errorf("download table: empty path")
	}
	var table manifest.Table
	if err := b.api.Get(ctx, path, nil, &table); err != nil {
		return nil, fmt.Errorf("download table %s: %w", path, err)
	}
	if table == nil {
		return nil, fmt.Errorf("download table %s: empty body", path)
	}
	return table, nil
}

// GetHistoricalStatsDefinition fetches the historical stats table, which is
// not part of the downloadable table set.
func (b *Bungie) GetHistoricalStatsDefinition(ctx context.Context, locale string) (*Envelope[manifest.Table], error) {
	params := url.Values{}
	if locale != "" {
		params.Set("lc", locale)
	}
	var env Envelope[manifest.Table]
	if err := getEnvelope(ctx, b.api, "/Platform/Destiny2/Stats/Definition/", params, &env); err != nil {
		return nil, fmt.Errorf("get historical stats definition: %w", err)
	}
	return &env, nil
}

// getEnvelope tolerates non-2xx statuses when the body is a platform
// envelope, since maintenance is reported that way.
func getEnvelope[T any](ctx context.Context, api *utils.API, path string, params url.Values, env *Envelope[T]) error {
	err := api.Get(ctx, path, params, env)
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) && env.ErrorCode != 0 {
		return nil
	}
	return err
}

func postEnvelope[T any](ctx context.Context, api *utils.API, path string, body any, env *Envelope[T]) error {
	err := api.Post(ctx, path, body, env)
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) && env.ErrorCode != 0 {
		return nil
	}
	return err
}
