package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVoluspaServer(t *testing.T, handler http.HandlerFunc) *Voluspa {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewVoluspa(server.URL, 5*time.Second)
}

func TestVoluspa_GetStatistics(t *testing.T) {
	v := newVoluspaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statistics", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"ErrorCode": 1,
			"Response":  map[string]any{"scrapes": map[string]any{"last": "2020-06-01"}},
		})
	})

	stats, err := v.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stats, "scrapes")
}

func TestVoluspa_GetStatisticsFailure(t *testing.T) {
	v := newVoluspaServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ErrorCode": 2, "ErrorStatus": "Error"})
	})

	_, err := v.GetStatistics(context.Background())
	assert.Error(t, err)
}

func TestVoluspa_GetMemberSettings(t *testing.T) {
	updated := time.Date(2020, 7, 1, 12, 0, 0, 0, time.UTC)
	v := newVoluspaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1234", r.URL.Query().Get("bnetMembershipId"))
		writeJSON(w, http.StatusOK, map[string]any{
			"ErrorCode": 1,
			"Response": map[string]any{
				"memberships": []map[string]any{
					{"membershipId": "4611", "settings": `{"theme":"dark"}`, "updated": updated},
				},
			},
		})
	})

	env, err := v.GetMemberSettings(context.Background(), "1234")
	require.NoError(t, err)
	require.True(t, env.OK())

	m, ok := env.Response.Find("4611")
	require.True(t, ok)
	assert.Equal(t, `{"theme":"dark"}`, m.Settings)
	assert.True(t, m.Updated.Equal(updated))

	_, ok = env.Response.Find("nope")
	assert.False(t, ok)
}

func TestVoluspa_PostMemberSettings(t *testing.T) {
	updated := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	v := newVoluspaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body MemberSettingsUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "4611", body.MembershipID)
		assert.Equal(t, "dark", body.Settings["theme"])

		writeJSON(w, http.StatusOK, map[string]any{
			"ErrorCode": 1,
			"Response":  map[string]any{"updated": updated},
		})
	})

	env, err := v.PostMemberSettings(context.Background(), MemberSettingsUpdate{
		BnetMembershipID: "1234",
		MembershipID:     "4611",
		Settings:         map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.True(t, env.OK())
	assert.True(t, env.Response.Updated.Equal(updated))
}
