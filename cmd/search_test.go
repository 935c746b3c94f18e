package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/kedare/reeltrend/internal/output"
	"github.com/kedare/reeltrend/internal/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batmanResults = `{
  "page": 1,
  "results": [
    {"id": 268, "title": "Batman", "poster_path": "/a.jpg", "release_date": "1989-06-21"},
    {"id": 364, "title": "Batman Returns", "poster_path": "/b.jpg", "release_date": "1992-06-19"}
  ],
  "total_pages": 1,
  "total_results": 2
}`

// stubTMDB configures a TMDB key and answers movie searches from responder.
func stubTMDB(t *testing.T, responder httpmock.Responder) {
	t.Helper()

	t.Setenv("REELTREND_TMDB_API_KEY", "token-123")

	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("GET", tmdb.DefaultBaseURL+"/search/movie", responder)
}

func trending(t *testing.T) output.TrendingResult {
	t.Helper()

	resetFlags(t)

	out, err := run(t, "trending", "--output", "json")
	require.NoError(t, err)

	var result output.TrendingResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	return result
}

func TestSearchWithoutAnalyticsSettings(t *testing.T) {
	sqliteEnv(t)
	t.Setenv("REELTREND_BACKEND", "appwrite")
	for _, name := range []string{
		"REELTREND_APPWRITE_PROJECT_ID", "REELTREND_APPWRITE_DATABASE_ID", "REELTREND_APPWRITE_TABLE_ID",
		"EXPO_PUBLIC_APPWRITE_PROJECT_ID", "EXPO_PUBLIC_APPWRITE_DATABASE_ID", "EXPO_PUBLIC_APPWRITE_TABLE_ID",
	} {
		t.Setenv(name, "")
	}

	stubTMDB(t, httpmock.NewStringResponder(http.StatusOK, batmanResults))

	out, err := run(t, "search", "batman", "--output", "json")
	require.NoError(t, err)

	var page tmdb.Page
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Batman", page.Results[0].Title)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())

	resetFlags(t)
	_, err = run(t, "search", "batman", "--record")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appwrite.project_id")
	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "recording needs the table before TMDB is queried")
}

func TestSearchRecordsTopResult(t *testing.T) {
	sqliteEnv(t)
	stubTMDB(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer token-123", req.Header.Get("Authorization"))
		assert.Equal(t, "batman", req.URL.Query().Get("query"))

		return httpmock.NewStringResponse(http.StatusOK, batmanResults), nil
	})

	_, err := run(t, "search", "batman", "--record", "--output", "json")
	require.NoError(t, err)

	result := trending(t)
	assert.True(t, result.Available)
	require.Len(t, result.Searches, 1)
	assert.Equal(t, "batman", result.Searches[0].SearchTerm)
	assert.Equal(t, "268", result.Searches[0].MovieID)
	assert.Equal(t, "Batman", result.Searches[0].Title)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/a.jpg", result.Searches[0].PosterURL)
	assert.Equal(t, int64(1), result.Searches[0].Count)
}

func TestRecordLooksUpMovie(t *testing.T) {
	sqliteEnv(t)
	stubTMDB(t, httpmock.NewStringResponder(http.StatusOK, batmanResults))

	for range 2 {
		resetFlags(t)
		_, err := run(t, "record", "batman")
		require.NoError(t, err)
	}

	result := trending(t)
	require.Len(t, result.Searches, 1)
	assert.Equal(t, "268", result.Searches[0].MovieID)
	assert.Equal(t, "Batman", result.Searches[0].Title)
	assert.Equal(t, int64(2), result.Searches[0].Count)
}

func TestRecordLookupWithoutResults(t *testing.T) {
	sqliteEnv(t)
	stubTMDB(t, httpmock.NewStringResponder(http.StatusOK, `{"page":1,"results":[],"total_pages":0,"total_results":0}`))

	_, err := run(t, "record", "zzzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no movie matches "zzzz"`)

	result := trending(t)
	assert.Empty(t, result.Searches)
}
