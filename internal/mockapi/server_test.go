package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upsertBody(id string) *bytes.Reader {
	payload, _ := json.Marshal(map[string]any{"external_id": id, "name": "Item", "value": 1})
	return bytes.NewReader(payload)
}

func TestSourcePageFailsOncePerReset(t *testing.T) {
	api := New(Config{SeedCount: 25, FailPage: 2})
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	pageURL := fmt.Sprintf("%s/source/items?page=2&limit=10", ts.URL)

	resp, err := http.Get(pageURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = http.Get(pageURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "failure fires only once")

	// reset re-arms the scripted failure
	resp, err = http.Post(ts.URL+"/admin/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(pageURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSinkRateLimitsEveryNthWrite(t *testing.T) {
	api := New(Config{SeedCount: 1, RateLimitEvery: 3, RetryAfter: "7"})
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	for i := 1; i <= 6; i++ {
		resp, err := http.Post(ts.URL+"/sink/items", "application/json", upsertBody("item-1"))
		require.NoError(t, err)
		resp.Body.Close()

		if i%3 == 0 {
			assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "write %d", i)
			assert.Equal(t, "7", resp.Header.Get("Retry-After"), "write %d", i)
		} else {
			assert.Equal(t, http.StatusOK, resp.StatusCode, "write %d", i)
		}
	}
}

func TestSinkUpsertDistinguishesCreateFromUpdate(t *testing.T) {
	api := New(Config{SeedCount: 1})
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	var result struct {
		Status string `json:"status"`
	}

	resp, err := http.Post(ts.URL+"/sink/items", "application/json", upsertBody("item-1"))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.Equal(t, "created", result.Status)

	resp, err = http.Post(ts.URL+"/sink/items", "application/json", upsertBody("item-1"))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.Equal(t, "updated", result.Status)

	assert.Equal(t, 1, api.SinkCount())
}

func TestSinkListSortedWithCount(t *testing.T) {
	api := New(Config{SeedCount: 1})
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	for _, id := range []string{"item-b", "item-a", "item-c"} {
		resp, err := http.Post(ts.URL+"/sink/items", "application/json", upsertBody(id))
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/sink/items")
	require.NoError(t, err)
	defer resp.Body.Close()

	var listing struct {
		Count int `json:"count"`
		Items []struct {
			ExternalID string `json:"external_id"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))

	assert.Equal(t, 3, listing.Count)
	require.Len(t, listing.Items, 3)
	assert.Equal(t, "item-a", listing.Items[0].ExternalID)
	assert.Equal(t, "item-c", listing.Items[2].ExternalID)
}

func TestResetClearsSink(t *testing.T) {
	api := New(Config{SeedCount: 1})
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sink/items", "application/json", upsertBody("item-1"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 1, api.SinkCount())

	resp, err = http.Post(ts.URL+"/admin/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 0, api.SinkCount())
}
