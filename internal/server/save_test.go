package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashpilot/s3-universal-backend/internal/auth"
	"github.com/dashpilot/s3-universal-backend/internal/models"
)

func pngDataURL(t *testing.T, payload []byte) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
}

func saveRequest(t *testing.T, h *Handler, body string, authed bool) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/save", strings.NewReader(body))
	if authed {
		token, err := h.Codec.Issue("alice")
		require.NoError(t, err)
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	return r
}

func TestSaveUnauthenticated(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(nil)
	w := doRequest(h, saveRequest(t, h, `{"data":{"v":1}}`, false))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, store.puts, "no storage write on unauthenticated save")
}

func TestSaveNothingToSave(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(nil)
	w := doRequest(h, saveRequest(t, h, `{}`, true))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.puts)
}

func TestSaveMethodNotAllowed(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(nil)
	w := doRequest(h, httptest.NewRequest(http.MethodGet, "/api/save", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSaveJSONDocument(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(nil)
	w := doRequest(h, saveRequest(t, h, `{"data":{"title":"notes"}}`, true))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Results.JSON)
	assert.Equal(t, "alice/data.json", resp.Results.JSON.Key)
	assert.False(t, resp.Results.JSON.BackedUp)

	assert.JSONEq(t, `{"title":"notes"}`, string(store.objects["alice/data.json"]))
	assert.Equal(t, "application/json", store.types["alice/data.json"])
}

func TestSaveJSONSecondSaveBacksUp(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(nil)
	w := doRequest(h, saveRequest(t, h, `{"data":{"v":1}}`, true))
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(h, saveRequest(t, h, `{"data":{"v":2}}`, true))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Results.JSON)
	assert.True(t, resp.Results.JSON.BackedUp)

	var backups []string
	for key := range store.objects {
		if strings.HasPrefix(key, "alice/data.json.backup.") {
			backups = append(backups, key)
		}
	}
	require.Len(t, backups, 1)
	assert.JSONEq(t, `{"v":1}`, string(store.objects[backups[0]]))
}

func TestSaveImageWithFilename(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(nil)
	payload := []byte("fake image bytes")
	body := fmt.Sprintf(`{"image":%q,"filename":"photo.jpg"}`, pngDataURL(t, payload))
	w := doRequest(h, saveRequest(t, h, body, true))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Results.Image)
	assert.Equal(t, "alice/img/photo.jpg", resp.Results.Image.Key)
	// Explicit filename extension wins over the data URL tag.
	assert.Equal(t, "image/jpeg", resp.Results.Image.ContentType)
	assert.Empty(t, resp.Results.Image.URL)

	assert.Equal(t, payload, store.objects["alice/img/photo.jpg"])
	assert.Equal(t, "image/jpeg", store.types["alice/img/photo.jpg"])
}

func TestSaveImageGeneratesFilename(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(nil)
	body := fmt.Sprintf(`{"image":%q}`, pngDataURL(t, []byte("img")))
	w := doRequest(h, saveRequest(t, h, body, true))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Results.Image)

	assert.True(t, strings.HasPrefix(resp.Results.Image.Key, "alice/img/"))
	assert.True(t, strings.HasSuffix(resp.Results.Image.Filename, ".png"))
	assert.GreaterOrEqual(t, len(strings.TrimSuffix(resp.Results.Image.Filename, ".png")), 20)
	assert.Equal(t, "image/png", resp.Results.Image.ContentType)
}

func TestSaveImageRequireFilename(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RequireFilename = true
	h, store := newTestHandler(cfg)
	body := fmt.Sprintf(`{"image":%q}`, pngDataURL(t, []byte("img")))
	w := doRequest(h, saveRequest(t, h, body, true))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.puts)
}

func TestSaveImageInvalidDataURL(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(nil)
	for _, image := range []string{
		"http://example.com/pic.png",
		"data:image/png;base64,!!!not-base64!!!",
		"data:image/png,unencoded",
	} {
		body := fmt.Sprintf(`{"image":%q}`, image)
		w := doRequest(h, saveRequest(t, h, body, true))
		assert.Equal(t, http.StatusBadRequest, w.Code, "image %q", image)
	}
	assert.Zero(t, store.puts)
}

func TestSaveImagePublicURL(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.LiveURL = "https://files.example.com"
	h, _ := newTestHandler(cfg)
	body := fmt.Sprintf(`{"image":%q,"filename":"pic.png"}`, pngDataURL(t, []byte("img")))
	w := doRequest(h, saveRequest(t, h, body, true))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Results.Image)
	assert.Equal(t, "https://files.example.com/alice/img/pic.png", resp.Results.Image.URL)
}

func TestSaveStorageFailurePassesThrough(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(nil)
	store.putErr = errors.New("quota exceeded")
	w := doRequest(h, saveRequest(t, h, `{"data":{"v":1}}`, true))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp models.SaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "quota exceeded")
}

func TestSaveDataAndImageTogether(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(nil)
	body := fmt.Sprintf(`{"data":{"v":1},"image":%q,"filename":"pic.png"}`, pngDataURL(t, []byte("img")))
	w := doRequest(h, saveRequest(t, h, body, true))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Results.JSON)
	require.NotNil(t, resp.Results.Image)

	_, hasData := store.objects["alice/data.json"]
	_, hasImage := store.objects["alice/img/pic.png"]
	assert.True(t, hasData)
	assert.True(t, hasImage)
}
