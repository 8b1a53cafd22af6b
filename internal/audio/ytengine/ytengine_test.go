package ytengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLClassification(t *testing.T) {
	assert.True(t, isURL("https://www.youtube.com/watch?v=abc"))
	assert.False(t, isURL("never gonna give you up"))

	assert.True(t, isYouTubeURL("https://youtu.be/dQw4w9WgXcQ"))
	assert.True(t, isYouTubeURL("https://music.youtube.com/watch?v=abc"))
	assert.False(t, isYouTubeURL("https://soundcloud.com/some/track"))

	assert.True(t, isPlaylistURL("https://www.youtube.com/watch?v=a&list=PL123"))
	assert.False(t, isPlaylistURL("https://www.youtube.com/watch?v=a"))
}

func TestSearchResolverFindsFirstVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rick astley", r.URL.Query().Get("search_query"))
		w.Write([]byte(`{"url":"/watch?v=dQw4w9WgXcQ","more":"data"}`))
	}))
	defer srv.Close()

	resolver := &searchResolver{baseURL: srv.URL, client: srv.Client()}
	got, err := resolver.FirstVideoURL(context.Background(), "rick astley")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/watch?v=dQw4w9WgXcQ", got)
}

func TestSearchResolverListsDistinctVideos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Result pages repeat each video id in several renderer blocks.
		w.Write([]byte(`{"url":"/watch?v=aaaaaaaaaaa"}{"url":"/watch?v=aaaaaaaaaaa"}` +
			`{"url":"/watch?v=bbbbbbbbbbb"}{"url":"/watch?v=ccccccccccc"}`))
	}))
	defer srv.Close()

	resolver := &searchResolver{baseURL: srv.URL, client: srv.Client()}
	got, err := resolver.VideoURLs(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, srv.URL+"/watch?v=aaaaaaaaaaa", got[0])
	assert.Equal(t, srv.URL+"/watch?v=bbbbbbbbbbb", got[1])
}

func TestSearchResolverNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>no videos here</html>"))
	}))
	defer srv.Close()

	resolver := &searchResolver{baseURL: srv.URL, client: srv.Client()}
	_, err := resolver.FirstVideoURL(context.Background(), "query")
	assert.ErrorIs(t, err, errNoVideoMatch)
}

func TestSearchResolverBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	resolver := &searchResolver{baseURL: srv.URL, client: srv.Client()}
	_, err := resolver.FirstVideoURL(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSearchResolverHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	resolver := &searchResolver{baseURL: srv.URL, client: srv.Client()}
	_, err := resolver.FirstVideoURL(ctx, "query")
	assert.Error(t, err)
}

func TestClampSample(t *testing.T) {
	assert.Equal(t, int16(100), clampSample(100))
	assert.Equal(t, int16(32767), clampSample(99999))
	assert.Equal(t, int16(-32768), clampSample(-99999))
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", watchURL("abc123"))
}
