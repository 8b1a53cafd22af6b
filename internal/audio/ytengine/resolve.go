package ytengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/kkdai/youtube/v2"

	"tunekeeper/internal/audio"
)

// Resolve turns a query into tracks. URLs are looked up directly, with
// playlist URLs expanded; anything else goes through a YouTube search for
// its first match.
func (e *Engine) Resolve(ctx context.Context, q audio.Query) (*audio.ResolveResult, error) {
	query := strings.TrimSpace(q.Query)
	if query == "" {
		return &audio.ResolveResult{LoadType: audio.LoadTypeEmpty}, nil
	}

	if isURL(query) {
		if !isYouTubeURL(query) {
			// Only YouTube is supported; other links yield no results rather
			// than an error.
			return &audio.ResolveResult{LoadType: audio.LoadTypeEmpty}, nil
		}
		if isPlaylistURL(query) {
			return e.resolvePlaylist(ctx, query)
		}
		return e.resolveVideo(ctx, query, audio.LoadTypeTrack)
	}

	videoURL, err := e.search.FirstVideoURL(ctx, query)
	if err != nil {
		if err == errNoVideoMatch {
			return &audio.ResolveResult{LoadType: audio.LoadTypeEmpty}, nil
		}
		return nil, fmt.Errorf("youtube search: %w", err)
	}
	return e.resolveVideo(ctx, videoURL, audio.LoadTypeSearch)
}

// Search returns metadata for up to limit search results. Videos whose
// lookup fails are skipped rather than failing the whole search.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]audio.TrackInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	// Over-fetch a little so failed lookups do not shrink the result set.
	urls, err := e.search.VideoURLs(ctx, query, limit+5)
	if err != nil {
		if err == errNoVideoMatch {
			return nil, nil
		}
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	tracks := make([]audio.TrackInfo, 0, limit)
	for _, videoURL := range urls {
		video, err := e.yt.GetVideoContext(ctx, videoURL)
		if err != nil {
			e.log.Debug().Err(err).Str("url", videoURL).Msg("video lookup failed")
			continue
		}
		tracks = append(tracks, trackFromVideo(video))
		if len(tracks) >= limit {
			break
		}
	}
	return tracks, nil
}

func (e *Engine) resolveVideo(ctx context.Context, videoURL string, loadType audio.LoadType) (*audio.ResolveResult, error) {
	video, err := e.yt.GetVideoContext(ctx, videoURL)
	if err != nil {
		e.log.Debug().Err(err).Str("url", videoURL).Msg("video lookup failed")
		return &audio.ResolveResult{LoadType: audio.LoadTypeEmpty}, nil
	}
	return &audio.ResolveResult{
		LoadType: loadType,
		Tracks:   []audio.TrackInfo{trackFromVideo(video)},
	}, nil
}

func (e *Engine) resolvePlaylist(ctx context.Context, playlistURL string) (*audio.ResolveResult, error) {
	playlist, err := e.yt.GetPlaylistContext(ctx, playlistURL)
	if err != nil {
		// Mix playlists are not served by the playlist API; fall back to the
		// single video the URL points at.
		e.log.Debug().Err(err).Str("url", playlistURL).Msg("playlist lookup failed, trying as video")
		return e.resolveVideo(ctx, playlistURL, audio.LoadTypeTrack)
	}

	tracks := make([]audio.TrackInfo, 0, len(playlist.Videos))
	for _, entry := range playlist.Videos {
		tracks = append(tracks, audio.TrackInfo{
			Title:    entry.Title,
			Author:   entry.Author,
			URI:      watchURL(entry.ID),
			Duration: entry.Duration,
			IsLive:   entry.Duration == 0,
			Source:   "youtube",
		})
	}
	if len(tracks) == 0 {
		return &audio.ResolveResult{LoadType: audio.LoadTypeEmpty}, nil
	}

	return &audio.ResolveResult{
		LoadType: audio.LoadTypePlaylist,
		Tracks:   tracks,
		Playlist: &audio.PlaylistInfo{Name: playlist.Title},
	}, nil
}

func trackFromVideo(video *youtube.Video) audio.TrackInfo {
	thumbnail := ""
	if len(video.Thumbnails) > 0 {
		thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}
	return audio.TrackInfo{
		Title:     video.Title,
		Author:    video.Author,
		URI:       watchURL(video.ID),
		Duration:  video.Duration,
		IsLive:    video.Duration == 0,
		Thumbnail: thumbnail,
		Source:    "youtube",
	}
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isYouTubeURL(s string) bool {
	return strings.Contains(s, "youtube.com/") ||
		strings.Contains(s, "youtu.be/") ||
		strings.Contains(s, "music.youtube.com/")
}

func isPlaylistURL(s string) bool {
	return strings.Contains(s, "list=")
}
