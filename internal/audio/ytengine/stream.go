package ytengine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

// openStream produces a raw PCM stream (s16le, 48kHz, stereo) for the track
// URL, starting at the given offset. yt-dlp extracts the media link first;
// the youtube library is the fallback when yt-dlp is missing or fails.
func openStream(trackURL string, startAt time.Duration) (io.ReadCloser, func(), error) {
	r, cleanup, err := ytdlpStream(trackURL, startAt)
	if err == nil {
		return r, cleanup, nil
	}
	ytdlpErr := err

	r, cleanup, err = libStream(trackURL, startAt)
	if err == nil {
		return r, cleanup, nil
	}
	return nil, nil, fmt.Errorf("all extractors failed: yt-dlp: %v; youtube lib: %v", ytdlpErr, err)
}

func ytdlpStream(trackURL string, startAt time.Duration) (io.ReadCloser, func(), error) {
	out, err := exec.Command("yt-dlp", "-j", "-f", "bestaudio", trackURL).Output()
	if err != nil {
		return nil, nil, fmt.Errorf("yt-dlp get-url error: %w", err)
	}

	type format struct {
		URL string `json:"url"`
	}
	var info struct {
		URL     string   `json:"url"`
		Formats []format `json:"formats"`
	}
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, nil, fmt.Errorf("yt-dlp json unmarshal error: %w", err)
	}

	link := strings.TrimSpace(info.URL)
	if link == "" && len(info.Formats) > 0 {
		link = strings.TrimSpace(info.Formats[0].URL)
	}
	if link == "" {
		return nil, nil, errors.New("empty URL returned from yt-dlp")
	}

	return ffmpegPCM(link, startAt)
}

func libStream(trackURL string, startAt time.Duration) (io.ReadCloser, func(), error) {
	videoID, err := youtube.ExtractVideoID(trackURL)
	if err != nil {
		return nil, nil, err
	}

	client := &youtube.Client{}
	video, err := client.GetVideo(videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("youtube client error: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("no audio formats found for video")
	}

	link, err := client.GetStreamURL(video, &formats[0])
	if err != nil {
		return nil, nil, fmt.Errorf("get stream URL error: %w", err)
	}

	return ffmpegPCM(link, startAt)
}

// ffmpegPCM decodes the media link into the raw frame format the opus
// encoder expects.
func ffmpegPCM(link string, startAt time.Duration) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg",
		"-ss", fmt.Sprintf("%.3f", startAt.Seconds()),
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", link,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		_ = cmd.Process.Kill()
		go cmd.Wait()
	}
	return reader, cleanup, nil
}
