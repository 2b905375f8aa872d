// Package youtube polls the YouTube Data API for new uploads of followed
// channels.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/elisa-renault/Galactia/internal/metrics"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// ChannelMeta identifies a channel and its uploads playlist.
type ChannelMeta struct {
	ChannelID         string
	Title             string
	Handle            string
	UploadsPlaylistID string
	ThumbURL          string
}

// Video is an upload reduced to what the notifier needs.
type Video struct {
	VideoID     string
	Title       string
	Description string
	PublishedAt time.Time
	ThumbURL    string
	URL         string
}

// Client calls the YouTube Data API v3. Requests share a rate limiter so
// one busy poll cycle cannot burn the daily quota.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			CustomURL  string `json:"customUrl"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			ResourceID  struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
			Thumbnails struct {
				Maxres struct {
					URL string `json:"url"`
				} `json:"maxres"`
				High struct {
					URL string `json:"url"`
				} `json:"high"`
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID          string `json:"videoId"`
			VideoPublishedAt string `json:"videoPublishedAt"`
		} `json:"contentDetails"`
	} `json:"items"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ExternalAPIErrors.WithLabelValues("youtube").Inc()
		return fmt.Errorf("youtube request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ExternalAPIErrors.WithLabelValues("youtube").Inc()
		return fmt.Errorf("youtube API status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode youtube response: %w", err)
	}
	return nil
}

// ResolveChannel resolves a handle or channel URL ("@LimitMaximum",
// "https://youtube.com/@LimitMaximum", "https://youtube.com/channel/UC...")
// to channel metadata. Returns nil when the channel does not exist.
func (c *Client) ResolveChannel(ctx context.Context, handleOrURL string) (*ChannelMeta, error) {
	handle, channelID := parseChannelRef(handleOrURL)

	params := url.Values{}
	switch {
	case handle != "":
		params.Set("part", "id,snippet,contentDetails")
		params.Set("forHandle", "@"+handle)
	case channelID != "":
		params.Set("part", "snippet,contentDetails")
		params.Set("id", channelID)
	default:
		return nil, fmt.Errorf("unrecognized channel reference: %q", handleOrURL)
	}

	var resp channelsResponse
	if err := c.get(ctx, "/channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	it := resp.Items[0]
	meta := &ChannelMeta{
		ChannelID:         it.ID,
		Title:             firstNonEmpty(it.Snippet.Title, it.ID),
		UploadsPlaylistID: it.ContentDetails.RelatedPlaylists.Uploads,
		ThumbURL:          it.Snippet.Thumbnails.Default.URL,
	}
	if handle != "" {
		meta.Handle = "@" + handle
	} else if strings.HasPrefix(it.Snippet.CustomURL, "@") {
		meta.Handle = it.Snippet.CustomURL
	}
	return meta, nil
}

// LatestUploads returns the newest videos of an uploads playlist, capped
// at 5 per the poll's needs.
func (c *Client) LatestUploads(ctx context.Context, uploadsPlaylistID string, first int) ([]Video, error) {
	if uploadsPlaylistID == "" {
		return nil, nil
	}
	if first < 1 {
		first = 1
	}
	if first > 5 {
		first = 5
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("playlistId", uploadsPlaylistID)
	params.Set("maxResults", strconv.Itoa(first))

	var resp playlistItemsResponse
	if err := c.get(ctx, "/playlistItems", params, &resp); err != nil {
		return nil, err
	}

	var out []Video
	for _, it := range resp.Items {
		videoID := firstNonEmpty(it.ContentDetails.VideoID, it.Snippet.ResourceID.VideoID)
		if videoID == "" {
			continue
		}

		publishedRaw := firstNonEmpty(it.ContentDetails.VideoPublishedAt, it.Snippet.PublishedAt)
		published, _ := time.Parse(time.RFC3339, publishedRaw)

		out = append(out, Video{
			VideoID:     videoID,
			Title:       firstNonEmpty(it.Snippet.Title, "(no title)"),
			Description: it.Snippet.Description,
			PublishedAt: published,
			ThumbURL: firstNonEmpty(
				it.Snippet.Thumbnails.Maxres.URL,
				it.Snippet.Thumbnails.High.URL,
				it.Snippet.Thumbnails.Default.URL,
			),
			URL: "https://www.youtube.com/watch?v=" + videoID,
		})
	}
	return out, nil
}

// parseChannelRef extracts a handle or a channel id from the supported
// reference forms.
func parseChannelRef(s string) (handle, channelID string) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") {
		return s[1:], ""
	}

	u, err := url.Parse(s)
	if err != nil || !strings.Contains(u.Host, "youtube.com") {
		return "", ""
	}

	path := strings.Trim(u.Path, "/")
	switch {
	case strings.HasPrefix(path, "@"):
		return path[1:], ""
	case strings.HasPrefix(path, "channel/"):
		return "", strings.SplitN(path, "/", 2)[1]
	case strings.HasPrefix(path, "c/"), strings.HasPrefix(path, "user/"):
		// Legacy custom URLs resolve through forHandle.
		parts := strings.SplitN(path, "/", 2)
		if len(parts) == 2 {
			return parts[1], ""
		}
		return parts[0], ""
	}
	return "", ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
