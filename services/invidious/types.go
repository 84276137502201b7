package invidious

// Thumbnail is an image descriptor as returned in authorThumbnails,
// authorBanners and similar arrays.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// VideoThumbnail is an entry of videoThumbnails.
type VideoThumbnail struct {
	Quality string `json:"quality,omitempty"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// FormatStream describes one muxed audio+video stream. URL is passed
// through to clients untouched.
type FormatStream struct {
	URL          string `json:"url"`
	Itag         string `json:"itag,omitempty"`
	Type         string `json:"type,omitempty"`
	Quality      string `json:"quality,omitempty"`
	Container    string `json:"container,omitempty"`
	Encoding     string `json:"encoding,omitempty"`
	QualityLabel string `json:"qualityLabel,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
	Size         string `json:"size,omitempty"`
}

// Video is the payload of GET /videos/{id}.
type Video struct {
	VideoID          string           `json:"videoId" validate:"required"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Author           string           `json:"author"`
	AuthorID         string           `json:"authorId"`
	AuthorURL        string           `json:"authorUrl,omitempty"`
	ViewCount        int64            `json:"viewCount"`
	LikeCount        int64            `json:"likeCount"`
	LengthSeconds    int64            `json:"lengthSeconds"`
	Published        int64            `json:"published,omitempty"`
	PublishedText    string           `json:"publishedText,omitempty"`
	LiveNow          bool             `json:"liveNow,omitempty"`
	FormatStreams    []FormatStream   `json:"formatStreams"`
	AuthorThumbnails []Thumbnail      `json:"authorThumbnails"`
	VideoThumbnails  []VideoThumbnail `json:"videoThumbnails,omitempty"`
}

// PlayableURL returns the first format stream URL, or "" when the video
// has no muxed streams.
func (v *Video) PlayableURL() string {
	for _, s := range v.FormatStreams {
		if s.URL != "" {
			return s.URL
		}
	}
	return ""
}

// AuthorThumbnail returns the author thumbnail with exactly the given size.
func (v *Video) AuthorThumbnail(width, height int) (Thumbnail, bool) {
	for _, t := range v.AuthorThumbnails {
		if t.Width == width && t.Height == height {
			return t, true
		}
	}
	return Thumbnail{}, false
}

// SearchItem is one element of the GET /search array. Invidious mixes
// videos, channels and playlists in the same array; Type tells them apart.
type SearchItem struct {
	Type            string           `json:"type,omitempty"`
	VideoID         string           `json:"videoId,omitempty"`
	PlaylistID      string           `json:"playlistId,omitempty"`
	Title           string           `json:"title,omitempty"`
	Author          string           `json:"author"`
	AuthorID        string           `json:"authorId,omitempty"`
	ViewCount       int64            `json:"viewCount,omitempty"`
	LengthSeconds   int64            `json:"lengthSeconds,omitempty"`
	Published       int64            `json:"published,omitempty"`
	VideoThumbnails []VideoThumbnail `json:"videoThumbnails,omitempty"`
}

// Thumbnail returns the first video thumbnail URL, or "".
func (s *SearchItem) Thumbnail() string {
	if len(s.VideoThumbnails) == 0 {
		return ""
	}
	return s.VideoThumbnails[0].URL
}

// ChannelVideo is a video entry embedded in a channel payload.
type ChannelVideo struct {
	VideoID         string           `json:"videoId"`
	Title           string           `json:"title"`
	ViewCount       int64            `json:"viewCount"`
	LengthSeconds   int64            `json:"lengthSeconds"`
	Published       int64            `json:"published,omitempty"`
	VideoThumbnails []VideoThumbnail `json:"videoThumbnails,omitempty"`
}

// Channel is the payload of GET /channels/{id}.
type Channel struct {
	Author           string         `json:"author"`
	AuthorID         string         `json:"authorId" validate:"required"`
	AuthorURL        string         `json:"authorUrl,omitempty"`
	Description      string         `json:"description"`
	SubCount         int64          `json:"subCount"`
	TotalViews       int64          `json:"totalViews"`
	AuthorThumbnails []Thumbnail    `json:"authorThumbnails,omitempty"`
	AuthorBanners    []Thumbnail    `json:"authorBanners,omitempty"`
	LatestVideos     []ChannelVideo `json:"latestVideos,omitempty"`
}

// PlaylistVideo is one entry of a playlist.
type PlaylistVideo struct {
	VideoID         string           `json:"videoId"`
	Title           string           `json:"title"`
	Author          string           `json:"author"`
	AuthorID        string           `json:"authorId,omitempty"`
	Index           int              `json:"index"`
	LengthSeconds   int64            `json:"lengthSeconds"`
	VideoThumbnails []VideoThumbnail `json:"videoThumbnails,omitempty"`
}

// Playlist is the payload of GET /playlists/{id}.
type Playlist struct {
	PlaylistID  string          `json:"playlistId" validate:"required"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	AuthorID    string          `json:"authorId,omitempty"`
	Description string          `json:"description"`
	VideoCount  int             `json:"videoCount"`
	ViewCount   int64           `json:"viewCount"`
	Videos      []PlaylistVideo `json:"videos"`
}
