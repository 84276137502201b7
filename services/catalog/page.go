package catalog

import (
	"net/url"

	"github.com/yuzutube/gateway/services/invidious"
)

// Page is the body served to the presentation layer: the upstream payload
// untouched plus the handful of fields the pages actually show.
type Page struct {
	Kind    invidious.Kind `json:"kind"`
	Payload interface{}    `json:"payload"`
	View    interface{}    `json:"view"`
}

// VideoView is what the watch page shows.
type VideoView struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ChannelLink     string `json:"channel_link,omitempty"`
	AuthorThumbnail string `json:"author_thumbnail,omitempty"`
	PlayableURL     string `json:"playable_url,omitempty"`
	ViewCount       int64  `json:"view_count"`
	LikeCount       int64  `json:"like_count"`
	Description     string `json:"description"`
}

// VideoCard is one tile in a search, channel or playlist listing.
type VideoCard struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	WatchLink string `json:"watch_link"`
}

// SearchView lists video results for a query.
type SearchView struct {
	Query   string      `json:"query"`
	Results []VideoCard `json:"results"`
}

// ChannelView is the channel page.
type ChannelView struct {
	Author      string      `json:"author"`
	Description string      `json:"description"`
	SubCount    int64       `json:"sub_count"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	Videos      []VideoCard `json:"videos"`
}

// PlaylistView is the playlist page.
type PlaylistView struct {
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	ChannelLink string      `json:"channel_link,omitempty"`
	VideoCount  int         `json:"video_count"`
	Videos      []VideoCard `json:"videos"`
}

func buildPage(req invidious.Request, result *invidious.Result) *Page {
	page := &Page{Kind: result.Kind}

	switch result.Kind {
	case invidious.KindVideo:
		page.Payload = result.Video
		page.View = videoView(result.Video)
	case invidious.KindSearch:
		page.Payload = result.Search
		page.View = searchView(req.Query[ParamSearch], result.Search)
	case invidious.KindChannel:
		page.Payload = result.Channel
		page.View = channelView(result.Channel)
	case invidious.KindPlaylist:
		page.Payload = result.Playlist
		page.View = playlistView(result.Playlist)
	}
	return page
}

func videoView(v *invidious.Video) VideoView {
	view := VideoView{
		VideoID:     v.VideoID,
		Title:       v.Title,
		Author:      v.Author,
		ChannelLink: channelLink(v.AuthorID),
		PlayableURL: v.PlayableURL(),
		ViewCount:   v.ViewCount,
		LikeCount:   v.LikeCount,
		Description: v.Description,
	}
	if thumb, ok := v.AuthorThumbnail(authorThumbnailSize, authorThumbnailSize); ok {
		view.AuthorThumbnail = thumb.URL
	}
	return view
}

func searchView(query string, items []invidious.SearchItem) SearchView {
	view := SearchView{Query: query, Results: []VideoCard{}}
	for i := range items {
		item := &items[i]
		// Channels and playlists share the result array; only videos are listed.
		if item.VideoID == "" {
			continue
		}
		view.Results = append(view.Results, VideoCard{
			VideoID:   item.VideoID,
			Title:     item.Title,
			Author:    item.Author,
			Thumbnail: item.Thumbnail(),
			WatchLink: watchLink(item.VideoID),
		})
	}
	return view
}

func channelView(c *invidious.Channel) ChannelView {
	view := ChannelView{
		Author:      c.Author,
		Description: c.Description,
		SubCount:    c.SubCount,
		Videos:      make([]VideoCard, 0, len(c.LatestVideos)),
	}
	if len(c.AuthorThumbnails) > 0 {
		view.Thumbnail = c.AuthorThumbnails[len(c.AuthorThumbnails)-1].URL
	}
	for _, v := range c.LatestVideos {
		card := VideoCard{VideoID: v.VideoID, Title: v.Title, Author: c.Author, WatchLink: watchLink(v.VideoID)}
		if len(v.VideoThumbnails) > 0 {
			card.Thumbnail = v.VideoThumbnails[0].URL
		}
		view.Videos = append(view.Videos, card)
	}
	return view
}

func playlistView(p *invidious.Playlist) PlaylistView {
	view := PlaylistView{
		Title:       p.Title,
		Author:      p.Author,
		ChannelLink: channelLink(p.AuthorID),
		VideoCount:  p.VideoCount,
		Videos:      make([]VideoCard, 0, len(p.Videos)),
	}
	for _, v := range p.Videos {
		card := VideoCard{VideoID: v.VideoID, Title: v.Title, Author: v.Author, WatchLink: watchLink(v.VideoID)}
		if len(v.VideoThumbnails) > 0 {
			card.Thumbnail = v.VideoThumbnails[0].URL
		}
		view.Videos = append(view.Videos, card)
	}
	return view
}

func watchLink(videoID string) string {
	return "/watch?" + url.Values{ParamVideo: {videoID}}.Encode()
}

func channelLink(authorID string) string {
	if authorID == "" {
		return ""
	}
	return "/channel?" + url.Values{ParamChannel: {authorID}}.Encode()
}
