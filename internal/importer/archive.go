// Package importer converts a Twitter/X archive export into posts.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// createdAtLayout is the timestamp format used by archive exports,
// e.g. "Wed Oct 10 20:19:24 +0000 2018".
const createdAtLayout = time.RubyDate

// URL is a shortened link inside a tweet.
type URL struct {
	Short    string
	Display  string
	Expanded string
}

// Media is a photo or video attached to a tweet. Source is the downloadable
// asset URL, used to locate the file inside the archive.
type Media struct {
	URL     string
	Source  string
	Type    string
	TweetID string
}

// Tweet is one archive entry with its attachments and, after thread
// reconstruction, the replies that continue it.
type Tweet struct {
	ID      string
	Text    string
	Created time.Time
	ReplyTo string
	Retweet bool
	Mention bool
	URLs    []URL
	Media   []Media
	Replies []*Tweet
}

// archiveEntry mirrors the JSON layout of data/tweets.js.
type archiveEntry struct {
	Tweet struct {
		ID        string `json:"id_str"`
		FullText  string `json:"full_text"`
		CreatedAt string `json:"created_at"`
		InReplyTo string `json:"in_reply_to_status_id_str"`
		Entities  struct {
			URLs []struct {
				URL         string `json:"url"`
				DisplayURL  string `json:"display_url"`
				ExpandedURL string `json:"expanded_url"`
			} `json:"urls"`
		} `json:"entities"`
		ExtendedEntities struct {
			Media []struct {
				URL       string `json:"url"`
				MediaURL  string `json:"media_url"`
				Type      string `json:"type"`
				VideoInfo struct {
					Variants []struct {
						Bitrate string `json:"bitrate"`
						URL     string `json:"url"`
					} `json:"variants"`
				} `json:"video_info"`
			} `json:"media"`
		} `json:"extended_entities"`
	} `json:"tweet"`
}

// LoadArchive reads data/tweets.js from an archive directory and parses
// every tweet. The file is JavaScript: a variable assignment followed by a
// JSON array.
func LoadArchive(dir string) ([]*Tweet, error) {
	data, err := os.ReadFile(filepath.Join(dir, "data", "tweets.js"))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	// Drop the "window.YTD.tweets.part0 = " prefix.
	start := bytes.IndexByte(data, '[')
	if start == -1 {
		return nil, fmt.Errorf("parse archive: no JSON array in tweets.js")
	}

	var entries []archiveEntry
	if err := json.Unmarshal(data[start:], &entries); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}

	tweets := make([]*Tweet, 0, len(entries))
	for _, e := range entries {
		t, err := parseEntry(e)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, t)
	}
	return tweets, nil
}

func parseEntry(e archiveEntry) (*Tweet, error) {
	created, err := time.Parse(createdAtLayout, e.Tweet.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse tweet %s: bad created_at: %w", e.Tweet.ID, err)
	}

	t := &Tweet{
		ID:      e.Tweet.ID,
		Text:    e.Tweet.FullText,
		Created: created,
		ReplyTo: e.Tweet.InReplyTo,
		Retweet: strings.HasPrefix(e.Tweet.FullText, "RT @"),
		Mention: strings.HasPrefix(e.Tweet.FullText, "@"),
	}

	for _, u := range e.Tweet.Entities.URLs {
		t.URLs = append(t.URLs, URL{Short: u.URL, Display: u.DisplayURL, Expanded: u.ExpandedURL})
	}

	for _, m := range e.Tweet.ExtendedEntities.Media {
		switch m.Type {
		case "photo":
			t.Media = append(t.Media, Media{URL: m.URL, Source: m.MediaURL, Type: m.Type, TweetID: t.ID})
		case "video", "animated_gif":
			source := bestVariant(m.VideoInfo.Variants)
			if source == "" {
				slog.Warn("video without downloadable variant, skipping", "tweet", t.ID)
				continue
			}
			t.Media = append(t.Media, Media{URL: m.URL, Source: source, Type: m.Type, TweetID: t.ID})
		default:
			slog.Warn("unsupported media type, skipping", "tweet", t.ID, "type", m.Type)
		}
	}

	return t, nil
}

// bestVariant picks the highest-bitrate downloadable video variant.
func bestVariant(variants []struct {
	Bitrate string `json:"bitrate"`
	URL     string `json:"url"`
}) string {
	best := ""
	bestRate := -1
	for _, v := range variants {
		if v.Bitrate == "" {
			continue
		}
		rate, err := strconv.Atoi(v.Bitrate)
		if err != nil {
			continue
		}
		if rate > bestRate {
			bestRate = rate
			best = v.URL
		}
	}
	return best
}
