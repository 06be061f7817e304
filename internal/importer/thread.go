package importer

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Filter narrows which tweets become posts and adjusts their timestamps.
// Zero time values disable the date bounds.
type Filter struct {
	After    time.Time
	Before   time.Time
	Location *time.Location
}

// BuildThreads reconstructs reply chains: tweets that reply to one of the
// author's own tweets are chained onto it in chronological order. Retweets
// and bare mentions (replies into other conversations excepted) are
// dropped. Returns the thread heads, newest first, plus the reply count.
func BuildThreads(tweets []*Tweet, f Filter) ([]*Tweet, int) {
	heads := make(map[string]*Tweet)
	replies := make(map[string]*Tweet)

	for _, t := range tweets {
		if f.Location != nil {
			t.Created = t.Created.In(f.Location)
		}
		if !f.After.IsZero() && !t.Created.After(f.After) {
			continue
		}
		if !f.Before.IsZero() && !t.Created.Before(f.Before) {
			continue
		}
		if t.Retweet {
			continue
		}
		// Mentions that do not continue a thread are conversations with
		// other accounts, not content.
		if t.Mention && t.ReplyTo == "" {
			continue
		}

		if t.ReplyTo == "" {
			heads[t.ID] = t
		} else {
			replies[t.ReplyTo] = t
		}
	}

	// Chain replies onto their thread heads.
	for id, head := range heads {
		reply, ok := replies[id]
		for ok {
			head.Replies = append(head.Replies, reply)
			reply, ok = replies[reply.ID]
		}
	}

	out := make([]*Tweet, 0, len(heads))
	for _, t := range heads {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return compareIDs(out[i].ID, out[j].ID) > 0
	})

	return out, len(replies)
}

// ThreadText returns the raw concatenated thread text, used for the
// inventory CSV.
func (t *Tweet) ThreadText() string {
	var sb strings.Builder
	sb.WriteString(t.Text)
	sb.WriteString("\n")
	for _, r := range t.Replies {
		sb.WriteString("\n")
		sb.WriteString(r.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// compareIDs orders numeric string ids without overflowing on 19-digit
// snowflake values.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// ParseDate parses a YYYY-MM-DD (or RFC 3339) date bound in the given
// location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}
