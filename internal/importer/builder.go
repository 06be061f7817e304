package importer

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/manuel-rabade/posts-to-blog/internal/post"
)

var mentionRegexp = regexp.MustCompile(`@([a-zA-Z0-9_]{1,15})`)

// Options controls how posts are generated from threads.
type Options struct {
	Author   string
	Tag      string
	Username string
	Unsafe   bool // allow overwriting existing posts
}

// BuildPost turns a thread into front matter, a markdown body, and a media
// catalog mapping archive filenames to their names inside the post bundle.
func BuildPost(t *Tweet, opts Options) (post.FrontMatter, string, map[string]string) {
	meta := post.FrontMatter{
		Title: t.ID,
		Date:  t.Created.Format("2006-01-02T15:04:05-07:00"),
	}
	if opts.Author != "" {
		meta.Author = opts.Author
	}
	if opts.Tag != "" {
		meta.Tags = []string{opts.Tag}
	}
	if opts.Username != "" {
		meta.Origin = fmt.Sprintf("https://x.com/%s/status/%s", opts.Username, t.ID)
	}

	text := t.Text + "\n"
	urls := append([]URL(nil), t.URLs...)
	media := append([]Media(nil), t.Media...)

	for _, r := range t.Replies {
		rText := stripLeadingMentions(r.Text)

		// Join paragraphs split across tweets with "..." continuations.
		if strings.HasSuffix(text, "...\n") && strings.HasPrefix(rText, "...") {
			text = strings.TrimSuffix(text, "...\n") + strings.TrimPrefix(rText, "...") + "\n"
		} else {
			text += "\n" + rText + "\n"
		}
		urls = append(urls, r.URLs...)
		media = append(media, r.Media...)
	}

	for _, u := range urls {
		text = strings.ReplaceAll(text, u.Short, fmt.Sprintf("[%s](%s)", u.Display, u.Expanded))
	}

	// Link bare mentions to profiles.
	text = mentionRegexp.ReplaceAllString(text, "[@$1](http://x.com/$1)")

	text, catalog := replaceMedia(text, media)

	return meta, text, catalog
}

// stripLeadingMentions removes the run of @mentions that starts a reply.
func stripLeadingMentions(text string) string {
	words := strings.Fields(text)
	i := 0
	for i < len(words) && strings.HasPrefix(words[i], "@") {
		i++
	}
	if i == 0 {
		return text
	}
	return strings.Join(words[i:], " ")
}

// replaceMedia swaps media URLs in the text for markdown references and
// builds the archive-filename to bundle-filename catalog.
func replaceMedia(text string, media []Media) (string, map[string]string) {
	// Group media items by the short URL they share in the text.
	order := []string{}
	groups := map[string][]Media{}
	for _, m := range media {
		if _, ok := groups[m.URL]; !ok {
			order = append(order, m.URL)
		}
		groups[m.URL] = append(groups[m.URL], m)
	}

	catalog := map[string]string{}
	count := 1
	for _, u := range order {
		var tags []string
		for _, m := range groups[u] {
			orig := archiveFilename(m)
			name := fmt.Sprintf("%d%s", count, path.Ext(orig))
			catalog[orig] = name
			switch m.Type {
			case "video", "animated_gif":
				tags = append(tags, fmt.Sprintf("[Video](%s)", name))
			default:
				tags = append(tags, fmt.Sprintf("[![](%s)](%s)", name, name))
			}
			count++
		}
		text = strings.ReplaceAll(text, u, "\n\n"+strings.Join(tags, "\n"))
	}

	return text, catalog
}

// archiveFilename is how the export names media files under
// data/tweets_media: "<tweet id>-<basename of the asset URL>".
func archiveFilename(m Media) string {
	base := m.Source
	if parsed, err := url.Parse(m.Source); err == nil {
		base = parsed.Path
	}
	return fmt.Sprintf("%s-%s", m.TweetID, path.Base(base))
}
