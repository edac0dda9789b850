package service

import (
	"encoding/xml"

	"github.com/gorilla/feeds"
	"github.com/samber/oops"

	"github.com/reshetovitsme/tgfeed/internal/modules/feed/domain"
)

// ContentType returns the media type a feed is served with
func ContentType(format domain.Format) string {
	switch format {
	case domain.FormatAtom:
		return "application/atom+xml; charset=utf-8"
	case domain.FormatJson:
		return "application/feed+json; charset=utf-8"
	default:
		return "application/rss+xml; charset=utf-8"
	}
}

// Encode serializes a feed in the requested format
func Encode(f *domain.Feed, format domain.Format) (string, error) {
	out := toFeeds(f)

	var (
		doc string
		err error
	)
	switch format {
	case domain.FormatAtom:
		doc, err = out.ToAtom()
	case domain.FormatJson:
		doc, err = out.ToJSON()
	default:
		doc, err = encodeRSS(f, out)
	}
	if err != nil {
		return "", oops.With("format", format.String(), "context", "failed to encode feed").Wrap(err)
	}

	return doc, nil
}

func toFeeds(f *domain.Feed) *feeds.Feed {
	out := &feeds.Feed{
		Title:       f.Meta.Title,
		Link:        &feeds.Link{Href: f.Meta.Link},
		Description: f.Meta.Description,
		Id:          f.Meta.ID(),
		Updated:     f.Meta.Built,
		Image: &feeds.Image{
			Url:   f.Meta.Avatar,
			Title: f.Meta.Title,
			Link:  f.Meta.Link,
		},
	}

	for _, e := range f.Entries {
		out.Items = append(out.Items, &feeds.Item{
			Id:          e.GUID,
			IsPermaLink: "false",
			Title:       e.Title,
			Link:        &feeds.Link{Href: e.Link},
			Author:      &feeds.Author{Name: e.Author},
			Description: e.Body,
			Created:     e.Date,
		})
	}

	return out
}

const atomNamespace = "http://www.w3.org/2005/Atom"

// rssDocument is the RSS 2.0 root with the atom namespace declared for
// the self link of the channel.
type rssDocument struct {
	XMLName          xml.Name `xml:"rss"`
	Version          string   `xml:"version,attr"`
	ContentNamespace string   `xml:"xmlns:content,attr"`
	AtomNamespace    string   `xml:"xmlns:atom,attr"`
	Channel          *rssChannel
}

func (d *rssDocument) FeedXml() interface{} {
	return d
}

type rssChannel struct {
	XMLName xml.Name `xml:"channel"`
	// Self carries the page offset in its URL
	Self *rssSelfLink
	*feeds.RssFeed
}

type rssSelfLink struct {
	XMLName xml.Name `xml:"atom:link"`
	Href    string   `xml:"href,attr"`
	Rel     string   `xml:"rel,attr"`
	Type    string   `xml:"type,attr"`
}

// encodeRSS renders RSS 2.0 with channel and item dates in the entry
// layout. Authors are plain names, not the "email (name)" form.
func encodeRSS(f *domain.Feed, out *feeds.Feed) (string, error) {
	rss := (&feeds.Rss{Feed: out}).RssFeed()
	rss.PubDate = f.Meta.Built.Format(domain.DateLayout)
	rss.LastBuildDate = rss.PubDate
	for i, item := range rss.Items {
		e := f.Entries[i]
		item.PubDate = e.Timestamp()
		item.Author = e.Author
		item.Guid = &feeds.RssGuid{Id: e.GUID, IsPermaLink: "false"}
	}

	doc := &rssDocument{
		Version:          "2.0",
		ContentNamespace: "http://purl.org/rss/1.0/modules/content/",
		AtomNamespace:    atomNamespace,
		Channel:          &rssChannel{RssFeed: rss},
	}
	if f.Meta.Self != "" {
		doc.Channel.Self = &rssSelfLink{Href: f.Meta.Self, Rel: "self", Type: "application/rss+xml"}
	}

	return feeds.ToXML(doc)
}
