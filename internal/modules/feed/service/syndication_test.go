package service

import (
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshetovitsme/tgfeed/internal/modules/feed/domain"
)

func testFeed() *domain.Feed {
	return &domain.Feed{
		Meta: domain.Meta{
			PeerID:      1001,
			Title:       "News",
			Link:        "https://t.me/news",
			Avatar:      "http://feed.local/profile/news",
			Description: "All the news",
			Built:       postDate,
		},
		Entries: []*domain.Entry{{
			MessageID: 5,
			GUID:      "1001/5",
			Title:     "hello",
			Body:      `<p style="white-space: pre-line">hello</p>`,
			Author:    "News (Bob)",
			Link:      "https://t.me/news/5",
			Date:      postDate,
		}},
	}
}

func TestEncode_RSS(t *testing.T) {
	doc, err := Encode(testFeed(), domain.FormatRss)
	require.NoError(t, err)

	assert.Contains(t, doc, `<rss version="2.0"`)
	assert.Contains(t, doc, "<title>News</title>")
	assert.Contains(t, doc, "<description>All the news</description>")
	assert.Contains(t, doc, `<guid isPermaLink="false">1001/5</guid>`)
	assert.Contains(t, doc, "<pubDate>2024-03-09T14:05:00+0000</pubDate>")
	assert.Contains(t, doc, "<author>News (Bob)</author>")
	assert.Contains(t, doc, "<link>https://t.me/news/5</link>")
	assert.Contains(t, doc, "<lastBuildDate>2024-03-09T14:05:00+0000</lastBuildDate>")
	assert.NotContains(t, doc, "atom:link")
}

func TestEncode_RSSPageMetadata(t *testing.T) {
	f := testFeed()
	f.Meta.Built = time.Date(2024, 3, 10, 8, 0, 0, 0, time.FixedZone("", 3*60*60))
	f.Meta.Offset = 25
	f.Meta.Self = "http://feed.local/rss/news/25"

	doc, err := Encode(f, domain.FormatRss)
	require.NoError(t, err)

	assert.Contains(t, doc, `xmlns:atom="http://www.w3.org/2005/Atom"`)
	assert.Contains(t, doc, `<atom:link href="http://feed.local/rss/news/25" rel="self" type="application/rss+xml"></atom:link>`)
	assert.Contains(t, doc, "<lastBuildDate>2024-03-10T08:00:00+0300</lastBuildDate>")
	assert.Contains(t, doc, "<pubDate>2024-03-10T08:00:00+0300</pubDate>")
	assert.Contains(t, doc, "<pubDate>2024-03-09T14:05:00+0000</pubDate>")

	var parsed struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				GUID string `xml:"guid"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "News", parsed.Channel.Title)
	require.Len(t, parsed.Channel.Items, 1)
	assert.Equal(t, "1001/5", parsed.Channel.Items[0].GUID)
}

func TestEncode_Atom(t *testing.T) {
	doc, err := Encode(testFeed(), domain.FormatAtom)
	require.NoError(t, err)

	assert.Contains(t, doc, `<feed xmlns="http://www.w3.org/2005/Atom"`)
	assert.Contains(t, doc, ">hello</title>")
	assert.Contains(t, doc, "1001/5")
}

func TestEncode_JSON(t *testing.T) {
	doc, err := Encode(testFeed(), domain.FormatJson)
	require.NoError(t, err)

	var parsed struct {
		Title string `json:"title"`
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "News", parsed.Title)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "1001/5", parsed.Items[0].ID)
	assert.Equal(t, "hello", parsed.Items[0].Title)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/rss+xml; charset=utf-8", ContentType(domain.FormatRss))
	assert.Equal(t, "application/atom+xml; charset=utf-8", ContentType(domain.FormatAtom))
	assert.Equal(t, "application/feed+json; charset=utf-8", ContentType(domain.FormatJson))
}
