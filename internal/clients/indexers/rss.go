package indexers

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

// RSSItem mirrors the <item> structure of RSS and Torznab/Newznab feeds.
type RSSItem struct {
	Title       string         `xml:"title"`
	Link        string         `xml:"link"`
	GUID        string         `xml:"guid"`
	PubDate     string         `xml:"pubDate"`
	Description string         `xml:"description"`
	Size        int64          `xml:"size"`
	Enclosure   *RSSEnclosure  `xml:"enclosure"`
	Attributes  []RSSAttribute `xml:"attr"`
}

type RSSEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// RSSAttribute is a torznab:attr / newznab:attr element.
type RSSAttribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type RSSChannel struct {
	Title string    `xml:"title"`
	Items []RSSItem `xml:"item"`
}

type RSSFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel RSSChannel `xml:"channel"`
}

func (item *RSSItem) attr(name string) string {
	for _, a := range item.Attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

var pubDatePattern = regexp.MustCompile(`(\w{3}, \d{1,2} \w{3} \d{4} \d\d:\d\d:\d\d) [\+\-]\d{4}`)

// ParsePubDate reads the timestamp in front of the zone offset of an RSS
// pubDate ("Tue, 01 Jan 2013 10:00:00 +0000"). The offset is ignored.
func ParsePubDate(raw string) (time.Time, bool) {
	m := pubDatePattern.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("Mon, 2 Jan 2006 15:04:05", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ExtractItems parses an RSS payload into feed items. Malformed XML fails the
// whole payload with tv.ErrParse. An item with neither title nor link is
// dropped; one with only a title is kept with an empty URL.
func ExtractItems(payload []byte, logger *utils.Logger) ([]FeedItem, error) {
	var feed RSSFeed
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode RSS feed: %w", tv.ErrParse, err)
	}

	items := make([]FeedItem, 0, len(feed.Channel.Items))
	for _, raw := range feed.Channel.Items {
		item := FeedItem{
			// a slash in the title confuses quality parsing later on
			Title: strings.TrimSpace(strings.ReplaceAll(raw.Title, "/", " ")),
			URL:   strings.TrimSpace(raw.Link),
			Size:  raw.Size,
		}
		if item.URL == "" && raw.Enclosure != nil {
			item.URL = strings.TrimSpace(raw.Enclosure.URL)
		}
		item.URL = strings.ReplaceAll(item.URL, "&amp;", "&")

		if item.Size == 0 && raw.Enclosure != nil {
			item.Size = raw.Enclosure.Length
		}
		if item.Size == 0 {
			item.Size, _ = strconv.ParseInt(raw.attr("size"), 10, 64)
		}
		if published, ok := ParsePubDate(raw.PubDate); ok {
			item.PublishedAt = published
		}

		if item.Title == "" && item.URL == "" {
			logger.Warn("The RSS feed contained an item with neither title nor link, skipping it")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
