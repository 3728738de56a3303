package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evolveapp/statusprobe/internal/errkind"
	"github.com/evolveapp/statusprobe/internal/fsutil"
	"github.com/evolveapp/statusprobe/internal/override"
)

// ITEM_MAX caps how many incidents the feed carries.
const ITEM_MAX = 20

// Config describes the fixed channel header of the feed.
type Config struct {
	Title       string `mapstructure:"title"`
	Link        string `mapstructure:"link"`
	Description string `mapstructure:"description"`
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// Render builds the RSS 2.0 document for the given incidents. Incidents
// arrive newest-first from the override document and keep that order; only
// the first ITEM_MAX make it into the feed.
func Render(conf Config, incidents []override.Incident) ([]byte, error) {
	if len(incidents) > ITEM_MAX {
		incidents = incidents[:ITEM_MAX]
	}

	doc := rss{
		Version: "2.0",
		Channel: channel{
			Title:       conf.Title,
			Link:        conf.Link,
			Description: conf.Description,
			Items:       make([]item, len(incidents)),
		},
	}

	for i, inc := range incidents {
		doc.Channel.Items[i] = newItem(inc)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errkind.New(errkind.Parse, err, "failed to render feed")
	}

	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func newItem(inc override.Incident) item {
	it := item{
		Title:       inc.Title,
		Description: fmt.Sprintf("Status: %s", inc.Status),
		GUID:        inc.ID,
	}

	if update, ok := inc.LatestUpdate(); ok {
		it.Description += "\n" + update.Message
	}

	if t, err := time.Parse(time.RFC3339, inc.CreatedAt); err == nil {
		it.PubDate = t.Format(time.RFC1123Z)
	}

	if it.GUID == "" {
		it.GUID = uuid.NewString()
	}

	return it
}

// Publisher renders and persists the feed.
type Publisher struct {
	Path string
	Conf Config
}

// Publish writes the feed file, replacing the previous content. It runs
// every run whether or not the incident list changed.
func (p Publisher) Publish(incidents []override.Incident) error {
	data, err := Render(p.Conf, incidents)
	if err != nil {
		return err
	}

	if err := fsutil.WriteFile(p.Path, data); err != nil {
		return errkind.New(errkind.IO, err, "failed to write feed")
	}

	return nil
}
