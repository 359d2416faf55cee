// Package stats talks to the external view statistics collector.
package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the date-time format of the collector's wire contract
const TimeLayout = "2006-01-02 15:04:05"

// EventURIPrefix is the path of a public event read
const EventURIPrefix = "/events"

// Hit is one recorded access to a public endpoint
type Hit struct {
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

// ViewStats is the hit count of one uri
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// HitRecorder submits access hits
type HitRecorder interface {
	RecordHit(ctx context.Context, hit Hit) error
}

// ViewCounter answers view-count queries
type ViewCounter interface {
	Views(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}

// Gateway combines both directions of the collector contract
type Gateway struct {
	HitRecorder
	ViewCounter
}

// EventURI returns the uri under which views of an event are counted
func EventURI(eventID int64) string {
	return fmt.Sprintf("%s/%d", EventURIPrefix, eventID)
}

// ParseEventID extracts the event id from the trailing segment of uri
func ParseEventID(uri string) (int64, error) {
	idx := strings.LastIndexByte(uri, '/')
	id, err := strconv.ParseInt(uri[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("uri %q does not end with an event id: %w", uri, err)
	}
	return id, nil
}

// ViewsByEventID indexes view stats by event id. Entries whose uri carries no
// numeric id are skipped; repeated ids are summed.
func ViewsByEventID(stats []ViewStats) map[int64]int64 {
	views := make(map[int64]int64, len(stats))
	for _, s := range stats {
		id, err := ParseEventID(s.URI)
		if err != nil {
			continue
		}
		views[id] += s.Hits
	}
	return views
}

// wireHit is the JSON body of a hit
type wireHit struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

func toWireHit(h Hit) wireHit {
	return wireHit{
		App:       h.App,
		URI:       h.URI,
		IP:        h.IP,
		Timestamp: h.Timestamp.Format(TimeLayout),
	}
}
