package model

import (
	"math"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DisplayName is the label name, or its color name when unnamed.
func (l Label) DisplayName() string {
	if n := strings.TrimSpace(l.Name); n != "" {
		return n
	}
	return string(l.Color)
}

// Avatar returns the sized avatar image URL, or a placeholder showing the initials.
func (m Member) Avatar(size int) string {
	if size <= 0 {
		size = 30
	}
	s := strconv.Itoa(size)
	if base := strings.TrimRight(strings.TrimSpace(m.AvatarURL), "/"); base != "" {
		return base + "/" + s + ".png"
	}
	initials := strings.TrimSpace(m.Initials)
	if initials == "" {
		initials = "M"
	}
	return "https://placehold.co/" + s + "x" + s + "?text=" + url.QueryEscape(initials)
}

// CreatedAt decodes the creation time embedded in the first 8 hex chars of an
// object id. ok is false for ids that do not carry a timestamp.
func (c Card) CreatedAt() (t time.Time, ok bool) {
	if len(c.ID) < 8 {
		return time.Time{}, false
	}
	secs, err := strconv.ParseUint(c.ID[:8], 16, 32)
	if err != nil || secs == 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(secs), 0).UTC(), true
}

// ChecklistComplete reports whether the badge counters show every item checked.
func (c Card) ChecklistComplete() bool {
	return c.CheckItems > 0 && c.CheckItemsChecked == c.CheckItems
}

// Progress returns completed and total item counts and the rounded percentage.
func (c Checklist) Progress() (done, total, percent int) {
	total = len(c.Items)
	for _, it := range c.Items {
		if it.State == CheckItemComplete {
			done++
		}
	}
	if total == 0 {
		return done, 0, 0
	}
	return done, total, int(math.Round(float64(done) / float64(total) * 100))
}

// SortedItems returns a copy of the items ordered by pos.
func (c Checklist) SortedItems() []CheckItem {
	out := append([]CheckItem(nil), c.Items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// Extension is the upper-cased file extension of the attachment URL.
func (a Attachment) Extension() string {
	p := a.URL
	if u, err := url.Parse(a.URL); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	return strings.ToUpper(ext)
}
