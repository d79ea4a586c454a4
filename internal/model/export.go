package model

import (
	"encoding/json"
	"io"
)

// Export is the raw board export document as written by the board service.
// Optional fields are pointers so that absence survives decoding; the
// normalizer validates them once.
type Export struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Desc  string       `json:"desc"`
	URL   string       `json:"url"`
	Prefs *ExportPrefs `json:"prefs"`

	Lists      *[]ExportList     `json:"lists"`
	Cards      *[]ExportCard     `json:"cards"`
	Labels     []ExportLabel     `json:"labels"`
	Members    []ExportMember    `json:"members"`
	Checklists []ExportChecklist `json:"checklists"`
	Actions    []json.RawMessage `json:"actions"`
}

type ExportPrefs struct {
	BackgroundImage *string `json:"backgroundImage"`
	BackgroundColor *string `json:"backgroundColor"`
}

type ExportList struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Pos    *float64 `json:"pos"`
	Closed bool     `json:"closed"`
}

type ExportCard struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	IDList string   `json:"idList"`
	Pos    *float64 `json:"pos"`
	Closed bool     `json:"closed"`

	IDLabels     []string `json:"idLabels"`
	IDMembers    []string `json:"idMembers"`
	IDChecklists []string `json:"idChecklists"`

	Desc        *string `json:"desc"`
	Due         *string `json:"due"`
	DueComplete bool    `json:"dueComplete"`
	URL         string  `json:"url"`

	Attachments []ExportAttachment `json:"attachments"`

	CheckItems        *int          `json:"checkItems"`
	CheckItemsChecked *int          `json:"checkItemsChecked"`
	Badges            *ExportBadges `json:"badges"`
}

type ExportBadges struct {
	CheckItems        int `json:"checkItems"`
	CheckItemsChecked int `json:"checkItemsChecked"`
}

type ExportLabel struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type ExportMember struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	Username  string  `json:"username"`
	Initials  string  `json:"initials"`
	AvatarURL *string `json:"avatarUrl"`
}

type ExportChecklist struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	IDCard     string            `json:"idCard"`
	CheckItems []ExportCheckItem `json:"checkItems"`
}

type ExportCheckItem struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Pos   *float64 `json:"pos"`
	State string   `json:"state"`
}

type ExportAttachment struct {
	ID       string          `json:"id"`
	URL      string          `json:"url"`
	Name     string          `json:"name"`
	Date     string          `json:"date"`
	MimeType string          `json:"mimeType"`
	Previews []ExportPreview `json:"previews"`
}

type ExportPreview struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ParseExport decodes a single export document from r.
func ParseExport(r io.Reader) (*Export, error) {
	var doc Export
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
