package model

import (
	"encoding/json"
	"time"
)

// Board is the validated, board-level part of an export.
type Board struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Desc       string            `json:"desc,omitempty"`
	URL        string            `json:"url,omitempty"`
	Background Background        `json:"background"`
	Labels     []Label           `json:"labels"`
	Members    []Member          `json:"members"`
	Checklists []Checklist       `json:"checklists"`
	Actions    []json.RawMessage `json:"actions,omitempty"`
}

type List struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Pos    float64 `json:"pos"`
	Closed bool    `json:"closed"`
}

type Card struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	ListID string  `json:"idList"`
	Pos    float64 `json:"pos"`
	Closed bool    `json:"closed"`

	LabelIDs     []string `json:"idLabels"`
	MemberIDs    []string `json:"idMembers"`
	ChecklistIDs []string `json:"idChecklists"`

	Desc        string     `json:"desc,omitempty"`
	Due         *time.Time `json:"due,omitempty"`
	DueComplete bool       `json:"dueComplete"`
	URL         string     `json:"url,omitempty"`

	Attachments []Attachment `json:"attachments"`

	// Denormalized counters used for the card badge.
	CheckItems        int `json:"checkItems"`
	CheckItemsChecked int `json:"checkItemsChecked"`
}

type Label struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Color LabelColor `json:"color"`
}

type Member struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Username  string `json:"username,omitempty"`
	Initials  string `json:"initials"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Checklist struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	CardID string      `json:"idCard,omitempty"`
	Items  []CheckItem `json:"checkItems"`
}

type CheckItemState string

const (
	CheckItemComplete   CheckItemState = "complete"
	CheckItemIncomplete CheckItemState = "incomplete"
)

type CheckItem struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Pos   float64        `json:"pos"`
	State CheckItemState `json:"state"`
}

type Attachment struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	MimeType   string    `json:"mimeType,omitempty"`
	PreviewURL string    `json:"previewUrl,omitempty"`
}
