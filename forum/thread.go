package forum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Thread is a trending thread as returned by the hot-threads endpoint.
type Thread struct {
	ID           ID        `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	CategoryID   ID        `json:"category_id" yaml:"category_id"`
	CategoryName string    `json:"category_name,omitempty" yaml:"category_name,omitempty"`
	Author       string    `json:"author,omitempty" yaml:"author,omitempty"`
	ReplyCount   int       `json:"reply_count" yaml:"reply_count"`
	ViewCount    int       `json:"view_count" yaml:"view_count"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	LastActivity time.Time `json:"last_activity" yaml:"last_activity"`
}

// UnmarshalJSON normalizes "_id" and an author given as an object.
func (t *Thread) UnmarshalJSON(b []byte) error {
	type plain Thread
	var aux struct {
		plain
		AltID  ID              `json:"_id"`
		Author json.RawMessage `json:"author"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*t = Thread(aux.plain)
	if t.ID == "" {
		t.ID = aux.AltID
	}
	t.Author = authorName(aux.Author)
	return nil
}

func authorName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var user struct {
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(raw, &user); err == nil {
		if user.Username != "" {
			return user.Username
		}
		return user.Name
	}
	return ""
}

// DecodeThreads decodes a thread list, bare or wrapped in "threads".
func DecodeThreads(raw json.RawMessage) ([]Thread, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Thread{}, nil
	}
	if raw[0] == '{' {
		var wrapped struct {
			Threads []Thread `json:"threads"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("forum: decode threads: %w", err)
		}
		if wrapped.Threads == nil {
			return []Thread{}, nil
		}
		return wrapped.Threads, nil
	}

	var list []Thread
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("forum: decode threads: %w", err)
	}
	if list == nil {
		list = []Thread{}
	}
	return list, nil
}
