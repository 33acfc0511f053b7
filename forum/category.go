package forum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a category or thread identifier. The API sends either strings
// (document ids) or numbers; both decode to the same canonical string.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("forum: id must be a string or number: %s", b)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as text.
func (id ID) String() string { return string(id) }

// Ptr returns a pointer to a copy of id.
func (id ID) Ptr() *ID { return &id }

// Category is a forum category. Subcategories is filled by BuildTree.
type Category struct {
	ID            ID          `json:"id" yaml:"id"`
	ParentID      *ID         `json:"parent_id" yaml:"parent_id"`
	Name          string      `json:"name" yaml:"name"`
	Description   string      `json:"description,omitempty" yaml:"description,omitempty"`
	Language      string      `json:"language,omitempty" yaml:"language,omitempty"`
	ThreadCount   int         `json:"thread_count" yaml:"thread_count"`
	PostCount     int         `json:"post_count" yaml:"post_count"`
	Subcategories []*Category `json:"subcategories,omitempty" yaml:"subcategories,omitempty"`
}

// UnmarshalJSON reads "id", falling back to "_id", so callers only see ID.
func (c *Category) UnmarshalJSON(b []byte) error {
	type plain Category
	var aux struct {
		plain
		AltID   ID  `json:"_id"`
		AltPost int `json:"posts_count"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Category(aux.plain)
	if c.ID == "" {
		c.ID = aux.AltID
	}
	if c.ParentID != nil && *c.ParentID == "" {
		c.ParentID = nil
	}
	if c.PostCount == 0 {
		c.PostCount = aux.AltPost
	}
	return nil
}

// IsRoot reports whether the category declares no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryInput is the body of create and update requests.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    *ID    `json:"parent_id,omitempty"`
	Language    string `json:"language,omitempty"`
}

// DecodeCategories decodes a category list. It accepts a bare array or an
// object wrapping the array in "categories".
func DecodeCategories(raw json.RawMessage) ([]Category, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Category{}, nil
	}
	if raw[0] == '{' {
		var wrapped struct {
			Categories []Category `json:"categories"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("forum: decode categories: %w", err)
		}
		if wrapped.Categories == nil {
			return []Category{}, nil
		}
		return wrapped.Categories, nil
	}

	var list []Category
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("forum: decode categories: %w", err)
	}
	if list == nil {
		list = []Category{}
	}
	return list, nil
}
