package model

import "time"

// Metadata is the universal metadata record applicable to any input format.
// All fields are nullable/zero-valued except FileSize and OriginalFormat.
type Metadata struct {
	Title             string         `json:"title,omitempty"`
	Author            string         `json:"author,omitempty"`
	Authors           []string       `json:"authors,omitempty"`
	Publisher         string         `json:"publisher,omitempty"`
	PublicationDate   *time.Time     `json:"publication_date,omitempty"`
	Language          string         `json:"language,omitempty"`
	ISBN              string         `json:"isbn,omitempty"`
	Description       string         `json:"description,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	OriginalFormat    string         `json:"original_format"`
	FileSize          int64          `json:"file_size"`
	CustomFields      map[string]any `json:"custom_fields,omitempty"`
}

// EnsureCustomFields returns a writable CustomFields map, allocating one
// lazily so every pipeline can unconditionally stash extras into it.
func (m *Metadata) EnsureCustomFields() map[string]any {
	if m.CustomFields == nil {
		m.CustomFields = make(map[string]any)
	}
	return m.CustomFields
}

// PrimaryAuthor returns Author if set, else the first entry of Authors.
func (m *Metadata) PrimaryAuthor() string {
	if m.Author != "" {
		return m.Author
	}
	if len(m.Authors) > 0 {
		return m.Authors[0]
	}
	return ""
}

// MergeAuthor keeps Author and Authors consistent: setting one author
// mirrors it into the other.
func (m *Metadata) MergeAuthor(author string) {
	if author == "" {
		return
	}
	m.Author = author
	if len(m.Authors) == 0 {
		m.Authors = []string{author}
	}
}
