package model

import "time"

// Document is a metadata record for a stored file. No binary content is kept here.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	FileType    string      `json:"fileType"`
	Size        string      `json:"size,omitempty"`
	Owner       string      `json:"owner"`
	CreatedAt   time.Time   `json:"createdAt"`
	Tags        []string    `json:"tags"`
	Status      Status      `json:"status"`
	AccessLevel AccessLevel `json:"accessLevel"`
}

// Clone returns a deep copy so callers can't alias the tag slice of a stored record.
func (d Document) Clone() Document {
	out := d
	out.Tags = make([]string, len(d.Tags))
	copy(out.Tags, d.Tags)
	return out
}

// DocumentInput carries the caller-writable fields of a document.
// Nil fields are left untouched on update. Identity fields (id, owner, createdAt)
// are intentionally absent: they can't be supplied by a caller.
type DocumentInput struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	FileType    *string      `json:"fileType,omitempty"`
	Size        *string      `json:"size,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Status      *Status      `json:"status,omitempty"`
	AccessLevel *AccessLevel `json:"accessLevel,omitempty"`
}

// DocumentStats aggregates the whole collection.
type DocumentStats struct {
	TotalDocuments int                 `json:"totalDocuments"`
	ByStatus       map[Status]int      `json:"byStatus"`
	ByType         map[string]int      `json:"byType"`
	ByAccess       map[AccessLevel]int `json:"byAccess"`
}
