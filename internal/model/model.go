// Package model contains the domain types shared by every layer.
// Keep it free of persistence and transport concerns.
package model

// Status is the publication state of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusDraft, StatusPublished, StatusArchived}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// AccessLevel governs who besides the owner may see a document.
type AccessLevel string

const (
	AccessPublic     AccessLevel = "public"
	AccessInternal   AccessLevel = "internal"
	AccessRestricted AccessLevel = "restricted"
	AccessPrivate    AccessLevel = "private"
)

// AccessLevels lists every access level from most to least open.
var AccessLevels = []AccessLevel{AccessPublic, AccessInternal, AccessRestricted, AccessPrivate}

// Valid reports whether a is one of the known access levels.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessPublic, AccessInternal, AccessRestricted, AccessPrivate:
		return true
	}
	return false
}
