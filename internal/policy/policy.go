// Package policy decides who may see and change which documents.
//
// The engine is a pure function of the identity, the requested operation and
// the records handed to it. It never touches storage.
package policy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"docgate/internal/model"
)

// DefaultAdminRole is the role that marks an identity as privileged.
const DefaultAdminRole = "admin"

var (
	// ErrNotFoundOrDenied covers both a missing record and one the caller may
	// not see or change, so existence is never disclosed.
	ErrNotFoundOrDenied = errors.New("document not found or access denied")
	// ErrForbidden is returned for operations reserved to privileged identities.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrInvalidInput is wrapped with the offending field.
	ErrInvalidInput = errors.New("invalid input")
)

// Engine evaluates access rules. The zero value is not usable; call New.
type Engine struct {
	adminRole string
}

// New returns an engine treating adminRole as the privileged role.
func New(adminRole string) *Engine {
	adminRole = strings.TrimSpace(adminRole)
	if adminRole == "" {
		adminRole = DefaultAdminRole
	}
	return &Engine{adminRole: adminRole}
}

// IsPrivileged reports whether who holds the admin role.
func (e *Engine) IsPrivileged(who model.Identity) bool {
	return who.HasRole(e.adminRole)
}

// CanView reports whether doc is visible to who.
func (e *Engine) CanView(who model.Identity, doc model.Document) bool {
	switch {
	case e.IsPrivileged(who):
		return true
	case isOwner(who, doc):
		return true
	case doc.AccessLevel == model.AccessPublic:
		return true
	case doc.AccessLevel == model.AccessInternal && doc.Status == model.StatusPublished:
		return true
	}
	return false
}

// CanModify reports whether who may update or delete doc.
func (e *Engine) CanModify(who model.Identity, doc model.Document) bool {
	return e.IsPrivileged(who) || isOwner(who, doc)
}

// Visible returns the records of docs that who can see, in their original order.
func (e *Engine) Visible(who model.Identity, docs []model.Document) []model.Document {
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if e.CanView(who, d) {
			out = append(out, d)
		}
	}
	return out
}

// AuthorizeView gates a single-record fetch. A nil doc means the record does
// not exist and yields the same error as an invisible one.
func (e *Engine) AuthorizeView(who model.Identity, doc *model.Document) error {
	if doc == nil || !e.CanView(who, *doc) {
		return ErrNotFoundOrDenied
	}
	return nil
}

// AuthorizeModify gates update and delete.
func (e *Engine) AuthorizeModify(who model.Identity, doc model.Document) error {
	if !e.CanModify(who, doc) {
		return ErrNotFoundOrDenied
	}
	return nil
}

// AuthorizeStats allows collection-wide statistics for privileged identities only.
func (e *Engine) AuthorizeStats(who model.Identity) error {
	if !e.IsPrivileged(who) {
		return ErrForbidden
	}
	return nil
}

// Search filters docs by visibility, then by a case-insensitive substring match
// on title, description or any tag. A blank query keeps every visible record.
func (e *Engine) Search(who model.Identity, docs []model.Document, query string) []model.Document {
	visible := e.Visible(who, docs)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return visible
	}
	out := make([]model.Document, 0, len(visible))
	for _, d := range visible {
		if matches(d, q) {
			out = append(out, d)
		}
	}
	return out
}

// NewDocument builds the record created by who from in. The owner is always
// who; the status is draft unless a privileged caller asks for another one.
func (e *Engine) NewDocument(who model.Identity, in model.DocumentInput, id string, now time.Time) (model.Document, error) {
	if who.Subject == "" {
		return model.Document{}, fmt.Errorf("%w: caller has no subject", ErrInvalidInput)
	}
	doc := model.Document{
		ID:          id,
		Owner:       who.Subject,
		CreatedAt:   now,
		Tags:        []string{},
		Status:      model.StatusDraft,
		AccessLevel: model.AccessPublic,
	}
	if in.Status != nil && !e.IsPrivileged(who) {
		in.Status = nil
	}
	if err := apply(&doc, in); err != nil {
		return model.Document{}, err
	}
	if strings.TrimSpace(doc.Title) == "" {
		return model.Document{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return doc, nil
}

// ApplyUpdate merges in over current on behalf of who. Id, owner and creation
// time always come from current.
func (e *Engine) ApplyUpdate(who model.Identity, current model.Document, in model.DocumentInput) (model.Document, error) {
	if err := e.AuthorizeModify(who, current); err != nil {
		return model.Document{}, err
	}
	if in.Status != nil && *in.Status == model.StatusArchived &&
		current.Status != model.StatusArchived && !e.IsPrivileged(who) {
		return model.Document{}, fmt.Errorf("%w: archiving requires the %s role", ErrForbidden, e.adminRole)
	}

	next := current.Clone()
	if err := apply(&next, in); err != nil {
		return model.Document{}, err
	}
	if strings.TrimSpace(next.Title) == "" {
		return model.Document{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	next.ID = current.ID
	next.Owner = current.Owner
	next.CreatedAt = current.CreatedAt
	return next, nil
}

func isOwner(who model.Identity, doc model.Document) bool {
	return who.Subject != "" && who.Subject == doc.Owner
}

func matches(d model.Document, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(d.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(d.Description), lowerQuery) {
		return true
	}
	for _, tag := range d.Tags {
		if strings.Contains(strings.ToLower(tag), lowerQuery) {
			return true
		}
	}
	return false
}

func apply(doc *model.Document, in model.DocumentInput) error {
	if in.Status != nil && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *in.Status)
	}
	if in.AccessLevel != nil && !in.AccessLevel.Valid() {
		return fmt.Errorf("%w: unknown access level %q", ErrInvalidInput, *in.AccessLevel)
	}

	if in.Title != nil {
		doc.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		doc.Description = *in.Description
	}
	if in.FileType != nil {
		doc.FileType = strings.ToLower(strings.TrimSpace(*in.FileType))
	}
	if in.Size != nil {
		doc.Size = strings.TrimSpace(*in.Size)
	}
	if in.Tags != nil {
		doc.Tags = normalizeTags(in.Tags)
	}
	if in.Status != nil {
		doc.Status = *in.Status
	}
	if in.AccessLevel != nil {
		doc.AccessLevel = *in.AccessLevel
	}
	return nil
}

func normalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
