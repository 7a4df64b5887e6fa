// Package metadata defines the immutable Metadata value carried through
// the pipeline, grounded on the teacher's yaml-tagged Manifest struct
// (pkg/plugins/types.go) but reworked as a value type with builder-style
// update methods instead of a mutable registration record.
package metadata

import (
	"time"

	"dario.cat/mergo"
)

// ProcessingState is one step of an item's lifecycle (§4.6 state machine).
type ProcessingState string

const (
	StatePending    ProcessingState = "pending"
	StateFetching   ProcessingState = "fetching"
	StateExtracting ProcessingState = "extracting"
	StateExtracted  ProcessingState = "extracted"
	StateStored     ProcessingState = "stored"
	StateCompleted  ProcessingState = "completed"
	StateFailed     ProcessingState = "failed"
)

// Terminal reports whether no further automatic transition occurs from s.
func (s ProcessingState) Terminal() bool {
	switch s {
	case StateStored, StateCompleted, StateFailed:
		return true
	default:
		return false
	}
}

// Metadata is an immutable record describing one indexable item. All
// mutator methods return a new value; the core never mutates a Metadata it
// hands to a plugin.
type Metadata struct {
	SourceURL       string            `json:"source_url"`
	Location        string            `json:"location,omitempty"`
	Title           string            `json:"title,omitempty"`
	ParentID        string            `json:"parent_id,omitempty"`
	Description     string            `json:"description,omitempty"`
	ProcessingState ProcessingState   `json:"processing_state,omitempty"`
	IndexedAt       *time.Time        `json:"indexed_at,omitempty"`
	CreatedAt       *time.Time        `json:"created_at,omitempty"`
	ModifiedAt      *time.Time        `json:"modified_at,omitempty"`
	Author          string            `json:"author,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	MimeType        string            `json:"mime_type,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// Changes is a sparse set of field replacements for Copy. A nil pointer (or
// nil slice/map) field means "leave unchanged".
type Changes struct {
	SourceURL       *string
	Location        *string
	Title           *string
	ParentID        *string
	Description     *string
	ProcessingState *ProcessingState
	IndexedAt       *time.Time
	CreatedAt       *time.Time
	ModifiedAt      *time.Time
	Author          *string
	Tags            []string
	MimeType        *string
	Extra           map[string]string
}

// Copy returns a new Metadata with the given fields replaced. Copy(Changes{})
// equals m, field for field.
func (m Metadata) Copy(c Changes) Metadata {
	out := m
	out.Tags = append([]string(nil), m.Tags...)
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}

	if c.SourceURL != nil {
		out.SourceURL = *c.SourceURL
	}
	if c.Location != nil {
		out.Location = *c.Location
	}
	if c.Title != nil {
		out.Title = *c.Title
	}
	if c.ParentID != nil {
		out.ParentID = *c.ParentID
	}
	if c.Description != nil {
		out.Description = *c.Description
	}
	if c.ProcessingState != nil {
		out.ProcessingState = *c.ProcessingState
	}
	if c.IndexedAt != nil {
		out.IndexedAt = c.IndexedAt
	}
	if c.CreatedAt != nil {
		out.CreatedAt = c.CreatedAt
	}
	if c.ModifiedAt != nil {
		out.ModifiedAt = c.ModifiedAt
	}
	if c.Author != nil {
		out.Author = *c.Author
	}
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.MimeType != nil {
		out.MimeType = *c.MimeType
	}
	if c.Extra != nil {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(c.Extra))
		}
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Patch is a partial Metadata used by Merge: non-null scalars win over m's,
// Tags is concatenated (m's first, then patch's), and Extra is deep-merged
// key by key with patch winning on conflicts.
type Patch struct {
	SourceURL       *string
	Location        *string
	Title           *string
	ParentID        *string
	Description     *string
	ProcessingState *ProcessingState
	IndexedAt       *time.Time
	CreatedAt       *time.Time
	ModifiedAt      *time.Time
	Author          *string
	Tags            []string
	MimeType        *string
	Extra           map[string]string
}

// Merge returns a new Metadata where non-null scalars from p win, Tags lists
// are concatenated (m's first), and Extra maps are deep-merged with p's
// values taking precedence on key collisions.
func (m Metadata) Merge(p Patch) Metadata {
	out := m.Copy(Changes{})

	if p.SourceURL != nil {
		out.SourceURL = *p.SourceURL
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.ParentID != nil {
		out.ParentID = *p.ParentID
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.ProcessingState != nil {
		out.ProcessingState = *p.ProcessingState
	}
	if p.IndexedAt != nil {
		out.IndexedAt = p.IndexedAt
	}
	if p.CreatedAt != nil {
		out.CreatedAt = p.CreatedAt
	}
	if p.ModifiedAt != nil {
		out.ModifiedAt = p.ModifiedAt
	}
	if p.Author != nil {
		out.Author = *p.Author
	}
	if len(p.Tags) > 0 {
		out.Tags = append(append([]string(nil), out.Tags...), p.Tags...)
	}
	if p.MimeType != nil {
		out.MimeType = *p.MimeType
	}
	if len(p.Extra) > 0 {
		merged := map[string]string{}
		for k, v := range out.Extra {
			merged[k] = v
		}
		// mergo deep-merges maps of compatible types; WithOverride lets
		// patch values win on key collisions, matching the merge semantics
		// the configuration subsystem uses for its own tree merge.
		_ = mergo.Merge(&merged, p.Extra, mergo.WithOverride)
		out.Extra = merged
	}
	return out
}

// PatchFromMetadata builds a Patch that merges every non-zero field of m
// (used when a plugin hands back a full Metadata and the caller wants
// merge, not replace, semantics).
func PatchFromMetadata(m Metadata) Patch {
	p := Patch{Tags: m.Tags, Extra: m.Extra}
	if m.SourceURL != "" {
		p.SourceURL = &m.SourceURL
	}
	if m.Location != "" {
		p.Location = &m.Location
	}
	if m.Title != "" {
		p.Title = &m.Title
	}
	if m.ParentID != "" {
		p.ParentID = &m.ParentID
	}
	if m.Description != "" {
		p.Description = &m.Description
	}
	if m.ProcessingState != "" {
		p.ProcessingState = &m.ProcessingState
	}
	p.IndexedAt = m.IndexedAt
	p.CreatedAt = m.CreatedAt
	p.ModifiedAt = m.ModifiedAt
	if m.Author != "" {
		p.Author = &m.Author
	}
	if m.MimeType != "" {
		p.MimeType = &m.MimeType
	}
	return p
}

// FromMap reverses AsMap, reconstructing a Metadata from the dictionary form
// carried in a task payload. Unrecognized keys are ignored; absent keys
// leave the corresponding field at its zero value.
func FromMap(m map[string]interface{}) Metadata {
	var out Metadata
	if v, ok := m["source_url"].(string); ok {
		out.SourceURL = v
	}
	if v, ok := m["location"].(string); ok {
		out.Location = v
	}
	if v, ok := m["title"].(string); ok {
		out.Title = v
	}
	if v, ok := m["parent_id"].(string); ok {
		out.ParentID = v
	}
	if v, ok := m["description"].(string); ok {
		out.Description = v
	}
	if v, ok := m["processing_state"].(string); ok {
		out.ProcessingState = ProcessingState(v)
	}
	if v, ok := m["indexed_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			out.IndexedAt = &t
		}
	}
	if v, ok := m["created_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			out.CreatedAt = &t
		}
	}
	if v, ok := m["modified_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			out.ModifiedAt = &t
		}
	}
	if v, ok := m["author"].(string); ok {
		out.Author = v
	}
	if v, ok := m["mime_type"].(string); ok {
		out.MimeType = v
	}
	if raw, ok := m["tags"].([]interface{}); ok {
		out.Tags = make([]string, 0, len(raw))
		for _, e := range raw {
			if s, ok := e.(string); ok {
				out.Tags = append(out.Tags, s)
			}
		}
	} else if raw, ok := m["tags"].([]string); ok {
		out.Tags = append([]string(nil), raw...)
	}
	if raw, ok := m["extra"].(map[string]string); ok {
		out.Extra = make(map[string]string, len(raw))
		for k, v := range raw {
			out.Extra[k] = v
		}
	} else if raw, ok := m["extra"].(map[string]interface{}); ok {
		out.Extra = make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				out.Extra[k] = s
			}
		}
	}
	return out
}

// AsMap renders Metadata as the field-for-field dictionary form used in
// task payload wire shapes (§6), omitting absent fields.
func (m Metadata) AsMap() map[string]interface{} {
	out := map[string]interface{}{}
	if m.SourceURL != "" {
		out["source_url"] = m.SourceURL
	}
	if m.Location != "" {
		out["location"] = m.Location
	}
	if m.Title != "" {
		out["title"] = m.Title
	}
	if m.ParentID != "" {
		out["parent_id"] = m.ParentID
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.ProcessingState != "" {
		out["processing_state"] = string(m.ProcessingState)
	}
	if m.IndexedAt != nil {
		out["indexed_at"] = m.IndexedAt.Format(time.RFC3339)
	}
	if m.CreatedAt != nil {
		out["created_at"] = m.CreatedAt.Format(time.RFC3339)
	}
	if m.ModifiedAt != nil {
		out["modified_at"] = m.ModifiedAt.Format(time.RFC3339)
	}
	if m.Author != "" {
		out["author"] = m.Author
	}
	if len(m.Tags) > 0 {
		out["tags"] = append([]string(nil), m.Tags...)
	}
	if m.MimeType != "" {
		out["mime_type"] = m.MimeType
	}
	if len(m.Extra) > 0 {
		extra := make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			extra[k] = v
		}
		out["extra"] = extra
	}
	return out
}
