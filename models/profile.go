// File: /models/profile.go
package models

import (
	"fmt"
	"time"

	"serenity-api/store"
)

// Profile is the application-owned record for a user, keyed by the
// principal's id. Friends is stored as an array but treated as a set:
// every write path must dedupe before persisting.
type Profile struct {
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Avatar    *string    `json:"avatar"`
	Bio       *string    `json:"bio"`
	CleanDate *time.Time `json:"clean_date"`
	Friends   []string   `json:"friends"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasFriend reports whether friendID is already in the friends set.
func (p *Profile) HasFriend(friendID string) bool {
	for _, id := range p.Friends {
		if id == friendID {
			return true
		}
	}
	return false
}

// WithFriend returns the friends array with friendID added, deduped.
func (p *Profile) WithFriend(friendID string) []string {
	if p.HasFriend(friendID) {
		return p.Friends
	}
	return append(append([]string{}, p.Friends...), friendID)
}

// WithoutFriend returns the friends array with friendID removed.
func (p *Profile) WithoutFriend(friendID string) []string {
	out := make([]string, 0, len(p.Friends))
	for _, id := range p.Friends {
		if id != friendID {
			out = append(out, id)
		}
	}
	return out
}

// Fields flattens the profile into document fields for the store.
func (p *Profile) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":       p.Name,
		"email":      p.Email,
		"avatar":     p.Avatar,
		"bio":        p.Bio,
		"clean_date": p.CleanDate,
		"friends":    p.Friends,
	}
}

// ProfileFromDocument maps an untyped store document onto a Profile.
// The store is schemaless, so every field is normalized here rather
// than trusting shapes downstream.
func ProfileFromDocument(doc *store.Document) (*Profile, error) {
	if doc == nil {
		return nil, fmt.Errorf("profile: nil document")
	}

	p := &Profile{
		UserID:    doc.ID,
		Name:      stringField(doc.Fields, "name"),
		Email:     stringField(doc.Fields, "email"),
		Avatar:    optionalStringField(doc.Fields, "avatar"),
		Bio:       optionalStringField(doc.Fields, "bio"),
		CleanDate: timeField(doc.Fields, "clean_date"),
		Friends:   stringSliceField(doc.Fields, "friends"),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	return p, nil
}
