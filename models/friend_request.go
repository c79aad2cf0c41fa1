// File: /models/friend_request.go
package models

import (
	"fmt"
	"time"

	"serenity-api/store"
)

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// FriendRequest is one directional friendship proposal. Requests are
// created pending and only ever move to accepted or rejected; both are
// terminal and requests are never deleted.
type FriendRequest struct {
	ID         string              `json:"id"`
	FromUserID string              `json:"from_user_id"`
	ToUserID   string              `json:"to_user_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Terminal reports whether the request has reached a final state.
func (r *FriendRequest) Terminal() bool {
	return r.Status == FriendRequestStatusAccepted || r.Status == FriendRequestStatusRejected
}

// Fields flattens the request into document fields for the store.
func (r *FriendRequest) Fields() map[string]interface{} {
	return map[string]interface{}{
		"from_user_id": r.FromUserID,
		"to_user_id":   r.ToUserID,
		"status":       string(r.Status),
	}
}

// FriendRequestFromDocument maps an untyped store document onto a
// FriendRequest, rejecting unknown status values at the boundary.
func FriendRequestFromDocument(doc *store.Document) (*FriendRequest, error) {
	if doc == nil {
		return nil, fmt.Errorf("friend request: nil document")
	}

	status := FriendRequestStatus(stringField(doc.Fields, "status"))
	switch status {
	case FriendRequestStatusPending, FriendRequestStatusAccepted, FriendRequestStatusRejected:
	default:
		return nil, fmt.Errorf("friend request %s: unknown status %q", doc.ID, status)
	}

	return &FriendRequest{
		ID:         doc.ID,
		FromUserID: stringField(doc.Fields, "from_user_id"),
		ToUserID:   stringField(doc.Fields, "to_user_id"),
		Status:     status,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// FriendRequestWithSender joins a pending request with the sender's
// profile for inbox listings.
type FriendRequestWithSender struct {
	Request *FriendRequest `json:"request"`
	Sender  *Profile       `json:"sender"`
}
