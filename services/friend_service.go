// File: /services/friend_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"serenity-api/models"
	"serenity-api/store"
)

// ErrInvalidState is returned when a friend request transition is
// attempted from a terminal state.
var ErrInvalidState = errors.New("friend request is not pending")

// FriendService owns the friend-request state machine and the
// friend-list synchronization between profile documents.
//
// The store has no cross-document transactions, so Accept performs
// three independent writes in sequence. A failure after the first
// write leaves the request accepted while one or both friend lists are
// stale; the error surfaces to the caller and no rollback or retry is
// attempted.
type FriendService struct {
	docs     store.DocumentStore
	profiles *ProfileService
}

func NewFriendService(docs store.DocumentStore, profiles *ProfileService) *FriendService {
	return &FriendService{docs: docs, profiles: profiles}
}

// Send creates a new pending request from fromUserID to toUserID.
// No existing-relationship check is made: duplicate pending requests
// and requests between users who are already friends are allowed,
// matching the historical behavior clients depend on.
func (s *FriendService) Send(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	if fromUserID == toUserID {
		return nil, fmt.Errorf("cannot send friend request to yourself")
	}

	request := &models.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     models.FriendRequestStatusPending,
	}

	doc, err := s.docs.CreateDocument(ctx, store.CollectionFriendRequests, store.AutoID, request.Fields())
	if err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"request_id": doc.ID,
		"from":       fromUserID,
		"to":         toUserID,
	}).Info("friend request sent")

	return models.FriendRequestFromDocument(doc)
}

// Accept marks the request accepted and adds each user to the other's
// friend list. Writes land in order: request status, then the sender's
// profile, then the recipient's. On full success the friendship is
// symmetric; on partial failure the error is returned with whatever
// state the earlier writes left behind.
func (s *FriendService) Accept(ctx context.Context, requestID, fromUserID, toUserID string) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != models.FriendRequestStatusPending {
		return fmt.Errorf("accept request %s: %w", requestID, ErrInvalidState)
	}
	// The caller-supplied pair must be exactly the request's endpoints;
	// otherwise any user could accept on behalf of another pair.
	if request.FromUserID != fromUserID || request.ToUserID != toUserID {
		return fmt.Errorf("accept request %s: participants do not match: %w", requestID, store.ErrNotFound)
	}

	fromProfile, err := s.profiles.GetByUserID(ctx, fromUserID)
	if err != nil {
		return err
	}
	toProfile, err := s.profiles.GetByUserID(ctx, toUserID)
	if err != nil {
		return err
	}
	if fromProfile == nil || toProfile == nil {
		return fmt.Errorf("accept request %s: profile: %w", requestID, store.ErrNotFound)
	}

	// Write #1: request status. From here on the request is terminal
	// even if the friend-list writes below fail.
	if _, err := s.docs.UpdateDocument(ctx, store.CollectionFriendRequests, requestID, map[string]interface{}{
		"status": string(models.FriendRequestStatusAccepted),
	}); err != nil {
		return fmt.Errorf("accept request %s: %w", requestID, err)
	}

	// Writes #2 and #3: friend lists, deduped as sets.
	if _, err := s.profiles.Update(ctx, fromUserID, map[string]interface{}{
		"friends": fromProfile.WithFriend(toUserID),
	}); err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    fromUserID,
		}).Error("friend list write failed after request accepted")
		return err
	}

	if _, err := s.profiles.Update(ctx, toUserID, map[string]interface{}{
		"friends": toProfile.WithFriend(fromUserID),
	}); err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    toUserID,
		}).Error("friend list write failed after request accepted")
		return err
	}

	// Verification read. Confirms the writes landed; not a guarantee
	// against concurrent mutation.
	fromCheck, err := s.profiles.GetByUserID(ctx, fromUserID)
	if err != nil {
		return err
	}
	toCheck, err := s.profiles.GetByUserID(ctx, toUserID)
	if err != nil {
		return err
	}
	if fromCheck == nil || !fromCheck.HasFriend(toUserID) || toCheck == nil || !toCheck.HasFriend(fromUserID) {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("friendship not symmetric after accept")
	}

	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"from":       fromUserID,
		"to":         toUserID,
	}).Info("friend request accepted")

	return nil
}

// Reject marks a pending request rejected. Friend lists are never
// touched on this path.
func (s *FriendService) Reject(ctx context.Context, requestID string) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != models.FriendRequestStatusPending {
		return fmt.Errorf("reject request %s: %w", requestID, ErrInvalidState)
	}

	if _, err := s.docs.UpdateDocument(ctx, store.CollectionFriendRequests, requestID, map[string]interface{}{
		"status": string(models.FriendRequestStatusRejected),
	}); err != nil {
		return fmt.Errorf("reject request %s: %w", requestID, err)
	}

	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
	}).Info("friend request rejected")

	return nil
}

// ListPendingFor returns every pending request addressed to userID,
// each joined with the sender's profile. Senders are fetched one by
// one; inbox sizes make the N+1 acceptable.
func (s *FriendService) ListPendingFor(ctx context.Context, userID string) ([]*models.FriendRequestWithSender, error) {
	docs, err := s.docs.ListDocuments(ctx, store.CollectionFriendRequests, store.Filters{
		"to_user_id": userID,
		"status":     string(models.FriendRequestStatusPending),
	})
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	out := make([]*models.FriendRequestWithSender, 0, len(docs))
	for _, doc := range docs {
		request, err := models.FriendRequestFromDocument(doc)
		if err != nil {
			return nil, err
		}

		sender, err := s.profiles.GetByUserID(ctx, request.FromUserID)
		if err != nil {
			return nil, err
		}

		out = append(out, &models.FriendRequestWithSender{
			Request: request,
			Sender:  sender,
		})
	}

	return out, nil
}

// RemoveFriend removes friendID from userID's friend list only. The
// reverse entry is left in place: removal has always been one-sided in
// stored data and changing it silently would strand existing rows.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("remove friend: profile %s: %w", userID, store.ErrNotFound)
	}

	if _, err := s.profiles.Update(ctx, userID, map[string]interface{}{
		"friends": profile.WithoutFriend(friendID),
	}); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"friend_id": friendID,
	}).Info("friend removed")

	return nil
}

func (s *FriendService) getRequest(ctx context.Context, requestID string) (*models.FriendRequest, error) {
	doc, err := s.docs.GetDocument(ctx, store.CollectionFriendRequests, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("friend request %s: %w", requestID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get friend request %s: %w", requestID, err)
	}

	return models.FriendRequestFromDocument(doc)
}
