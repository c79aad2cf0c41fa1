package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serenity-api/models"
	"serenity-api/store"
)

// faultStore wraps a DocumentStore and fails selected operations, to
// exercise the partial-failure behavior of multi-write flows.
type faultStore struct {
	store.DocumentStore
	failUpdate func(collection, id string) error
	failGet    func(collection, id string) error
}

func (f *faultStore) UpdateDocument(ctx context.Context, collection, id string, fields map[string]interface{}) (*store.Document, error) {
	if f.failUpdate != nil {
		if err := f.failUpdate(collection, id); err != nil {
			return nil, err
		}
	}
	return f.DocumentStore.UpdateDocument(ctx, collection, id, fields)
}

func (f *faultStore) GetDocument(ctx context.Context, collection, id string) (*store.Document, error) {
	if f.failGet != nil {
		if err := f.failGet(collection, id); err != nil {
			return nil, err
		}
	}
	return f.DocumentStore.GetDocument(ctx, collection, id)
}

func newFriendFixture(t *testing.T) (context.Context, store.DocumentStore, *ProfileService, *FriendService) {
	t.Helper()

	ctx := context.Background()
	docs := store.NewMemoryStore()
	profiles := NewProfileService(docs)
	friends := NewFriendService(docs, profiles)

	for _, userID := range []string{"alice", "bob"} {
		_, err := profiles.CreateIfAbsent(ctx, userID, ProfileSeed{Name: userID, Email: userID + "@example.com"})
		require.NoError(t, err)
	}

	return ctx, docs, profiles, friends
}

func TestSendCreatesPendingRequest(t *testing.T) {
	ctx, _, _, friends := newFriendFixture(t)

	request, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestStatusPending, request.Status)
	assert.Equal(t, "alice", request.FromUserID)
	assert.Equal(t, "bob", request.ToUserID)
	assert.NotEmpty(t, request.ID)
}

func TestSendToSelfRejected(t *testing.T) {
	ctx, _, _, friends := newFriendFixture(t)

	_, err := friends.Send(ctx, "alice", "alice")
	assert.Error(t, err)
}

func TestSendAllowsDuplicates(t *testing.T) {
	// No duplicate or existing-relationship check is made on send;
	// repeated pending requests for the same pair are all created.
	ctx, _, _, friends := newFriendFixture(t)

	first, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)
	second, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	pending, err := friends.ListPendingFor(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestAcceptMakesFriendshipSymmetric(t *testing.T) {
	ctx, _, profiles, friends := newFriendFixture(t)

	request, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, friends.Accept(ctx, request.ID, "alice", "bob"))

	alice, err := profiles.GetByUserID(ctx, "alice")
	require.NoError(t, err)
	bob, err := profiles.GetByUserID(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, []string{"bob"}, alice.Friends)
	assert.Equal(t, []string{"alice"}, bob.Friends)
}

func TestAcceptTwiceFailsWithInvalidState(t *testing.T) {
	ctx, _, profiles, friends := newFriendFixture(t)

	request, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, friends.Accept(ctx, request.ID, "alice", "bob"))

	err = friends.Accept(ctx, request.ID, "alice", "bob")
	assert.ErrorIs(t, err, ErrInvalidState)

	// Friend lists unchanged by the failed second accept.
	alice, err := profiles.GetByUserID(ctx, "alice")
	require.NoError(t, err)
	bob, err := profiles.GetByUserID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, alice.Friends)
	assert.Equal(t, []string{"alice"}, bob.Friends)
}

func TestAcceptDedupesFriendLists(t *testing.T) {
	ctx, _, profiles, friends := newFriendFixture(t)

	first, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)
	second, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, friends.Accept(ctx, first.ID, "alice", "bob"))
	require.NoError(t, friends.Accept(ctx, second.ID, "alice", "bob"))

	alice, err := profiles.GetByUserID(ctx, "alice")
	require.NoError(t, err)
	bob, err := profiles.GetByUserID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, alice.Friends)
	assert.Equal(t, []string{"alice"}, bob.Friends)
}

func TestAcceptRejectsMismatchedParticipants(t *testing.T) {
	ctx, docs, profiles, friends := newFriendFixture(t)

	_, err := profiles.CreateIfAbsent(ctx, "mallory", ProfileSeed{Name: "mallory", Email: "mallory@example.com"})
	require.NoError(t, err)

	request, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	// Wrong recipient and wrong sender both fail, even though the
	// request itself exists and is pending.
	err = friends.Accept(ctx, request.ID, "alice", "mallory")
	assert.ErrorIs(t, err, store.ErrNotFound)
	err = friends.Accept(ctx, request.ID, "mallory", "bob")
	assert.ErrorIs(t, err, store.ErrNotFound)

	doc, err := docs.GetDocument(ctx, store.CollectionFriendRequests, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", doc.Fields["status"])

	for _, userID := range []string{"alice", "bob", "mallory"} {
		profile, err := profiles.GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, profile.Friends)
	}

	// The true pair can still accept afterwards.
	require.NoError(t, friends.Accept(ctx, request.ID, "alice", "bob"))
}

func TestAcceptMissingProfileFailsBeforeAnyWrite(t *testing.T) {
	ctx, docs, _, friends := newFriendFixture(t)

	request, err := friends.Send(ctx, "alice", "ghost")
	require.NoError(t, err)

	err = friends.Accept(ctx, request.ID, "alice", "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The request must still be pending: no write happened.
	doc, err := docs.GetDocument(ctx, store.CollectionFriendRequests, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", doc.Fields["status"])
}

func TestAcceptPartialFailureLeavesAsymmetricState(t *testing.T) {
	// The store has no cross-document transactions. If the second
	// profile write fails, the request is already accepted and the
	// first profile already gained the friend; nothing rolls back.
	ctx := context.Background()
	docs := store.NewMemoryStore()

	boom := errors.New("backend unavailable")
	faulty := &faultStore{
		DocumentStore: docs,
		failUpdate: func(collection, id string) error {
			if collection == store.CollectionProfiles && id == "bob" {
				return boom
			}
			return nil
		},
	}

	profiles := NewProfileService(faulty)
	friends := NewFriendService(faulty, profiles)

	for _, userID := range []string{"alice", "bob"} {
		_, err := profiles.CreateIfAbsent(ctx, userID, ProfileSeed{Name: userID, Email: userID + "@example.com"})
		require.NoError(t, err)
	}

	request, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	err = friends.Accept(ctx, request.ID, "alice", "bob")
	require.ErrorIs(t, err, boom)

	// Request ended accepted despite the failure.
	doc, err := docs.GetDocument(ctx, store.CollectionFriendRequests, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", doc.Fields["status"])

	// Alice gained the friend, Bob did not: the exact asymmetric
	// outcome the design leaves behind.
	alice, err := profiles.GetByUserID(ctx, "alice")
	require.NoError(t, err)
	bob, err := profiles.GetByUserID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, alice.Friends)
	assert.Empty(t, bob.Friends)
}

func TestRejectIsTerminalAndNeverTouchesFriends(t *testing.T) {
	ctx, _, profiles, friends := newFriendFixture(t)

	request, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, friends.Reject(ctx, request.ID))

	// Rejecting again, or accepting, fails from the terminal state.
	assert.ErrorIs(t, friends.Reject(ctx, request.ID), ErrInvalidState)
	assert.ErrorIs(t, friends.Accept(ctx, request.ID, "alice", "bob"), ErrInvalidState)

	alice, err := profiles.GetByUserID(ctx, "alice")
	require.NoError(t, err)
	bob, err := profiles.GetByUserID(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, alice.Friends)
	assert.Empty(t, bob.Friends)
}

func TestListPendingForJoinsSenderProfile(t *testing.T) {
	ctx, _, _, friends := newFriendFixture(t)

	request, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	pending, err := friends.ListPendingFor(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, request.ID, pending[0].Request.ID)
	require.NotNil(t, pending[0].Sender)
	assert.Equal(t, "alice", pending[0].Sender.UserID)

	// Accepted requests drop out of the pending inbox.
	require.NoError(t, friends.Accept(ctx, request.ID, "alice", "bob"))
	pending, err = friends.ListPendingFor(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListPendingForEmptyInbox(t *testing.T) {
	ctx, _, _, friends := newFriendFixture(t)

	pending, err := friends.ListPendingFor(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRemoveFriendIsAsymmetric(t *testing.T) {
	ctx, _, profiles, friends := newFriendFixture(t)

	request, err := friends.Send(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, friends.Accept(ctx, request.ID, "alice", "bob"))

	require.NoError(t, friends.RemoveFriend(ctx, "alice", "bob"))

	alice, err := profiles.GetByUserID(ctx, "alice")
	require.NoError(t, err)
	bob, err := profiles.GetByUserID(ctx, "bob")
	require.NoError(t, err)

	// Only alice's side changes; bob still lists alice.
	assert.Empty(t, alice.Friends)
	assert.Equal(t, []string{"alice"}, bob.Friends)
}

func TestRemoveFriendMissingProfile(t *testing.T) {
	ctx, _, _, friends := newFriendFixture(t)

	err := friends.RemoveFriend(ctx, "ghost", "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
