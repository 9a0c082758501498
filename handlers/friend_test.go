package handlers

import (
	"testing"

	"linkup/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFriendCounterparts_PicksTheOtherSideOfEachRow(t *testing.T) {
	req := require.New(t)
	me := primitive.NewObjectID()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	friendships := []models.Friendship{
		{RequesterID: me, ReceiverID: a, Status: models.FriendshipAccepted},
		{RequesterID: b, ReceiverID: me, Status: models.FriendshipAccepted},
	}

	req.Equal([]primitive.ObjectID{a, b}, friendCounterparts(me, friendships))
	req.Empty(friendCounterparts(me, nil))
}

func TestFriendEntry_UsesBatchedProfileWhenPresent(t *testing.T) {
	req := require.New(t)
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()
	f := models.Friendship{RequesterID: other, ReceiverID: me, Status: models.FriendshipPending, CreatedAt: 42}

	profiles := map[primitive.ObjectID]models.User{
		other: {ID: other, Name: "Ada", Avatar: "https://example.com/a.png"},
	}

	entry := friendEntry(me, f, profiles)
	req.Equal(other.Hex(), entry["id"])
	req.Equal("Ada", entry["name"])
	req.Equal("https://example.com/a.png", entry["avatar"])
	req.Equal(models.FriendshipPending, entry["status"])
	req.Equal(other.Hex(), entry["requesterId"])
	req.Equal(me.Hex(), entry["receiverId"])
}

func TestFriendEntry_FallsBackWhenProfileIsGone(t *testing.T) {
	req := require.New(t)
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()
	f := models.Friendship{RequesterID: me, ReceiverID: other, Status: models.FriendshipAccepted}

	entry := friendEntry(me, f, map[primitive.ObjectID]models.User{})
	req.Equal("User "+other.Hex(), entry["name"])
	req.Equal(fallbackAvatar, entry["avatar"])
}
