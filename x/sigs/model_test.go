package sigs

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserModel(t *testing.T) {
	kv := store.MemStore()

	bucket := NewBucket()
	pub := crypto.GenPrivKeyEd25519().PublicKey()

	// load fail
	_, err := bucket.GetUser(kv, pub)
	assert.True(t, errors.ErrNotFound.Is(err))

	// create
	user, err := bucket.GetOrCreate(kv, pub)
	require.NoError(t, err)
	assert.NoError(t, user.Validate())
	assert.Equal(t, pub, user.Pubkey)
	assert.Equal(t, int64(0), user.Sequence)

	// set sequence
	assert.Error(t, user.CheckAndIncrementSequence(5))
	assert.NoError(t, user.CheckAndIncrementSequence(0))
	assert.Error(t, user.CheckAndIncrementSequence(0))
	assert.NoError(t, user.CheckAndIncrementSequence(1))
	assert.Equal(t, int64(2), user.Sequence)

	// save and load
	require.NoError(t, bucket.Save(kv, user))
	user2, err := bucket.GetUser(kv, pub)
	require.NoError(t, err)
	assert.Equal(t, user, user2)
}

func TestUserValidation(t *testing.T) {
	// fails with unset pubkey
	u := &UserData{}
	assert.True(t, errors.ErrEmpty.Is(u.Validate()))

	u.Pubkey = crypto.GenPrivKeyEd25519().PublicKey()
	assert.NoError(t, u.Validate())

	// make sure negative sequence throw error
	u.Sequence = -30
	assert.True(t, ErrInvalidSequence.Is(u.Validate()))
	u.Sequence = 17
	assert.NoError(t, u.Validate())
}

func TestSequenceOverflow(t *testing.T) {
	u := &UserData{Pubkey: custody.Address{1}, Sequence: maxSequenceValue}
	err := u.CheckAndIncrementSequence(maxSequenceValue)
	assert.True(t, ErrInvalidSequence.Is(err))
	assert.Equal(t, int64(maxSequenceValue), u.Sequence)
}
