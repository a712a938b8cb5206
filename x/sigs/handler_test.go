package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestBumpSequence(t *testing.T) {
	var (
		key1 = custodytest.NewAddress()
		key2 = custodytest.NewAddress()
	)

	cases := map[string]struct {
		// Before performing the test, initialize the database with given user data.
		InitData       []*UserData
		Msg            BumpSequenceMsg
		Signers        []custody.Address
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error
		// WantSequence sequence values should be tested for being one
		// smaller than expected. This is usual transaction processing
		// will additionally increment sequence. That is why handler
		// increments it by the requested value - 1.
		WantSequences []*UserData
	}{
		"great success": {
			InitData: []*UserData{
				{Pubkey: key1, Sequence: 1},
				{Pubkey: key2, Sequence: 9},
			},
			Signers: []custody.Address{key1},
			Msg:     BumpSequenceMsg{Increment: 2},
			WantSequences: []*UserData{
				{Pubkey: key1, Sequence: 2},
				{Pubkey: key2, Sequence: 9},
			},
		},
		"incrementing sequence of the main signer": {
			InitData: []*UserData{
				{Pubkey: key1, Sequence: 1},
				{Pubkey: key2, Sequence: 9},
			},
			Signers: []custody.Address{
				key2, // Main signer.
				key1,
			},
			Msg: BumpSequenceMsg{Increment: 2},
			WantSequences: []*UserData{
				{Pubkey: key1, Sequence: 1},
				{Pubkey: key2, Sequence: 10},
			},
		},
		"transaction with a missing signature is rejected": {
			Msg:            BumpSequenceMsg{Increment: 1},
			Signers:        nil,
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"message with a zero sequence increment is invalid": {
			InitData: []*UserData{
				{Pubkey: key1, Sequence: 1},
			},
			Signers:        []custody.Address{key1},
			Msg:            BumpSequenceMsg{Increment: 0},
			WantCheckErr:   errors.ErrMsg,
			WantDeliverErr: errors.ErrMsg,
		},
		"user that we increment the sequence of must exist": {
			InitData: []*UserData{
				{Pubkey: key2, Sequence: 4},
			},
			Signers:        []custody.Address{key1},
			Msg:            BumpSequenceMsg{Increment: 421},
			WantCheckErr:   errors.ErrNotFound,
			WantDeliverErr: errors.ErrNotFound,
		},
		"sequence increment value must not be greater than 1000": {
			InitData: []*UserData{
				{Pubkey: key1, Sequence: 4},
			},
			Signers:        []custody.Address{key1},
			Msg:            BumpSequenceMsg{Increment: 1001},
			WantCheckErr:   errors.ErrMsg,
			WantDeliverErr: errors.ErrMsg,
		},
		"sequence increment value can be 1000": {
			InitData: []*UserData{
				{Pubkey: key1, Sequence: 4},
			},
			Signers: []custody.Address{key1},
			Msg:     BumpSequenceMsg{Increment: 1000},
			WantSequences: []*UserData{
				{Pubkey: key1, Sequence: 1003},
			},
		},
		"successful sequence increment before counter overflow": {
			InitData: []*UserData{
				{Pubkey: key1, Sequence: maxSequenceValue - 20},
			},
			Signers: []custody.Address{key1},
			Msg:     BumpSequenceMsg{Increment: 20},
			WantSequences: []*UserData{
				{Pubkey: key1, Sequence: maxSequenceValue - 1},
			},
		},
		"sequence increment value overflow": {
			InitData: []*UserData{
				{Pubkey: key1, Sequence: maxSequenceValue - 20},
			},
			Signers:        []custody.Address{key1},
			Msg:            BumpSequenceMsg{Increment: 21},
			WantCheckErr:   ErrInvalidSequence,
			WantDeliverErr: ErrInvalidSequence,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			bucket := NewBucket()
			db := store.MemStore()

			for i, data := range tc.InitData {
				if err := bucket.Save(db, data); err != nil {
					t.Fatalf("cannot save %d user: %s", i, err)
				}
			}

			auth := &custodytest.CtxAuth{Key: "auth"}
			handler := bumpSequenceHandler{
				b:    bucket,
				auth: auth,
			}
			ctx := auth.SetSigners(context.Background(), tc.Signers...)
			tx := custodytest.Tx{Msg: &tc.Msg}

			cache := db.CacheWrap()
			if _, err := handler.Check(ctx, cache, &tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()

			if _, err := handler.Deliver(ctx, db, &tx); !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.WantDeliverErr != nil {
				// If we expect an error than it make no sense to continue the flow.
				return
			}

			for i, want := range tc.WantSequences {
				got, err := bucket.GetUser(db, want.Pubkey)
				if err != nil {
					t.Fatalf("cannot get %d user: %s", i, err)
				}
				if got.Sequence != want.Sequence {
					t.Errorf("unexpected %d sequence: want %d, got %d", i, want.Sequence, got.Sequence)
				}
			}
		})
	}
}
