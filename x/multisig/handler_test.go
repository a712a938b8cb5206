package multisig

import (
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/stretchr/testify/require"
)

func TestSetDispositionHandler(t *testing.T) {
	now := time.Unix(1600000000, 0)
	params := rawParams("handler")
	keys := approvers(2)
	opAddr := custodytest.SequenceAddress(200)

	cases := map[string]struct {
		signer      custody.Address
		msg         SetDispositionMsg
		blockTime   time.Time
		wantErr     *errors.Error
		wantOutcome OperationDisposition
	}{
		"approve": {
			signer:      keys[0],
			msg:         SetDispositionMsg{Operation: opAddr, Approver: keys[0], Disposition: DispositionApprove, ParamsHash: HashParams(params)},
			blockTime:   now,
			wantOutcome: OperationApproved,
		},
		"deny": {
			signer:      keys[1],
			msg:         SetDispositionMsg{Operation: opAddr, Approver: keys[1], Disposition: DispositionDeny, ParamsHash: HashParams(params)},
			blockTime:   now,
			wantOutcome: OperationNone,
		},
		"approver did not sign": {
			signer:    keys[1],
			msg:       SetDispositionMsg{Operation: opAddr, Approver: keys[0], Disposition: DispositionApprove, ParamsHash: HashParams(params)},
			blockTime: now,
			wantErr:   errors.ErrInvalidSignature,
		},
		"unknown operation": {
			signer:    keys[0],
			msg:       SetDispositionMsg{Operation: custodytest.SequenceAddress(201), Approver: keys[0], Disposition: DispositionApprove, ParamsHash: HashParams(params)},
			blockTime: now,
			wantErr:   errors.ErrNotFound,
		},
		"wrong params hash": {
			signer:    keys[0],
			msg:       SetDispositionMsg{Operation: opAddr, Approver: keys[0], Disposition: DispositionApprove, ParamsHash: HashParams(rawParams("other"))},
			blockTime: now,
			wantErr:   errors.ErrParamsHashMismatch,
		},
		"expired": {
			signer:    keys[0],
			msg:       SetDispositionMsg{Operation: opAddr, Approver: keys[0], Disposition: DispositionApprove, ParamsHash: HashParams(params)},
			blockTime: now.Add(time.Hour),
			wantErr:   errors.ErrExpired,
		},
		"invalid disposition": {
			signer:    keys[0],
			msg:       SetDispositionMsg{Operation: opAddr, Approver: keys[0], Disposition: DispositionNone, ParamsHash: HashParams(params)},
			blockTime: now,
			wantErr:   errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			bucket := NewBucket()
			op, err := NewOperation(keys, 1, now, time.Hour, params)
			require.NoError(t, err)
			require.NoError(t, bucket.Save(db, opAddr, op))

			h := NewSetDispositionHandler(&custodytest.Auth{Signer: tc.signer})
			ctx := custodytest.Context(tc.blockTime)
			msg := tc.msg
			tx := &custodytest.Tx{Msg: &msg}

			_, err = h.Check(ctx, db, tx)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "unexpected check error: %+v", err)
			} else {
				require.NoError(t, err)
			}

			res, err := h.Deliver(ctx, db, tx)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "unexpected deliver error: %+v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []byte{uint8(tc.wantOutcome)}, res.Data)

			stored, err := bucket.GetOperation(db, opAddr)
			require.NoError(t, err)
			require.Equal(t, tc.wantOutcome, stored.OperationDisposition)
		})
	}
}

func TestSetDispositionMsgValidate(t *testing.T) {
	msg := SetDispositionMsg{Disposition: 7}
	err := msg.Validate()
	require.True(t, errors.ErrEmpty.Is(err))
	require.True(t, errors.ErrInput.Is(err))

	valid := SetDispositionMsg{
		Operation:   custodytest.SequenceAddress(1),
		Approver:    custodytest.SequenceAddress(2),
		Disposition: DispositionDeny,
	}
	require.NoError(t, valid.Validate())
	raw, err := valid.Marshal()
	require.NoError(t, err)
	require.Len(t, raw, 2*custody.AddressLength+1+32)
}
