package multisig

import (
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"
)

type rawParams []byte

func (p rawParams) CanonicalBytes() []byte { return p }

func approvers(n int) []custody.Address {
	out := make([]custody.Address, n)
	for i := range out {
		out[i] = custodytest.SequenceAddress(byte(i + 1))
	}
	return out
}

func TestNewOperation(t *testing.T) {
	now := time.Unix(1600000000, 0)
	params := rawParams("transfer")

	cases := map[string]struct {
		approvers []custody.Address
		required  uint8
		timeout   time.Duration
		wantErr   *errors.Error
	}{
		"single approver": {
			approvers: approvers(1),
			required:  1,
			timeout:   time.Hour,
		},
		"maximum approvers": {
			approvers: approvers(MaxApprovers),
			required:  MaxApprovers,
			timeout:   time.Hour,
		},
		"no approvers": {
			approvers: nil,
			required:  1,
			timeout:   time.Hour,
			wantErr:   errors.ErrEmpty,
		},
		"too many approvers": {
			approvers: approvers(MaxApprovers + 1),
			required:  1,
			timeout:   time.Hour,
			wantErr:   errors.ErrInput,
		},
		"duplicated approver": {
			approvers: append(approvers(2), custodytest.SequenceAddress(1)),
			required:  1,
			timeout:   time.Hour,
			wantErr:   errors.ErrDuplicate,
		},
		"zero quorum": {
			approvers: approvers(2),
			required:  0,
			timeout:   time.Hour,
			wantErr:   errors.ErrThreshold,
		},
		"quorum above approvers": {
			approvers: approvers(2),
			required:  3,
			timeout:   time.Hour,
			wantErr:   errors.ErrThreshold,
		},
		"no timeout": {
			approvers: approvers(2),
			required:  1,
			timeout:   0,
			wantErr:   errors.ErrTimeout,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			op, err := NewOperation(tc.approvers, tc.required, now, tc.timeout, params)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, OperationNone, op.OperationDisposition)
			require.Equal(t, HashParams(params), op.ParamsHash)
			require.Equal(t, custody.AsUnixTime(now.Add(tc.timeout)), op.ExpiresAt)
			require.Equal(t, tc.approvers, op.Approvers())
			for _, r := range op.DispositionRecords {
				require.Equal(t, DispositionNone, r.Disposition)
			}
		})
	}
}

func TestHashParamsIsDeterministic(t *testing.T) {
	require.Equal(t, HashParams(rawParams("a")), HashParams(rawParams("a")))
	require.NotEqual(t, HashParams(rawParams("a")), HashParams(rawParams("b")))
}

func TestOperationLifecycle(t *testing.T) {
	Convey("Given a 2 of 3 operation", t, func() {
		now := time.Unix(1600000000, 0)
		params := rawParams("update wallet")
		hash := HashParams(params)
		keys := approvers(3)
		op, err := NewOperation(keys, 2, now, time.Hour, params)
		So(err, ShouldBeNil)

		Convey("it is pending until quorum is reached", func() {
			So(op.SetDisposition(keys[0], DispositionApprove, hash, now), ShouldBeNil)
			So(op.OperationDisposition, ShouldEqual, OperationNone)

			_, err := op.Finalize(params, now)
			So(errors.ErrState.Is(err), ShouldBeTrue)

			So(op.SetDisposition(keys[2], DispositionApprove, hash, now), ShouldBeNil)
			So(op.OperationDisposition, ShouldEqual, OperationApproved)

			approved, err := op.Finalize(params, now)
			So(err, ShouldBeNil)
			So(approved, ShouldBeTrue)
			So(op.CloseReason(now), ShouldBeNil)
		})

		Convey("a decided outcome cannot be changed", func() {
			So(op.SetDisposition(keys[0], DispositionApprove, hash, now), ShouldBeNil)
			So(op.SetDisposition(keys[1], DispositionApprove, hash, now), ShouldBeNil)

			err := op.SetDisposition(keys[1], DispositionDeny, hash, now)
			So(errors.ErrState.Is(err), ShouldBeTrue)

			// Repeating the same vote is accepted.
			So(op.SetDisposition(keys[1], DispositionApprove, hash, now), ShouldBeNil)
			So(op.OperationDisposition, ShouldEqual, OperationApproved)
		})

		Convey("a vote can be changed while pending", func() {
			So(op.SetDisposition(keys[0], DispositionDeny, hash, now), ShouldBeNil)
			So(op.OperationDisposition, ShouldEqual, OperationNone)
			So(op.SetDisposition(keys[0], DispositionApprove, hash, now), ShouldBeNil)
			So(op.DispositionRecords[0].Disposition, ShouldEqual, DispositionApprove)
			So(op.OperationDisposition, ShouldEqual, OperationNone)
		})

		Convey("it is denied once quorum is unreachable", func() {
			So(op.SetDisposition(keys[0], DispositionDeny, hash, now), ShouldBeNil)
			So(op.OperationDisposition, ShouldEqual, OperationNone)
			So(op.SetDisposition(keys[1], DispositionDeny, hash, now), ShouldBeNil)
			So(op.OperationDisposition, ShouldEqual, OperationDenied)

			approved, err := op.Finalize(params, now)
			So(err, ShouldBeNil)
			So(approved, ShouldBeFalse)
			So(errors.ErrUnauthorized.Is(op.CloseReason(now)), ShouldBeTrue)
		})

		Convey("only snapshotted approvers can vote", func() {
			err := op.SetDisposition(custodytest.SequenceAddress(99), DispositionApprove, hash, now)
			So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)
		})

		Convey("votes are bound to the params hash", func() {
			err := op.SetDisposition(keys[0], DispositionApprove, HashParams(rawParams("other")), now)
			So(errors.ErrParamsHashMismatch.Is(err), ShouldBeTrue)
			So(op.DispositionRecords[0].Disposition, ShouldEqual, DispositionNone)
		})

		Convey("none is not a valid vote", func() {
			err := op.SetDisposition(keys[0], DispositionNone, hash, now)
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("votes are rejected once expired", func() {
			expired := now.Add(time.Hour)
			err := op.SetDisposition(keys[0], DispositionApprove, hash, expired)
			So(errors.ErrExpired.Is(err), ShouldBeTrue)

			approved, err := op.Finalize(params, expired)
			So(err, ShouldBeNil)
			So(approved, ShouldBeFalse)
			So(errors.ErrExpired.Is(op.CloseReason(expired)), ShouldBeTrue)
		})

		Convey("finalize requires the original params", func() {
			_, err := op.Finalize(rawParams("tampered"), now)
			So(errors.ErrParamsHashMismatch.Is(err), ShouldBeTrue)
		})
	})
}

func TestTwoOfTwoDeniedBySingleDenial(t *testing.T) {
	now := time.Unix(1600000000, 0)
	params := rawParams("x")
	keys := approvers(2)
	op, err := NewOperation(keys, 2, now, time.Minute, params)
	require.NoError(t, err)

	require.NoError(t, op.SetDisposition(keys[1], DispositionDeny, HashParams(params), now))
	require.Equal(t, OperationDenied, op.OperationDisposition)
}

// Approvals recorded in any order must lead to the same outcome.
func TestOutcomeIsOrderIndependent(t *testing.T) {
	now := time.Unix(1600000000, 0)
	params := rawParams("x")
	hash := HashParams(params)
	keys := approvers(5)
	votes := []ApprovalDisposition{DispositionApprove, DispositionDeny, DispositionApprove, DispositionDeny, DispositionApprove}
	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{1, 3, 0, 2, 4},
	}
	var outcomes []OperationDisposition
	for _, order := range orders {
		op, err := NewOperation(keys, 3, now, time.Minute, params)
		require.NoError(t, err)
		for _, i := range order {
			if op.OperationDisposition != OperationNone {
				break
			}
			require.NoError(t, op.SetDisposition(keys[i], votes[i], hash, now))
		}
		outcomes = append(outcomes, op.OperationDisposition)
	}
	for _, o := range outcomes {
		require.Equal(t, OperationApproved, o)
	}
}
