package multisig

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/tendermint/tendermint/libs/common"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator) {
	r.Handle(pathSetDispositionMsg, SetDispositionHandler{auth: auth, bucket: NewBucket()})
}

// SetDispositionHandler records the vote of an approver.
type SetDispositionHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ custody.Handler = SetDispositionHandler{}

// NewSetDispositionHandler returns a handler using given authenticator.
func NewSetDispositionHandler(auth x.Authenticator) SetDispositionHandler {
	return SetDispositionHandler{auth: auth, bucket: NewBucket()}
}

func (h SetDispositionHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h SetDispositionHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, op, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Save(db, msg.Operation, op); err != nil {
		return nil, errors.Wrap(err, "cannot save operation")
	}

	custody.GetLogger(ctx).Info("disposition recorded",
		"operation", msg.Operation.String(),
		"approver", msg.Approver.String(),
		"disposition", msg.Disposition.String(),
		"outcome", op.OperationDisposition.String())

	return &custody.DeliverResult{
		Data: []byte{uint8(op.OperationDisposition)},
		Log:  op.OperationDisposition.String(),
		Tags: []common.KVPair{
			{Key: []byte("operation"), Value: []byte(msg.Operation.String())},
			{Key: []byte("approver"), Value: []byte(msg.Approver.String())},
		},
	}, nil
}

// validate does all common pre-processing between Check and Deliver. It
// returns the operation with the vote applied.
func (h SetDispositionHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*SetDispositionMsg, *Operation, error) {
	var msg SetDispositionMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasSigner(ctx, msg.Approver) {
		return nil, nil, errors.Wrap(errors.ErrInvalidSignature, "approver must sign")
	}
	now, err := custody.BlockTime(ctx)
	if err != nil {
		return nil, nil, err
	}
	op, err := h.bucket.GetOperation(db, msg.Operation)
	if err != nil {
		return nil, nil, errors.Wrap(err, "operation")
	}
	if err := op.SetDisposition(msg.Approver, msg.Disposition, msg.ParamsHash, now); err != nil {
		return nil, nil, err
	}
	return &msg, op, nil
}
