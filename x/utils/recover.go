package utils

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Recovery turns a panic of the handler it wraps into an ErrPanic error.
// The panic is logged together with the path of the message that caused
// it and the transaction fails like any other.
type Recovery struct{}

var _ custody.Decorator = Recovery{}

// NewRecovery returns the decorator. It should be the outermost one.
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (_ *custody.CheckResult, err error) {
	defer logPanic(ctx, tx, &err)
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (_ *custody.DeliverResult, err error) {
	defer logPanic(ctx, tx, &err)
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}

// logPanic logs err if it is a recovered panic.
func logPanic(ctx custody.Context, tx custody.Tx, err *error) {
	if !errors.ErrPanic.Is(*err) {
		return
	}
	path := "(missing)"
	if tx != nil {
		path = custody.GetPath(tx)
	}
	custody.GetLogger(ctx).Error("handler panicked", "path", path, "err", *err)
}
