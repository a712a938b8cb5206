package wallet

import (
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/multisig"
	"github.com/tendermint/tendermint/libs/common"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, bank Bank) {
	wallets := NewBucket()
	ops := multisig.NewBucket()
	r.Handle(pathInitWalletMsg, InitWalletHandler{auth: auth, wallets: wallets})
	deposits := NewDepositBucket()
	r.Handle(pathProposeMsg, ProposeHandler{auth: auth, wallets: wallets, ops: ops, deposits: deposits, bank: bank})
	r.Handle(pathFinalizeMsg, FinalizeHandler{wallets: wallets, ops: ops, deposits: deposits, bank: bank})
	r.Handle(pathUpdateConfigurationMsg, gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth, nil))
}

// InitWalletHandler creates a wallet.
type InitWalletHandler struct {
	auth    x.Authenticator
	wallets Bucket
}

var _ custody.Handler = InitWalletHandler{}

// NewInitWalletHandler returns a handler using given authenticator.
func NewInitWalletHandler(auth x.Authenticator) InitWalletHandler {
	return InitWalletHandler{auth: auth, wallets: NewBucket()}
}

func (h InitWalletHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h InitWalletHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, w, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.wallets.Save(db, msg.Wallet, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}

	custody.GetLogger(ctx).Info("wallet created",
		"wallet", msg.Wallet.String(),
		"assistant", msg.Assistant.String(),
		"signers", w.Signers.Count())

	return &custody.DeliverResult{
		Data: msg.Wallet[:],
		Tags: []common.KVPair{
			{Key: []byte("wallet"), Value: []byte(msg.Wallet.String())},
		},
	}, nil
}

// validate does all common pre-processing between Check and Deliver. It
// returns the configured wallet.
func (h InitWalletHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*InitWalletMsg, *Wallet, error) {
	var msg InitWalletMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasSigner(ctx, msg.Assistant) {
		return nil, nil, errors.Wrap(errors.ErrInvalidSignature, "assistant must sign")
	}
	switch exists, err := h.wallets.Exists(db, msg.Wallet); {
	case err != nil:
		return nil, nil, err
	case exists:
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "wallet %s", msg.Wallet)
	}
	w := NewWallet(Signer{Key: msg.Assistant})
	if err := w.Update(&msg.Update); err != nil {
		return nil, nil, errors.Wrap(err, "initial configuration")
	}
	return &msg, w, nil
}

// ProposeHandler opens an operation.
type ProposeHandler struct {
	auth     x.Authenticator
	wallets  Bucket
	ops      multisig.Bucket
	deposits DepositBucket
	bank     Bank
}

var _ custody.Handler = ProposeHandler{}

// NewProposeHandler returns a handler that charges the operation deposit
// using given bank.
func NewProposeHandler(auth x.Authenticator, bank Bank) ProposeHandler {
	return ProposeHandler{
		auth:     auth,
		wallets:  NewBucket(),
		ops:      multisig.NewBucket(),
		deposits: NewDepositBucket(),
		bank:     bank,
	}
}

// proposal is the result of a validated ProposeMsg.
type proposal struct {
	msg    *ProposeMsg
	wallet *Wallet
	op     *multisig.Operation
	conf   Configuration
}

func (h ProposeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	p, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if coin, ok := p.conf.deposit(); ok {
		have, err := h.bank.Balance(db, p.msg.Initiator, coin.Ticker)
		if err != nil {
			return nil, err
		}
		if have < coin.Amount {
			return nil, errors.Wrapf(errors.ErrAmount, "deposit of %s required", coin)
		}
	}
	return &custody.CheckResult{Data: p.op.ParamsHash[:]}, nil
}

func (h ProposeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	p, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if coin, ok := p.conf.deposit(); ok {
		if err := h.deposits.Charge(db, h.bank, p.msg.Initiator, p.msg.Operation, coin); err != nil {
			return nil, errors.Wrap(err, "operation deposit")
		}
	}
	if err := h.ops.Save(db, p.msg.Operation, p.op); err != nil {
		return nil, errors.Wrap(err, "cannot save operation")
	}
	if err := h.wallets.Save(db, p.msg.Wallet, p.wallet); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}

	custody.GetLogger(ctx).Info("operation proposed",
		"wallet", p.msg.Wallet.String(),
		"operation", p.msg.Operation.String(),
		"kind", p.msg.Params.Kind().String(),
		"initiator", p.msg.Initiator.String(),
		"approvers", len(p.op.DispositionRecords),
		"required", p.op.DispositionsRequired,
		"expires", p.op.ExpiresAt.String())

	return &custody.DeliverResult{
		Data: p.op.ParamsHash[:],
		Log:  p.msg.Params.Kind().String(),
		Tags: []common.KVPair{
			{Key: []byte("wallet"), Value: []byte(p.msg.Wallet.String())},
			{Key: []byte("operation"), Value: []byte(p.msg.Operation.String())},
		},
	}, nil
}

// validate does all common pre-processing between Check and Deliver. The
// returned wallet holds the policy lock the operation takes, if any.
func (h ProposeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*proposal, error) {
	var msg ProposeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	now, err := custody.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	w, err := h.wallets.GetWallet(db, msg.Wallet)
	if err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	switch exists, err := h.ops.Exists(db, msg.Operation); {
	case err != nil:
		return nil, err
	case exists:
		return nil, errors.Wrapf(errors.ErrDuplicate, "operation %s", msg.Operation)
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	approvers, required, timeout, err := authorizeInitiator(w, msg.Params, msg.Initiator, h.auth.HasSigner(ctx, msg.Initiator))
	if err != nil {
		return nil, err
	}
	env := &applyEnv{
		ctx:        ctx,
		db:         db,
		wallet:     w,
		walletAddr: msg.Wallet,
		bank:       h.bank,
		conf:       conf,
	}
	if err := msg.Params.check(env); err != nil {
		return nil, errors.Wrapf(err, "%s", msg.Params.Kind())
	}
	if err := msg.Params.lock(w); err != nil {
		return nil, err
	}
	op, err := multisig.NewOperation(approvers, required, now, timeout, msg.Params)
	if err != nil {
		return nil, errors.Wrap(err, "operation")
	}
	return &proposal{msg: &msg, wallet: w, op: op, conf: conf}, nil
}

// authorizeInitiator checks that the initiator may propose params and
// returns the policy the operation is decided by.
func authorizeInitiator(w *Wallet, p Params, initiator custody.Address, signed bool) ([]custody.Address, uint8, time.Duration, error) {
	guid, ok := p.transferAccount()
	if !ok {
		if err := w.ValidateConfigInitiator(initiator, signed); err != nil {
			return nil, 0, 0, err
		}
		approvers, required, timeout := w.ConfigPolicy()
		return approvers, required, timeout, nil
	}
	account, err := w.BalanceAccount(guid)
	if err != nil {
		return nil, 0, 0, err
	}
	if err := w.ValidateTransferInitiator(account, initiator, signed); err != nil {
		return nil, 0, 0, err
	}
	return w.TransferApproverKeys(account), account.ApprovalsRequiredForTransfer, account.ApprovalTimeoutForTransfer, nil
}

// FinalizeHandler closes an operation and applies it if it was approved.
type FinalizeHandler struct {
	wallets  Bucket
	ops      multisig.Bucket
	deposits DepositBucket
	bank     Bank
}

var _ custody.Handler = FinalizeHandler{}

// NewFinalizeHandler returns a handler that applies operations using given
// bank.
func NewFinalizeHandler(bank Bank) FinalizeHandler {
	return FinalizeHandler{
		wallets:  NewBucket(),
		ops:      multisig.NewBucket(),
		deposits: NewDepositBucket(),
		bank:     bank,
	}
}

func (h FinalizeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h FinalizeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, w, op, approved, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	if err := msg.Params.unlock(w); err != nil {
		return nil, errors.Wrap(err, "unlock")
	}
	if approved {
		env := &applyEnv{
			ctx:        ctx,
			db:         db,
			wallet:     w,
			walletAddr: msg.Wallet,
			bank:       h.bank,
			conf:       conf,
		}
		if err := msg.Params.apply(env); err != nil {
			return nil, errors.Wrapf(err, "apply %s", msg.Params.Kind())
		}
	}
	if err := h.wallets.Save(db, msg.Wallet, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}
	if err := h.ops.Close(db, msg.Operation); err != nil {
		return nil, errors.Wrap(err, "cannot close operation")
	}
	refund, err := h.deposits.Refund(db, h.bank, msg.Operation, msg.Collector)
	if err != nil {
		return nil, errors.Wrap(err, "refund")
	}

	reason := op.CloseReason(now)
	logger := custody.GetLogger(ctx).With(
		"wallet", msg.Wallet.String(),
		"operation", msg.Operation.String(),
		"kind", msg.Params.Kind().String(),
		"refund", refund.String())
	if reason != nil {
		logger.Info("operation closed", "reason", reason.Error())
	} else {
		logger.Info("operation applied")
	}

	return &custody.DeliverResult{
		Data: []byte{uint8(op.OperationDisposition)},
		Log:  op.OperationDisposition.String(),
		Tags: []common.KVPair{
			{Key: []byte("wallet"), Value: []byte(msg.Wallet.String())},
			{Key: []byte("operation"), Value: []byte(msg.Operation.String())},
		},
	}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h FinalizeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*FinalizeMsg, *Wallet, *multisig.Operation, bool, error) {
	var msg FinalizeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, false, errors.Wrap(err, "load msg")
	}
	now, err := custody.BlockTime(ctx)
	if err != nil {
		return nil, nil, nil, false, err
	}
	op, err := h.ops.GetOperation(db, msg.Operation)
	if err != nil {
		return nil, nil, nil, false, errors.Wrap(err, "operation")
	}
	approved, err := op.Finalize(msg.Params, now)
	if err != nil {
		return nil, nil, nil, false, err
	}
	w, err := h.wallets.GetWallet(db, msg.Wallet)
	if err != nil {
		return nil, nil, nil, false, errors.Wrap(err, "wallet")
	}
	return &msg, w, op, approved, nil
}
