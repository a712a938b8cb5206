package wallet

import (
	"encoding/json"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	pathInitWalletMsg          = "wallet/init"
	pathProposeMsg             = "wallet/propose"
	pathFinalizeMsg            = "wallet/finalize"
	pathUpdateConfigurationMsg = "wallet/update_configuration"
)

// InitWalletMsg creates a wallet. The assistant must sign it.
type InitWalletMsg struct {
	Wallet    custody.Address `json:"wallet"`
	Assistant custody.Address `json:"assistant"`
	Update    WalletUpdate    `json:"update"`
}

var _ custody.Msg = (*InitWalletMsg)(nil)

func (InitWalletMsg) Path() string {
	return pathInitWalletMsg
}

func (m *InitWalletMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Wallet", m.Wallet.Validate())
	errs = errors.AppendField(errs, "Assistant", m.Assistant.Validate())
	errs = errors.AppendField(errs, "Update", validateWalletUpdate(&m.Update))
	if m.Update.ApprovalTimeoutForConfig == 0 {
		errs = errors.AppendField(errs, "Update.ApprovalTimeoutForConfig", errors.ErrTimeout)
	}
	return errs
}

// Marshal returns the bytes covered by the transaction signature.
func (m *InitWalletMsg) Marshal() ([]byte, error) {
	c := &canonical{buf: make([]byte, 0, 256)}
	c.raw(m.Wallet[:])
	c.raw(m.Assistant[:])
	c.walletUpdate(&m.Update)
	return c.bytes(), nil
}

// ProposeMsg opens an operation for a wallet.
type ProposeMsg struct {
	Wallet custody.Address
	// Operation is the address the operation is stored under. It must
	// not be in use.
	Operation custody.Address
	// Initiator must sign the transaction and be allowed to propose
	// the kind of operation.
	Initiator custody.Address
	Params    Params
}

var _ custody.Msg = (*ProposeMsg)(nil)

func (ProposeMsg) Path() string {
	return pathProposeMsg
}

func (m *ProposeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Wallet", m.Wallet.Validate())
	errs = errors.AppendField(errs, "Operation", m.Operation.Validate())
	errs = errors.AppendField(errs, "Initiator", m.Initiator.Validate())
	return errors.AppendField(errs, "Params", validateParams(m.Wallet, m.Params))
}

// Marshal returns the bytes covered by the transaction signature.
func (m *ProposeMsg) Marshal() ([]byte, error) {
	if m.Params == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "params")
	}
	return addressesAndParams(m.Params, m.Wallet, m.Operation, m.Initiator), nil
}

type proposeMsgJSON struct {
	Wallet    custody.Address `json:"wallet"`
	Operation custody.Address `json:"operation"`
	Initiator custody.Address `json:"initiator"`
	Params    json.RawMessage `json:"params"`
}

func (m ProposeMsg) MarshalJSON() ([]byte, error) {
	params, err := MarshalParams(m.Params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(proposeMsgJSON{
		Wallet:    m.Wallet,
		Operation: m.Operation,
		Initiator: m.Initiator,
		Params:    params,
	})
}

func (m *ProposeMsg) UnmarshalJSON(raw []byte) error {
	var j proposeMsgJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	params, err := UnmarshalParams(j.Params)
	if err != nil {
		return err
	}
	*m = ProposeMsg{
		Wallet:    j.Wallet,
		Operation: j.Operation,
		Initiator: j.Initiator,
		Params:    params,
	}
	return nil
}

// FinalizeMsg closes an operation. The params must be the ones the
// operation was proposed with. Anyone can finalize, the deposit goes to the
// collector.
type FinalizeMsg struct {
	Wallet    custody.Address
	Operation custody.Address
	Collector custody.Address
	Params    Params
}

var _ custody.Msg = (*FinalizeMsg)(nil)

func (FinalizeMsg) Path() string {
	return pathFinalizeMsg
}

func (m *FinalizeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Wallet", m.Wallet.Validate())
	errs = errors.AppendField(errs, "Operation", m.Operation.Validate())
	errs = errors.AppendField(errs, "Collector", m.Collector.Validate())
	return errors.AppendField(errs, "Params", validateParams(m.Wallet, m.Params))
}

// Marshal returns the bytes covered by the transaction signature.
func (m *FinalizeMsg) Marshal() ([]byte, error) {
	if m.Params == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "params")
	}
	return addressesAndParams(m.Params, m.Wallet, m.Operation, m.Collector), nil
}

type finalizeMsgJSON struct {
	Wallet    custody.Address `json:"wallet"`
	Operation custody.Address `json:"operation"`
	Collector custody.Address `json:"collector"`
	Params    json.RawMessage `json:"params"`
}

func (m FinalizeMsg) MarshalJSON() ([]byte, error) {
	params, err := MarshalParams(m.Params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(finalizeMsgJSON{
		Wallet:    m.Wallet,
		Operation: m.Operation,
		Collector: m.Collector,
		Params:    params,
	})
}

func (m *FinalizeMsg) UnmarshalJSON(raw []byte) error {
	var j finalizeMsgJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	params, err := UnmarshalParams(j.Params)
	if err != nil {
		return err
	}
	*m = FinalizeMsg{
		Wallet:    j.Wallet,
		Operation: j.Operation,
		Collector: j.Collector,
		Params:    params,
	}
	return nil
}

func validateParams(walletAddr custody.Address, p Params) error {
	if p == nil {
		return errors.ErrEmpty
	}
	if p.WalletAddress() != walletAddr {
		return errors.Wrap(errors.ErrInput, "params belong to another wallet")
	}
	return p.Validate()
}

func addressesAndParams(p Params, addrs ...custody.Address) []byte {
	canon := p.CanonicalBytes()
	out := make([]byte, 0, len(addrs)*custody.AddressLength+len(canon))
	for _, a := range addrs {
		out = append(out, a[:]...)
	}
	return append(out, canon...)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	n, ok := kindNames[k]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown kind %d", k)
	}
	return []byte(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(raw []byte) error {
	for kind, n := range kindNames {
		if n == string(raw) {
			*k = kind
			return nil
		}
	}
	return errors.Wrapf(errors.ErrInput, "unknown kind %q", raw)
}

var paramsOfKind = map[Kind]func() Params{
	KindWalletUpdate:                 func() Params { return &WalletUpdateParams{} },
	KindConfigPolicyUpdate:           func() Params { return &ConfigPolicyUpdateParams{} },
	KindSignerUpdate:                 func() Params { return &SignerUpdateParams{} },
	KindAddressBookUpdate:            func() Params { return &AddressBookUpdateParams{} },
	KindCreateBalanceAccount:         func() Params { return &CreateBalanceAccountParams{} },
	KindBalanceAccountPolicyUpdate:   func() Params { return &BalanceAccountPolicyUpdateParams{} },
	KindBalanceAccountNameUpdate:     func() Params { return &BalanceAccountNameUpdateParams{} },
	KindBalanceAccountSettingsUpdate: func() Params { return &BalanceAccountSettingsUpdateParams{} },
	KindTransfer:                     func() Params { return &TransferParams{} },
	KindWrapUnwrap:                   func() Params { return &WrapUnwrapParams{} },
}

type paramsEnvelope struct {
	Kind   Kind            `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// MarshalParams returns the JSON representation of params tagged with
// their kind.
func MarshalParams(p Params) ([]byte, error) {
	if p == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "params")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return json.Marshal(paramsEnvelope{Kind: p.Kind(), Params: raw})
}

// UnmarshalParams decodes params serialized with MarshalParams.
func UnmarshalParams(raw []byte) (Params, error) {
	var env paramsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	newParams, ok := paramsOfKind[env.Kind]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown kind %d", env.Kind)
	}
	p := newParams()
	if err := json.Unmarshal(env.Params, p); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "%s params: %s", env.Kind, err)
	}
	return p, nil
}
