package wallet

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/multisig"
)

// Kind identifies the type of a proposed operation. It is the first byte of
// the canonical encoding of every Params.
type Kind uint8

const (
	KindWalletUpdate Kind = iota + 1
	KindConfigPolicyUpdate
	KindSignerUpdate
	KindAddressBookUpdate
	KindCreateBalanceAccount
	KindBalanceAccountPolicyUpdate
	KindBalanceAccountNameUpdate
	KindBalanceAccountSettingsUpdate
	KindTransfer
	KindWrapUnwrap
)

var kindNames = map[Kind]string{
	KindWalletUpdate:                 "wallet_update",
	KindConfigPolicyUpdate:           "config_policy_update",
	KindSignerUpdate:                 "signer_update",
	KindAddressBookUpdate:            "address_book_update",
	KindCreateBalanceAccount:         "create_balance_account",
	KindBalanceAccountPolicyUpdate:   "balance_account_policy_update",
	KindBalanceAccountNameUpdate:     "balance_account_name_update",
	KindBalanceAccountSettingsUpdate: "balance_account_settings_update",
	KindTransfer:                     "transfer",
	KindWrapUnwrap:                   "wrap_unwrap",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Params are the parameters of an operation proposed for a wallet. The
// operation hash is computed over CanonicalBytes, so every field that
// changes the effect of an operation is part of it.
type Params interface {
	multisig.Params

	Kind() Kind
	// WalletAddress returns the address of the wallet the operation
	// belongs to.
	WalletAddress() custody.Address
	// Validate performs stateless checks.
	Validate() error

	// transferAccount returns the balance account whose transfer
	// approvers decide. Operations that return false are decided by the
	// config approvers.
	transferAccount() (GUIDHash, bool)
	// check returns an error if the operation cannot be applied to the
	// current state of the wallet. The wallet is not modified.
	check(env *applyEnv) error
	// lock marks the policy update as pending, if the operation needs
	// one.
	lock(w *Wallet) error
	// unlock releases what lock took.
	unlock(w *Wallet) error
	// apply executes the approved operation.
	apply(env *applyEnv) error
}

// applyEnv is what an operation can access when it is checked or applied.
type applyEnv struct {
	ctx        custody.Context
	db         custody.KVStore
	wallet     *Wallet
	walletAddr custody.Address
	bank       Bank
	conf       Configuration
}

// Bank moves assets between addresses.
type Bank interface {
	Balance(db custody.ReadOnlyKVStore, addr custody.Address, ticker string) (uint64, error)
	MoveCoins(db custody.KVStore, src, dst custody.Address, c cash.Coin) error
	IssueCoins(db custody.KVStore, dst custody.Address, c cash.Coin) error
	BurnCoins(db custody.KVStore, src custody.Address, c cash.Coin) error
}

// base holds what every operation carries.
type base struct {
	Wallet custody.Address `json:"wallet"`
}

func (b base) WalletAddress() custody.Address {
	return b.Wallet
}

func (base) transferAccount() (GUIDHash, bool) { return GUIDHash{}, false }

func (base) lock(*Wallet) error { return nil }

func (base) unlock(*Wallet) error { return nil }

func (b base) validate() error {
	return errors.Field("Wallet", b.Wallet.Validate())
}

// accountBase holds what every operation scoped to a balance account
// carries.
type accountBase struct {
	base
	Account GUIDHash `json:"account"`
}

func (a accountBase) validate() error {
	errs := a.base.validate()
	if a.Account.IsZero() {
		errs = errors.AppendField(errs, "Account", errors.ErrEmpty)
	}
	return errs
}

// WalletUpdateParams changes the wallet wide configuration. It changes the
// config policy too, so it holds the same lock as ConfigPolicyUpdateParams.
type WalletUpdateParams struct {
	base
	Update WalletUpdate `json:"update"`
}

var _ Params = (*WalletUpdateParams)(nil)

// NewWalletUpdateParams returns params for given wallet.
func NewWalletUpdateParams(walletAddr custody.Address, u WalletUpdate) *WalletUpdateParams {
	return &WalletUpdateParams{base: base{Wallet: walletAddr}, Update: u}
}

func (*WalletUpdateParams) Kind() Kind { return KindWalletUpdate }

func (p *WalletUpdateParams) Validate() error {
	errs := p.base.validate()
	errs = errors.AppendField(errs, "Update", validateWalletUpdate(&p.Update))
	return errs
}

func (p *WalletUpdateParams) CanonicalBytes() []byte {
	return newCanonical(p).walletUpdate(&p.Update).bytes()
}

func (p *WalletUpdateParams) check(env *applyEnv) error {
	return env.wallet.ValidateUpdate(&p.Update)
}

func (p *WalletUpdateParams) lock(w *Wallet) error {
	return w.LockConfigPolicyUpdates()
}

func (p *WalletUpdateParams) unlock(w *Wallet) error {
	w.UnlockConfigPolicyUpdates()
	return nil
}

func (p *WalletUpdateParams) apply(env *applyEnv) error {
	return env.wallet.Update(&p.Update)
}

// ConfigPolicyUpdateParams changes who approves configuration changes. Only
// one such operation can be pending at a time.
type ConfigPolicyUpdateParams struct {
	base
	Update WalletConfigPolicyUpdate `json:"update"`
}

var _ Params = (*ConfigPolicyUpdateParams)(nil)

// NewConfigPolicyUpdateParams returns params for given wallet.
func NewConfigPolicyUpdateParams(walletAddr custody.Address, u WalletConfigPolicyUpdate) *ConfigPolicyUpdateParams {
	return &ConfigPolicyUpdateParams{base: base{Wallet: walletAddr}, Update: u}
}

func (*ConfigPolicyUpdateParams) Kind() Kind { return KindConfigPolicyUpdate }

func (p *ConfigPolicyUpdateParams) Validate() error {
	errs := p.base.validate()
	if p.Update.ApprovalsRequiredForConfig == 0 {
		errs = errors.AppendField(errs, "Update.ApprovalsRequiredForConfig", errors.ErrThreshold)
	}
	errs = errors.AppendField(errs, "Update.ApprovalTimeoutForConfig", checkRequestedTimeout(p.Update.ApprovalTimeoutForConfig))
	errs = errors.AppendField(errs, "Update.AddConfigApprovers", validateBatchLen(len(p.Update.AddConfigApprovers), MaxSigners))
	errs = errors.AppendField(errs, "Update.RemoveConfigApprovers", validateBatchLen(len(p.Update.RemoveConfigApprovers), MaxSigners))
	return errs
}

func (p *ConfigPolicyUpdateParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.u8(p.Update.ApprovalsRequiredForConfig)
	c.duration(p.Update.ApprovalTimeoutForConfig)
	c.signers(p.Update.AddConfigApprovers)
	c.signers(p.Update.RemoveConfigApprovers)
	return c.bytes()
}

func (p *ConfigPolicyUpdateParams) check(env *applyEnv) error {
	return env.wallet.ValidateConfigPolicyUpdate(&p.Update)
}

func (p *ConfigPolicyUpdateParams) lock(w *Wallet) error {
	return w.LockConfigPolicyUpdates()
}

func (p *ConfigPolicyUpdateParams) unlock(w *Wallet) error {
	w.UnlockConfigPolicyUpdates()
	return nil
}

func (p *ConfigPolicyUpdateParams) apply(env *applyEnv) error {
	return env.wallet.UpdateConfigPolicy(&p.Update)
}

// SignerUpdateParams adds or removes a single signer.
type SignerUpdateParams struct {
	base
	Update SignerUpdate `json:"update"`
}

var _ Params = (*SignerUpdateParams)(nil)

// NewSignerUpdateParams returns params for given wallet.
func NewSignerUpdateParams(walletAddr custody.Address, u SignerUpdate) *SignerUpdateParams {
	return &SignerUpdateParams{base: base{Wallet: walletAddr}, Update: u}
}

func (*SignerUpdateParams) Kind() Kind { return KindSignerUpdate }

func (p *SignerUpdateParams) Validate() error {
	errs := p.base.validate()
	if p.Update.Type > SlotRemove {
		errs = errors.AppendField(errs, "Update.Type", errors.ErrInput)
	}
	if int(p.Update.Slot.ID) >= MaxSigners {
		errs = errors.AppendField(errs, "Update.Slot", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Update.Slot.Value", p.Update.Slot.Value.Key.Validate())
	return errs
}

func (p *SignerUpdateParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.u8(uint8(p.Update.Type))
	c.u8(uint8(p.Update.Slot.ID))
	c.raw(p.Update.Slot.Value.Key[:])
	return c.bytes()
}

func (p *SignerUpdateParams) check(env *applyEnv) error {
	return env.wallet.ValidateSignerUpdate(&p.Update)
}

func (p *SignerUpdateParams) apply(env *applyEnv) error {
	return env.wallet.UpdateSigner(&p.Update)
}

// AddressBookUpdateParams adds and removes address book entries.
type AddressBookUpdateParams struct {
	base
	Update AddressBookUpdate `json:"update"`
}

var _ Params = (*AddressBookUpdateParams)(nil)

// NewAddressBookUpdateParams returns params for given wallet.
func NewAddressBookUpdateParams(walletAddr custody.Address, u AddressBookUpdate) *AddressBookUpdateParams {
	return &AddressBookUpdateParams{base: base{Wallet: walletAddr}, Update: u}
}

func (*AddressBookUpdateParams) Kind() Kind { return KindAddressBookUpdate }

func (p *AddressBookUpdateParams) Validate() error {
	errs := p.base.validate()
	if len(p.Update.AddEntries)+len(p.Update.RemoveEntries) == 0 {
		errs = errors.AppendField(errs, "Update", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Update.AddEntries", validateEntries(p.Update.AddEntries))
	errs = errors.AppendField(errs, "Update.RemoveEntries", validateBatchLen(len(p.Update.RemoveEntries), MaxAddressBookEntries))
	return errs
}

func (p *AddressBookUpdateParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.entries(p.Update.AddEntries)
	c.entries(p.Update.RemoveEntries)
	return c.bytes()
}

func (p *AddressBookUpdateParams) check(env *applyEnv) error {
	return env.wallet.ValidateAddressBookUpdate(&p.Update)
}

func (p *AddressBookUpdateParams) apply(env *applyEnv) error {
	return env.wallet.UpdateAddressBook(&p.Update)
}

// CreateBalanceAccountParams adds a balance account to the wallet.
type CreateBalanceAccountParams struct {
	accountBase
	Creation BalanceAccountCreation `json:"creation"`
}

var _ Params = (*CreateBalanceAccountParams)(nil)

// NewCreateBalanceAccountParams returns params for given wallet.
func NewCreateBalanceAccountParams(walletAddr custody.Address, guid GUIDHash, c BalanceAccountCreation) *CreateBalanceAccountParams {
	return &CreateBalanceAccountParams{
		accountBase: accountBase{base: base{Wallet: walletAddr}, Account: guid},
		Creation:    c,
	}
}

func (*CreateBalanceAccountParams) Kind() Kind { return KindCreateBalanceAccount }

func (p *CreateBalanceAccountParams) Validate() error {
	errs := p.accountBase.validate()
	errs = errors.AppendField(errs, "Creation", validateBalanceAccountUpdate(&p.Creation.BalanceAccountUpdate))
	if p.Creation.ApprovalTimeoutForTransfer == 0 {
		errs = errors.AppendField(errs, "Creation.ApprovalTimeoutForTransfer", errors.ErrTimeout)
	}
	errs = errors.AppendField(errs, "Creation.WhitelistEnabled", p.Creation.WhitelistEnabled.Validate())
	errs = errors.AppendField(errs, "Creation.DAppsEnabled", p.Creation.DAppsEnabled.Validate())
	return errs
}

func (p *CreateBalanceAccountParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.raw(p.Account[:])
	c.balanceAccountUpdate(&p.Creation.BalanceAccountUpdate)
	c.u8(uint8(p.Creation.WhitelistEnabled))
	c.u8(uint8(p.Creation.DAppsEnabled))
	return c.bytes()
}

func (p *CreateBalanceAccountParams) check(env *applyEnv) error {
	return env.wallet.ValidateBalanceAccountCreation(p.Account, &p.Creation)
}

func (p *CreateBalanceAccountParams) apply(env *applyEnv) error {
	return env.wallet.CreateBalanceAccount(p.Account, &p.Creation)
}

// BalanceAccountPolicyUpdateParams changes the policy of a balance account.
// Only one such operation can be pending per balance account.
type BalanceAccountPolicyUpdateParams struct {
	accountBase
	Update BalanceAccountUpdate `json:"update"`
}

var _ Params = (*BalanceAccountPolicyUpdateParams)(nil)

// NewBalanceAccountPolicyUpdateParams returns params for given wallet.
func NewBalanceAccountPolicyUpdateParams(walletAddr custody.Address, guid GUIDHash, u BalanceAccountUpdate) *BalanceAccountPolicyUpdateParams {
	return &BalanceAccountPolicyUpdateParams{
		accountBase: accountBase{base: base{Wallet: walletAddr}, Account: guid},
		Update:      u,
	}
}

func (*BalanceAccountPolicyUpdateParams) Kind() Kind { return KindBalanceAccountPolicyUpdate }

func (p *BalanceAccountPolicyUpdateParams) Validate() error {
	errs := p.accountBase.validate()
	return errors.AppendField(errs, "Update", validateBalanceAccountUpdate(&p.Update))
}

func (p *BalanceAccountPolicyUpdateParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.raw(p.Account[:])
	c.balanceAccountUpdate(&p.Update)
	return c.bytes()
}

func (p *BalanceAccountPolicyUpdateParams) check(env *applyEnv) error {
	return env.wallet.ValidateBalanceAccountUpdate(p.Account, &p.Update)
}

func (p *BalanceAccountPolicyUpdateParams) lock(w *Wallet) error {
	return w.LockBalanceAccountPolicyUpdates(p.Account)
}

func (p *BalanceAccountPolicyUpdateParams) unlock(w *Wallet) error {
	return w.UnlockBalanceAccountPolicyUpdates(p.Account)
}

func (p *BalanceAccountPolicyUpdateParams) apply(env *applyEnv) error {
	return env.wallet.UpdateBalanceAccount(p.Account, &p.Update)
}

// BalanceAccountNameUpdateParams renames a balance account.
type BalanceAccountNameUpdateParams struct {
	accountBase
	Name NameHash `json:"name"`
}

var _ Params = (*BalanceAccountNameUpdateParams)(nil)

// NewBalanceAccountNameUpdateParams returns params for given wallet.
func NewBalanceAccountNameUpdateParams(walletAddr custody.Address, guid GUIDHash, name NameHash) *BalanceAccountNameUpdateParams {
	return &BalanceAccountNameUpdateParams{
		accountBase: accountBase{base: base{Wallet: walletAddr}, Account: guid},
		Name:        name,
	}
}

func (*BalanceAccountNameUpdateParams) Kind() Kind { return KindBalanceAccountNameUpdate }

func (p *BalanceAccountNameUpdateParams) Validate() error {
	return p.accountBase.validate()
}

func (p *BalanceAccountNameUpdateParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.raw(p.Account[:])
	c.raw(p.Name[:])
	return c.bytes()
}

func (p *BalanceAccountNameUpdateParams) check(env *applyEnv) error {
	return env.wallet.ValidateBalanceAccountNameUpdate(p.Account, p.Name)
}

func (p *BalanceAccountNameUpdateParams) apply(env *applyEnv) error {
	return env.wallet.UpdateBalanceAccountName(p.Account, p.Name)
}

// BalanceAccountSettingsUpdateParams switches balance account settings. A
// nil setting is left unchanged.
type BalanceAccountSettingsUpdateParams struct {
	accountBase
	WhitelistEnabled *BooleanSetting `json:"whitelist_enabled,omitempty"`
	DAppsEnabled     *BooleanSetting `json:"dapps_enabled,omitempty"`
}

var _ Params = (*BalanceAccountSettingsUpdateParams)(nil)

// NewBalanceAccountSettingsUpdateParams returns params for given wallet.
func NewBalanceAccountSettingsUpdateParams(walletAddr custody.Address, guid GUIDHash, whitelist, dapps *BooleanSetting) *BalanceAccountSettingsUpdateParams {
	return &BalanceAccountSettingsUpdateParams{
		accountBase:      accountBase{base: base{Wallet: walletAddr}, Account: guid},
		WhitelistEnabled: whitelist,
		DAppsEnabled:     dapps,
	}
}

func (*BalanceAccountSettingsUpdateParams) Kind() Kind { return KindBalanceAccountSettingsUpdate }

func (p *BalanceAccountSettingsUpdateParams) Validate() error {
	errs := p.accountBase.validate()
	if p.WhitelistEnabled == nil && p.DAppsEnabled == nil {
		errs = errors.AppendField(errs, "Settings", errors.ErrEmpty)
	}
	if p.WhitelistEnabled != nil {
		errs = errors.AppendField(errs, "WhitelistEnabled", p.WhitelistEnabled.Validate())
	}
	if p.DAppsEnabled != nil {
		errs = errors.AppendField(errs, "DAppsEnabled", p.DAppsEnabled.Validate())
	}
	return errs
}

func (p *BalanceAccountSettingsUpdateParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.raw(p.Account[:])
	c.setting(p.WhitelistEnabled)
	c.setting(p.DAppsEnabled)
	return c.bytes()
}

func (p *BalanceAccountSettingsUpdateParams) check(env *applyEnv) error {
	return env.wallet.ValidateBalanceAccountSettingsUpdate(p.Account, p.WhitelistEnabled, p.DAppsEnabled)
}

func (p *BalanceAccountSettingsUpdateParams) apply(env *applyEnv) error {
	return env.wallet.UpdateBalanceAccountSettings(p.Account, p.WhitelistEnabled, p.DAppsEnabled)
}

// TransferParams moves assets from a balance account to an address book
// entry.
type TransferParams struct {
	accountBase
	Destination AddressBookEntry `json:"destination"`
	Amount      cash.Coin        `json:"amount"`
}

var _ Params = (*TransferParams)(nil)

// NewTransferParams returns params for given wallet.
func NewTransferParams(walletAddr custody.Address, guid GUIDHash, dest AddressBookEntry, amount cash.Coin) *TransferParams {
	return &TransferParams{
		accountBase: accountBase{base: base{Wallet: walletAddr}, Account: guid},
		Destination: dest,
		Amount:      amount,
	}
}

func (*TransferParams) Kind() Kind { return KindTransfer }

func (p *TransferParams) Validate() error {
	errs := p.accountBase.validate()
	errs = errors.AppendField(errs, "Destination.Address", p.Destination.Address.Validate())
	errs = errors.AppendField(errs, "Amount", p.Amount.Validate())
	return errs
}

func (p *TransferParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.raw(p.Account[:])
	c.raw(p.Destination.Address[:])
	c.raw(p.Destination.NameHash[:])
	c.coin(p.Amount)
	return c.bytes()
}

func (p *TransferParams) transferAccount() (GUIDHash, bool) { return p.Account, true }

func (p *TransferParams) check(env *applyEnv) error {
	account, err := env.wallet.BalanceAccount(p.Account)
	if err != nil {
		return err
	}
	if _, ok := env.wallet.AddressBook.FindID(p.Destination); !ok {
		return errors.Wrap(errors.ErrUnauthorized, "destination is not in the address book")
	}
	if !account.IsWhitelistDisabled() && !env.wallet.DestinationAllowed(account, p.Destination) {
		return errors.Wrap(errors.ErrUnauthorized, "destination is not whitelisted")
	}
	return nil
}

func (p *TransferParams) apply(env *applyEnv) error {
	if err := p.check(env); err != nil {
		return err
	}
	src := BalanceAccountAddress(env.walletAddr, p.Account)
	return env.bank.MoveCoins(env.db, src, p.Destination.Address, p.Amount)
}

// WrapDirection tells if native assets are wrapped or unwrapped.
type WrapDirection uint8

const (
	Wrap   WrapDirection = 0
	Unwrap WrapDirection = 1
)

func (d WrapDirection) String() string {
	switch d {
	case Wrap:
		return "wrap"
	case Unwrap:
		return "unwrap"
	default:
		return fmt.Sprintf("WrapDirection(%d)", uint8(d))
	}
}

// WrapUnwrapParams converts assets of a balance account between the native
// and the wrapped ticker.
type WrapUnwrapParams struct {
	accountBase
	Amount    uint64        `json:"amount"`
	Direction WrapDirection `json:"direction"`
}

var _ Params = (*WrapUnwrapParams)(nil)

// NewWrapUnwrapParams returns params for given wallet.
func NewWrapUnwrapParams(walletAddr custody.Address, guid GUIDHash, amount uint64, d WrapDirection) *WrapUnwrapParams {
	return &WrapUnwrapParams{
		accountBase: accountBase{base: base{Wallet: walletAddr}, Account: guid},
		Amount:      amount,
		Direction:   d,
	}
}

func (*WrapUnwrapParams) Kind() Kind { return KindWrapUnwrap }

func (p *WrapUnwrapParams) Validate() error {
	errs := p.accountBase.validate()
	if p.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if p.Direction > Unwrap {
		errs = errors.AppendField(errs, "Direction", errors.ErrInput)
	}
	return errs
}

func (p *WrapUnwrapParams) CanonicalBytes() []byte {
	c := newCanonical(p)
	c.raw(p.Account[:])
	c.u64(p.Amount)
	c.u8(uint8(p.Direction))
	return c.bytes()
}

func (p *WrapUnwrapParams) transferAccount() (GUIDHash, bool) { return p.Account, true }

func (p *WrapUnwrapParams) check(env *applyEnv) error {
	if env.conf.NativeTicker == "" || env.conf.WrappedTicker == "" {
		return errors.Wrap(errors.ErrState, "wrapping is not configured")
	}
	_, err := env.wallet.BalanceAccount(p.Account)
	return err
}

func (p *WrapUnwrapParams) apply(env *applyEnv) error {
	if err := p.check(env); err != nil {
		return err
	}
	from, to := env.conf.NativeTicker, env.conf.WrappedTicker
	if p.Direction == Unwrap {
		from, to = to, from
	}
	addr := BalanceAccountAddress(env.walletAddr, p.Account)
	if err := env.bank.BurnCoins(env.db, addr, cash.NewCoin(p.Amount, from)); err != nil {
		return errors.Wrapf(err, "cannot %s", p.Direction)
	}
	return env.bank.IssueCoins(env.db, addr, cash.NewCoin(p.Amount, to))
}

func validateBatchLen(n, max int) error {
	if n > max {
		return errors.Wrapf(errors.ErrInput, "at most %d slots allowed", max)
	}
	return nil
}

func validateEntries(batch []EntrySlot) error {
	if err := validateBatchLen(len(batch), MaxAddressBookEntries); err != nil {
		return err
	}
	for i, e := range batch {
		if err := e.Value.Address.Validate(); err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
	}
	return nil
}

func validateSigners(batch []SignerSlot) error {
	if err := validateBatchLen(len(batch), MaxSigners); err != nil {
		return err
	}
	for i, s := range batch {
		if err := s.Value.Key.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
	}
	return nil
}

func validateWalletUpdate(u *WalletUpdate) error {
	var errs error
	if u.ApprovalsRequiredForConfig == 0 {
		errs = errors.AppendField(errs, "ApprovalsRequiredForConfig", errors.ErrThreshold)
	}
	errs = errors.AppendField(errs, "ApprovalTimeoutForConfig", checkRequestedTimeout(u.ApprovalTimeoutForConfig))
	errs = errors.AppendField(errs, "AddSigners", validateSigners(u.AddSigners))
	errs = errors.AppendField(errs, "RemoveSigners", validateBatchLen(len(u.RemoveSigners), MaxSigners))
	errs = errors.AppendField(errs, "AddConfigApprovers", validateBatchLen(len(u.AddConfigApprovers), MaxSigners))
	errs = errors.AppendField(errs, "RemoveConfigApprovers", validateBatchLen(len(u.RemoveConfigApprovers), MaxSigners))
	errs = errors.AppendField(errs, "AddAddressBookEntries", validateEntries(u.AddAddressBookEntries))
	errs = errors.AppendField(errs, "RemoveAddressBookEntries", validateBatchLen(len(u.RemoveAddressBookEntries), MaxAddressBookEntries))
	return errs
}

func validateBalanceAccountUpdate(u *BalanceAccountUpdate) error {
	var errs error
	if u.ApprovalsRequiredForTransfer == 0 {
		errs = errors.AppendField(errs, "ApprovalsRequiredForTransfer", errors.ErrThreshold)
	}
	errs = errors.AppendField(errs, "ApprovalTimeoutForTransfer", checkRequestedTimeout(u.ApprovalTimeoutForTransfer))
	errs = errors.AppendField(errs, "AddTransferApprovers", validateBatchLen(len(u.AddTransferApprovers), MaxSigners))
	errs = errors.AppendField(errs, "RemoveTransferApprovers", validateBatchLen(len(u.RemoveTransferApprovers), MaxSigners))
	errs = errors.AppendField(errs, "AddAllowedDestinations", validateBatchLen(len(u.AddAllowedDestinations), MaxAddressBookEntries))
	errs = errors.AppendField(errs, "RemoveAllowedDestinations", validateBatchLen(len(u.RemoveAllowedDestinations), MaxAddressBookEntries))
	return errs
}

// canonical builds the canonical encoding of operation params. Integers
// are little endian, slot batches are sorted by slot id and prefixed with
// their length, strings are prefixed with their length.
type canonical struct {
	buf []byte
}

func newCanonical(p Params) *canonical {
	addr := p.WalletAddress()
	c := &canonical{buf: make([]byte, 0, 256)}
	c.u8(uint8(p.Kind()))
	c.raw(addr[:])
	return c
}

func (c *canonical) bytes() []byte {
	return c.buf
}

func (c *canonical) raw(b []byte) {
	c.buf = append(c.buf, b...)
}

func (c *canonical) u8(v uint8) {
	c.buf = append(c.buf, v)
}

func (c *canonical) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	c.raw(b[:])
}

func (c *canonical) duration(d custody.UnixDuration) {
	c.u64(uint64(d))
}

func (c *canonical) str(s string) {
	c.u8(uint8(len(s)))
	c.raw([]byte(s))
}

func (c *canonical) coin(coin cash.Coin) {
	c.u64(coin.Amount)
	c.str(coin.Ticker)
}

func (c *canonical) setting(s *BooleanSetting) {
	if s == nil {
		c.u8(0)
		return
	}
	c.u8(1)
	c.u8(uint8(*s))
}

func (c *canonical) signers(batch []SignerSlot) {
	sorted := append([]SignerSlot(nil), batch...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	c.u8(uint8(len(sorted)))
	for _, s := range sorted {
		c.u8(uint8(s.ID))
		c.raw(s.Value.Key[:])
	}
}

func (c *canonical) entries(batch []EntrySlot) {
	sorted := append([]EntrySlot(nil), batch...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	c.u8(uint8(len(sorted)))
	for _, e := range sorted {
		c.u8(uint8(e.ID))
		c.raw(e.Value.Address[:])
		c.raw(e.Value.NameHash[:])
	}
}

func (c *canonical) walletUpdate(u *WalletUpdate) *canonical {
	c.u8(u.ApprovalsRequiredForConfig)
	c.duration(u.ApprovalTimeoutForConfig)
	c.signers(u.AddSigners)
	c.signers(u.RemoveSigners)
	c.signers(u.AddConfigApprovers)
	c.signers(u.RemoveConfigApprovers)
	c.entries(u.AddAddressBookEntries)
	c.entries(u.RemoveAddressBookEntries)
	return c
}

func (c *canonical) balanceAccountUpdate(u *BalanceAccountUpdate) {
	c.raw(u.NameHash[:])
	c.u8(u.ApprovalsRequiredForTransfer)
	c.duration(u.ApprovalTimeoutForTransfer)
	c.signers(u.AddTransferApprovers)
	c.signers(u.RemoveTransferApprovers)
	c.entries(u.AddAllowedDestinations)
	c.entries(u.RemoveAllowedDestinations)
}
