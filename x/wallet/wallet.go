package wallet

import (
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/slots"
)

// Every mutating operation comes in two flavours. ValidateX runs the
// mutation on a clone and reports the result. X runs the same mutation on a
// clone and swaps the clone in only on success, so a failed call never
// leaves a partially applied change.

// apply runs fn on a copy of the wallet and replaces the wallet with the
// result if fn succeeds.
func (w *Wallet) apply(fn func(*Wallet) error) error {
	c := w.Clone()
	if err := fn(c); err != nil {
		return err
	}
	*w = *c
	return nil
}

// ValidateUpdate returns the error Update would return.
func (w *Wallet) ValidateUpdate(u *WalletUpdate) error {
	return w.Clone().update(u)
}

// Update changes the wallet wide configuration. Config approvers are
// disabled before signers are removed and enabled after signers are added
// so a single update can swap approvers.
func (w *Wallet) Update(u *WalletUpdate) error {
	return w.apply(func(c *Wallet) error { return c.update(u) })
}

func (w *Wallet) update(u *WalletUpdate) error {
	if err := checkRequestedTimeout(u.ApprovalTimeoutForConfig); err != nil {
		return errors.Wrap(err, "config")
	}
	w.ApprovalsRequiredForConfig = u.ApprovalsRequiredForConfig
	if u.ApprovalTimeoutForConfig > 0 {
		w.ApprovalTimeoutForConfig = u.ApprovalTimeoutForConfig.Duration()
	}
	if err := w.disableConfigApprovers(u.RemoveConfigApprovers); err != nil {
		return err
	}
	if err := w.removeSigners(u.RemoveSigners); err != nil {
		return err
	}
	if err := w.addSigners(u.AddSigners); err != nil {
		return err
	}
	if err := w.enableConfigApprovers(u.AddConfigApprovers); err != nil {
		return err
	}
	if err := w.removeAddressBookEntries(u.RemoveAddressBookEntries); err != nil {
		return err
	}
	if err := w.addAddressBookEntries(u.AddAddressBookEntries); err != nil {
		return err
	}
	if err := checkApprovalTimeout(w.ApprovalTimeoutForConfig); err != nil {
		return errors.Wrap(err, "config")
	}
	return errors.Wrap(checkThreshold(w.ApprovalsRequiredForConfig, w.ConfigApprovers), "config")
}

// ValidateConfigPolicyUpdate returns the error UpdateConfigPolicy would
// return.
func (w *Wallet) ValidateConfigPolicyUpdate(u *WalletConfigPolicyUpdate) error {
	return w.Clone().updateConfigPolicy(u)
}

// UpdateConfigPolicy changes who approves configuration changes.
func (w *Wallet) UpdateConfigPolicy(u *WalletConfigPolicyUpdate) error {
	return w.apply(func(c *Wallet) error { return c.updateConfigPolicy(u) })
}

func (w *Wallet) updateConfigPolicy(u *WalletConfigPolicyUpdate) error {
	if err := checkRequestedTimeout(u.ApprovalTimeoutForConfig); err != nil {
		return errors.Wrap(err, "config")
	}
	w.ApprovalsRequiredForConfig = u.ApprovalsRequiredForConfig
	if u.ApprovalTimeoutForConfig > 0 {
		w.ApprovalTimeoutForConfig = u.ApprovalTimeoutForConfig.Duration()
	}
	if err := w.disableConfigApprovers(u.RemoveConfigApprovers); err != nil {
		return err
	}
	if err := w.enableConfigApprovers(u.AddConfigApprovers); err != nil {
		return err
	}
	if err := checkApprovalTimeout(w.ApprovalTimeoutForConfig); err != nil {
		return errors.Wrap(err, "config")
	}
	return errors.Wrap(checkThreshold(w.ApprovalsRequiredForConfig, w.ConfigApprovers), "config")
}

// ValidateAddSigner returns the error AddSigner would return.
func (w *Wallet) ValidateAddSigner(s SignerSlot) error {
	return w.Clone().addSigners([]SignerSlot{s})
}

// AddSigner stores a signer in an empty slot.
func (w *Wallet) AddSigner(s SignerSlot) error {
	return w.apply(func(c *Wallet) error { return c.addSigners([]SignerSlot{s}) })
}

// ValidateRemoveSigner returns the error RemoveSigner would return.
func (w *Wallet) ValidateRemoveSigner(s SignerSlot) error {
	return w.Clone().removeSigners([]SignerSlot{s})
}

// RemoveSigner removes a signer that is not enabled as any approver.
func (w *Wallet) RemoveSigner(s SignerSlot) error {
	return w.apply(func(c *Wallet) error { return c.removeSigners([]SignerSlot{s}) })
}

// ValidateSignerUpdate returns the error UpdateSigner would return.
func (w *Wallet) ValidateSignerUpdate(u *SignerUpdate) error {
	return w.Clone().updateSigner(u)
}

// UpdateSigner adds or removes a signer.
func (w *Wallet) UpdateSigner(u *SignerUpdate) error {
	return w.apply(func(c *Wallet) error { return c.updateSigner(u) })
}

func (w *Wallet) updateSigner(u *SignerUpdate) error {
	switch u.Type {
	case SlotAdd:
		return w.addSigners([]SignerSlot{u.Slot})
	case SlotRemove:
		return w.removeSigners([]SignerSlot{u.Slot})
	default:
		return errors.Wrapf(errors.ErrInput, "unknown slot update %s", u.Type)
	}
}

// ValidateAddressBookUpdate returns the error UpdateAddressBook would
// return.
func (w *Wallet) ValidateAddressBookUpdate(u *AddressBookUpdate) error {
	return w.Clone().updateAddressBook(u)
}

// UpdateAddressBook removes and then adds address book entries.
func (w *Wallet) UpdateAddressBook(u *AddressBookUpdate) error {
	return w.apply(func(c *Wallet) error { return c.updateAddressBook(u) })
}

func (w *Wallet) updateAddressBook(u *AddressBookUpdate) error {
	if err := w.removeAddressBookEntries(u.RemoveEntries); err != nil {
		return err
	}
	return w.addAddressBookEntries(u.AddEntries)
}

// ValidateAddBalanceAccount returns the error AddBalanceAccount would
// return.
func (w *Wallet) ValidateAddBalanceAccount(guid GUIDHash, u *BalanceAccountUpdate) error {
	return w.Clone().addBalanceAccount(guid, u)
}

// AddBalanceAccount creates a balance account with all settings off and
// configures it with given update.
func (w *Wallet) AddBalanceAccount(guid GUIDHash, u *BalanceAccountUpdate) error {
	return w.apply(func(c *Wallet) error { return c.addBalanceAccount(guid, u) })
}

func (w *Wallet) addBalanceAccount(guid GUIDHash, u *BalanceAccountUpdate) error {
	if _, err := w.balanceAccountIndex(guid); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "balance account %s", guid)
	}
	if len(w.BalanceAccounts) >= MaxBalanceAccounts {
		return errors.Wrapf(errors.ErrInput, "at most %d balance accounts allowed", MaxBalanceAccounts)
	}
	w.BalanceAccounts = append(w.BalanceAccounts, newBalanceAccount(guid))
	return w.updateBalanceAccount(guid, u)
}

// ValidateBalanceAccountCreation returns the error CreateBalanceAccount
// would return.
func (w *Wallet) ValidateBalanceAccountCreation(guid GUIDHash, c *BalanceAccountCreation) error {
	return w.Clone().createBalanceAccount(guid, c)
}

// CreateBalanceAccount adds a balance account and sets its switches.
func (w *Wallet) CreateBalanceAccount(guid GUIDHash, c *BalanceAccountCreation) error {
	return w.apply(func(cl *Wallet) error { return cl.createBalanceAccount(guid, c) })
}

func (w *Wallet) createBalanceAccount(guid GUIDHash, c *BalanceAccountCreation) error {
	if err := w.addBalanceAccount(guid, &c.BalanceAccountUpdate); err != nil {
		return err
	}
	return w.updateBalanceAccountSettings(guid, &c.WhitelistEnabled, &c.DAppsEnabled)
}

// ValidateBalanceAccountUpdate returns the error UpdateBalanceAccount would
// return.
func (w *Wallet) ValidateBalanceAccountUpdate(guid GUIDHash, u *BalanceAccountUpdate) error {
	return w.Clone().updateBalanceAccount(guid, u)
}

// UpdateBalanceAccount changes the policy of an existing balance account.
func (w *Wallet) UpdateBalanceAccount(guid GUIDHash, u *BalanceAccountUpdate) error {
	return w.apply(func(c *Wallet) error { return c.updateBalanceAccount(guid, u) })
}

func (w *Wallet) updateBalanceAccount(guid GUIDHash, u *BalanceAccountUpdate) error {
	idx, err := w.balanceAccountIndex(guid)
	if err != nil {
		return err
	}
	if err := checkRequestedTimeout(u.ApprovalTimeoutForTransfer); err != nil {
		return errors.Wrap(err, "transfer")
	}
	timeout := u.ApprovalTimeoutForTransfer.Duration()
	if timeout > 0 {
		if err := checkApprovalTimeout(timeout); err != nil {
			return errors.Wrap(err, "transfer")
		}
	}

	a := &w.BalanceAccounts[idx]
	if err := w.disableApprovers(a.TransferApprovers, u.RemoveTransferApprovers); err != nil {
		return errors.Wrap(err, "transfer approvers")
	}
	if err := w.enableApprovers(a.TransferApprovers, u.AddTransferApprovers); err != nil {
		return errors.Wrap(err, "transfer approvers")
	}
	if err := w.disableDestinations(a.AllowedDestinations, u.RemoveAllowedDestinations); err != nil {
		return err
	}
	if err := w.enableDestinations(a.AllowedDestinations, u.AddAllowedDestinations); err != nil {
		return err
	}

	a.NameHash = u.NameHash
	a.ApprovalsRequiredForTransfer = u.ApprovalsRequiredForTransfer
	if timeout > 0 {
		a.ApprovalTimeoutForTransfer = timeout
	}
	if err := checkThreshold(a.ApprovalsRequiredForTransfer, a.TransferApprovers); err != nil {
		return errors.Wrap(err, "transfer")
	}
	return errors.Wrap(checkApprovalTimeout(a.ApprovalTimeoutForTransfer), "transfer")
}

// ValidateBalanceAccountNameUpdate returns the error
// UpdateBalanceAccountName would return.
func (w *Wallet) ValidateBalanceAccountNameUpdate(guid GUIDHash, name NameHash) error {
	return w.Clone().updateBalanceAccountName(guid, name)
}

// UpdateBalanceAccountName renames a balance account.
func (w *Wallet) UpdateBalanceAccountName(guid GUIDHash, name NameHash) error {
	return w.apply(func(c *Wallet) error { return c.updateBalanceAccountName(guid, name) })
}

func (w *Wallet) updateBalanceAccountName(guid GUIDHash, name NameHash) error {
	idx, err := w.balanceAccountIndex(guid)
	if err != nil {
		return err
	}
	w.BalanceAccounts[idx].NameHash = name
	return nil
}

// ValidateBalanceAccountSettingsUpdate returns the error
// UpdateBalanceAccountSettings would return.
func (w *Wallet) ValidateBalanceAccountSettingsUpdate(guid GUIDHash, whitelist, dapps *BooleanSetting) error {
	return w.Clone().updateBalanceAccountSettings(guid, whitelist, dapps)
}

// UpdateBalanceAccountSettings switches the whitelist and dApps settings of
// a balance account. A nil value keeps the current setting. The whitelist
// cannot be switched off while any destination is allowed.
func (w *Wallet) UpdateBalanceAccountSettings(guid GUIDHash, whitelist, dapps *BooleanSetting) error {
	return w.apply(func(c *Wallet) error { return c.updateBalanceAccountSettings(guid, whitelist, dapps) })
}

func (w *Wallet) updateBalanceAccountSettings(guid GUIDHash, whitelist, dapps *BooleanSetting) error {
	idx, err := w.balanceAccountIndex(guid)
	if err != nil {
		return err
	}
	a := &w.BalanceAccounts[idx]
	if whitelist != nil {
		if err := whitelist.Validate(); err != nil {
			return errors.Wrap(err, "whitelist")
		}
		if *whitelist == Off && a.HasWhitelistedDestinations() {
			return errors.Wrap(errors.ErrInUse, "whitelist cannot be disabled while destinations are allowed")
		}
		a.WhitelistEnabled = *whitelist
	}
	if dapps != nil {
		if err := dapps.Validate(); err != nil {
			return errors.Wrap(err, "dapps")
		}
		a.DAppsEnabled = *dapps
	}
	return nil
}

// LockConfigPolicyUpdates marks a config policy update as pending.
func (w *Wallet) LockConfigPolicyUpdates() error {
	if w.ConfigPolicyUpdateLocked {
		return errors.Wrap(errors.ErrConcurrentUpdate, "config policy update already pending")
	}
	w.ConfigPolicyUpdateLocked = true
	return nil
}

// UnlockConfigPolicyUpdates clears the pending config policy update mark.
func (w *Wallet) UnlockConfigPolicyUpdates() {
	w.ConfigPolicyUpdateLocked = false
}

// LockBalanceAccountPolicyUpdates marks a policy update of given balance
// account as pending.
func (w *Wallet) LockBalanceAccountPolicyUpdates(guid GUIDHash) error {
	idx, err := w.balanceAccountIndex(guid)
	if err != nil {
		return err
	}
	if w.BalanceAccounts[idx].PolicyUpdateLocked {
		return errors.Wrapf(errors.ErrConcurrentUpdate, "balance account %s policy update already pending", guid)
	}
	w.BalanceAccounts[idx].PolicyUpdateLocked = true
	return nil
}

// UnlockBalanceAccountPolicyUpdates clears the pending policy update mark
// of given balance account.
func (w *Wallet) UnlockBalanceAccountPolicyUpdates(guid GUIDHash) error {
	idx, err := w.balanceAccountIndex(guid)
	if err != nil {
		return err
	}
	w.BalanceAccounts[idx].PolicyUpdateLocked = false
	return nil
}

// ValidateConfigInitiator returns an error unless key signed the
// transaction and is the assistant or a config approver.
func (w *Wallet) ValidateConfigInitiator(key custody.Address, signed bool) error {
	return w.validateInitiator(key, signed, w.ConfigApproverKeys)
}

// ValidateTransferInitiator returns an error unless key signed the
// transaction and is the assistant or a transfer approver of the account.
func (w *Wallet) ValidateTransferInitiator(account BalanceAccount, key custody.Address, signed bool) error {
	return w.validateInitiator(key, signed, func() []custody.Address {
		return w.TransferApproverKeys(account)
	})
}

func (w *Wallet) validateInitiator(key custody.Address, signed bool, approvers func() []custody.Address) error {
	if !signed {
		return errors.Wrap(errors.ErrInvalidSignature, "initiator must sign")
	}
	if key == w.Assistant.Key {
		return nil
	}
	for _, a := range approvers() {
		if a == key {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrUnauthorizedInitiator, "%s cannot initiate this operation", key)
}

// ConfigApproverKeys returns the keys of all config approvers in slot
// order.
func (w *Wallet) ConfigApproverKeys() []custody.Address {
	return w.approverKeys(w.ConfigApprovers)
}

// TransferApproverKeys returns the keys of all transfer approvers of the
// account in slot order.
func (w *Wallet) TransferApproverKeys(account BalanceAccount) []custody.Address {
	return w.approverKeys(account.TransferApprovers)
}

func (w *Wallet) approverKeys(approvers Approvers) []custody.Address {
	var keys []custody.Address
	for _, id := range approvers.IterEnabled() {
		if s, ok := w.Signers.Get(id); ok {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

// AllowedDestinationEntries returns the address book entries the account
// is allowed to transfer to.
func (w *Wallet) AllowedDestinationEntries(account BalanceAccount) []AddressBookEntry {
	var entries []AddressBookEntry
	for _, id := range account.AllowedDestinations.IterEnabled() {
		if e, ok := w.AddressBook.Get(id); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// DestinationAllowed returns true if the entry is in the address book and
// enabled as a destination of the account.
func (w *Wallet) DestinationAllowed(account BalanceAccount, entry AddressBookEntry) bool {
	id, ok := w.AddressBook.FindID(entry)
	if !ok {
		return false
	}
	return account.AllowedDestinations.IsEnabled(id)
}

// BalanceAccount returns a copy of the balance account with given guid.
func (w *Wallet) BalanceAccount(guid GUIDHash) (BalanceAccount, error) {
	idx, err := w.balanceAccountIndex(guid)
	if err != nil {
		return BalanceAccount{}, err
	}
	return w.BalanceAccounts[idx].Clone(), nil
}

// ConfigPolicy returns the approvers, quorum and timeout of configuration
// changes.
func (w *Wallet) ConfigPolicy() ([]custody.Address, uint8, time.Duration) {
	return w.ConfigApproverKeys(), w.ApprovalsRequiredForConfig, w.ApprovalTimeoutForConfig
}

func (w *Wallet) balanceAccountIndex(guid GUIDHash) (int, error) {
	for i, a := range w.BalanceAccounts {
		if a.GUIDHash == guid {
			return i, nil
		}
	}
	return -1, errors.Wrapf(errors.ErrNotFound, "balance account %s", guid)
}

func (w *Wallet) addSigners(batch []SignerSlot) error {
	if err := w.Signers.InsertMany(batch); err != nil {
		return errors.Wrap(err, "add signers")
	}
	return nil
}

func (w *Wallet) removeSigners(batch []SignerSlot) error {
	if err := w.Signers.CanRemove(batch); err != nil {
		return errors.Wrap(err, "remove signers")
	}
	ids := slots.IDs(batch)
	if w.ConfigApprovers.AnyEnabled(ids) {
		return errors.Wrap(errors.ErrInUse, "cannot remove a config approver")
	}
	for _, a := range w.BalanceAccounts {
		if a.TransferApprovers.AnyEnabled(ids) {
			return errors.Wrapf(errors.ErrInUse, "cannot remove a transfer approver of %s", a.GUIDHash)
		}
	}
	return w.Signers.RemoveMany(batch)
}

func (w *Wallet) addAddressBookEntries(batch []EntrySlot) error {
	if err := w.AddressBook.InsertMany(batch); err != nil {
		return errors.Wrap(err, "add address book entries")
	}
	return nil
}

func (w *Wallet) removeAddressBookEntries(batch []EntrySlot) error {
	if err := w.AddressBook.CanRemove(batch); err != nil {
		return errors.Wrap(err, "remove address book entries")
	}
	ids := slots.IDs(batch)
	for _, a := range w.BalanceAccounts {
		if a.AllowedDestinations.AnyEnabled(ids) {
			return errors.Wrapf(errors.ErrInUse, "cannot remove an allowed destination of %s", a.GUIDHash)
		}
	}
	return w.AddressBook.RemoveMany(batch)
}

func (w *Wallet) enableConfigApprovers(batch []SignerSlot) error {
	return errors.Wrap(w.enableApprovers(w.ConfigApprovers, batch), "config approvers")
}

func (w *Wallet) disableConfigApprovers(batch []SignerSlot) error {
	return errors.Wrap(w.disableApprovers(w.ConfigApprovers, batch), "config approvers")
}

// enableApprovers requires every signer of the batch to be stored in its
// slot.
func (w *Wallet) enableApprovers(approvers Approvers, batch []SignerSlot) error {
	if !w.Signers.Contains(batch) {
		return errors.Wrap(errors.ErrSlotMismatch, "approver is not a signer")
	}
	approvers.EnableMany(slots.IDs(batch))
	return nil
}

// disableApprovers accepts a slot that holds the given signer or a slot
// that was already emptied.
func (w *Wallet) disableApprovers(approvers Approvers, batch []SignerSlot) error {
	for _, b := range batch {
		if s, ok := w.Signers.Get(b.ID); ok && s != b.Value {
			return errors.Wrapf(errors.ErrSlotMismatch, "slot %d holds another signer", b.ID)
		}
		approvers.Disable(b.ID)
	}
	return nil
}

func (w *Wallet) enableDestinations(dest AllowedDestinations, batch []EntrySlot) error {
	if !w.AddressBook.Contains(batch) {
		return errors.Wrap(errors.ErrSlotMismatch, "destination is not in the address book")
	}
	dest.EnableMany(slots.IDs(batch))
	return nil
}

func (w *Wallet) disableDestinations(dest AllowedDestinations, batch []EntrySlot) error {
	for _, b := range batch {
		if e, ok := w.AddressBook.Get(b.ID); ok && e != b.Value {
			return errors.Wrapf(errors.ErrSlotMismatch, "slot %d holds another address book entry", b.ID)
		}
		dest.Disable(b.ID)
	}
	return nil
}
