package wallet

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/slots"
	"github.com/minio/sha256-simd"
)

const (
	MaxSigners            = 24
	MaxAddressBookEntries = 128
	MaxBalanceAccounts    = 10

	MinApprovalTimeout = 60 * time.Second
	MaxApprovalTimeout = 365 * 24 * time.Hour
)

// NameHash is the hash of a human readable name. Names never reach the
// ledger in clear text.
type NameHash [32]byte

func (h NameHash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalJSON provides a hex representation for JSON.
func (h NameHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON parses JSON in hex representation.
func (h *NameHash) UnmarshalJSON(raw []byte) error {
	return unmarshalHash(raw, h[:])
}

// GUIDHash identifies a balance account within a wallet.
type GUIDHash [32]byte

func (h GUIDHash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero returns true if the hash was not set.
func (h GUIDHash) IsZero() bool {
	return h == GUIDHash{}
}

// MarshalJSON provides a hex representation for JSON.
func (h GUIDHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON parses JSON in hex representation.
func (h *GUIDHash) UnmarshalJSON(raw []byte) error {
	return unmarshalHash(raw, h[:])
}

// NewGUIDHash returns the hash identifying a balance account created for
// given uuid.
func NewGUIDHash(id uuid.UUID) GUIDHash {
	return GUIDHash(sha256.Sum256(id[:]))
}

// HashName returns the hash a human readable name is stored as.
func HashName(name string) NameHash {
	return NameHash(sha256.Sum256([]byte(name)))
}

func unmarshalHash(raw []byte, dst []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "hash must be a hex string")
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(dst) {
		return errors.Wrapf(errors.ErrInput, "hash must be %d hex encoded bytes", len(dst))
	}
	copy(dst, b)
	return nil
}

// Signer is a key that can be enabled as an approver.
type Signer struct {
	Key custody.Address `json:"key"`
}

// AddressBookEntry is a named destination of transfers.
type AddressBookEntry struct {
	Address  custody.Address `json:"address"`
	NameHash NameHash        `json:"name_hash"`
}

type (
	Signers             = slots.Slots[Signer]
	AddressBook         = slots.Slots[AddressBookEntry]
	Approvers           = slots.Flags[Signer]
	AllowedDestinations = slots.Flags[AddressBookEntry]

	SignerSlot = slots.Slot[Signer]
	EntrySlot  = slots.Slot[AddressBookEntry]
	SignerID   = slots.ID[Signer]
	EntryID    = slots.ID[AddressBookEntry]
)

// BooleanSetting is a switch of a balance account.
type BooleanSetting uint8

const (
	Off BooleanSetting = 0
	On  BooleanSetting = 1
)

func (b BooleanSetting) String() string {
	switch b {
	case Off:
		return "off"
	case On:
		return "on"
	default:
		return fmt.Sprintf("BooleanSetting(%d)", uint8(b))
	}
}

// Validate returns an error unless the value is Off or On.
func (b BooleanSetting) Validate() error {
	if b > On {
		return errors.Wrapf(errors.ErrInput, "invalid setting %d", b)
	}
	return nil
}

// BalanceAccount is a sub account of a wallet holding assets. Transfers out
// of it are approved by its own set of approvers.
type BalanceAccount struct {
	GUIDHash                     GUIDHash
	NameHash                     NameHash
	ApprovalsRequiredForTransfer uint8
	ApprovalTimeoutForTransfer   time.Duration
	TransferApprovers            Approvers
	AllowedDestinations          AllowedDestinations
	WhitelistEnabled             BooleanSetting
	DAppsEnabled                 BooleanSetting
	PolicyUpdateLocked           bool
}

func newBalanceAccount(guid GUIDHash) BalanceAccount {
	return BalanceAccount{
		GUIDHash:            guid,
		TransferApprovers:   slots.NewFlags[Signer](MaxSigners),
		AllowedDestinations: slots.NewFlags[AddressBookEntry](MaxAddressBookEntries),
		WhitelistEnabled:    Off,
		DAppsEnabled:        Off,
	}
}

// Clone returns a deep copy.
func (a BalanceAccount) Clone() BalanceAccount {
	a.TransferApprovers = a.TransferApprovers.Clone()
	a.AllowedDestinations = a.AllowedDestinations.Clone()
	return a
}

// IsWhitelistDisabled returns true if transfers can go to any address book
// entry.
func (a BalanceAccount) IsWhitelistDisabled() bool {
	return a.WhitelistEnabled == Off
}

// HasWhitelistedDestinations returns true if any destination is allowed.
func (a BalanceAccount) HasWhitelistedDestinations() bool {
	return a.AllowedDestinations.CountEnabled() > 0
}

// BalanceAccountAddress returns the address holding the assets of a balance
// account.
func BalanceAccountAddress(walletAddr custody.Address, guid GUIDHash) custody.Address {
	return custody.Address(sha256.Sum256(append(walletAddr[:], guid[:]...)))
}

// Wallet is the configuration of a custodial wallet.
type Wallet struct {
	IsInitialized              bool
	Signers                    Signers
	Assistant                  Signer
	AddressBook                AddressBook
	ApprovalsRequiredForConfig uint8
	ApprovalTimeoutForConfig   time.Duration
	ConfigApprovers            Approvers
	BalanceAccounts            []BalanceAccount
	ConfigPolicyUpdateLocked   bool
}

// NewWallet returns an empty, initialized wallet. It must be configured with
// Update before it can be used.
func NewWallet(assistant Signer) *Wallet {
	return &Wallet{
		IsInitialized:   true,
		Signers:         slots.New[Signer](MaxSigners),
		Assistant:       assistant,
		AddressBook:     slots.New[AddressBookEntry](MaxAddressBookEntries),
		ConfigApprovers: slots.NewFlags[Signer](MaxSigners),
	}
}

// Clone returns a deep copy.
func (w *Wallet) Clone() *Wallet {
	c := *w
	c.Signers = w.Signers.Clone()
	c.AddressBook = w.AddressBook.Clone()
	c.ConfigApprovers = w.ConfigApprovers.Clone()
	if w.BalanceAccounts != nil {
		c.BalanceAccounts = make([]BalanceAccount, len(w.BalanceAccounts))
		for i, a := range w.BalanceAccounts {
			c.BalanceAccounts[i] = a.Clone()
		}
	}
	return &c
}

// Validate returns an error if the wallet configuration breaks any of its
// invariants.
func (w *Wallet) Validate() error {
	if !w.IsInitialized {
		return errors.Wrap(errors.ErrState, "not initialized")
	}
	if err := w.Assistant.Key.Validate(); err != nil {
		return errors.Wrap(err, "assistant")
	}
	if err := checkApprovalTimeout(w.ApprovalTimeoutForConfig); err != nil {
		return errors.Wrap(err, "config")
	}
	if err := checkThreshold(w.ApprovalsRequiredForConfig, w.ConfigApprovers); err != nil {
		return errors.Wrap(err, "config")
	}
	if err := w.checkApproversAreSigners(w.ConfigApprovers); err != nil {
		return errors.Wrap(err, "config approvers")
	}
	if len(w.BalanceAccounts) > MaxBalanceAccounts {
		return errors.Wrapf(errors.ErrInput, "at most %d balance accounts allowed", MaxBalanceAccounts)
	}
	seen := make(map[GUIDHash]struct{}, len(w.BalanceAccounts))
	for _, a := range w.BalanceAccounts {
		if _, ok := seen[a.GUIDHash]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "balance account %s", a.GUIDHash)
		}
		seen[a.GUIDHash] = struct{}{}
		if err := checkApprovalTimeout(a.ApprovalTimeoutForTransfer); err != nil {
			return errors.Wrapf(err, "balance account %s", a.GUIDHash)
		}
		if err := checkThreshold(a.ApprovalsRequiredForTransfer, a.TransferApprovers); err != nil {
			return errors.Wrapf(err, "balance account %s", a.GUIDHash)
		}
		if err := w.checkApproversAreSigners(a.TransferApprovers); err != nil {
			return errors.Wrapf(err, "balance account %s approvers", a.GUIDHash)
		}
		for _, id := range a.AllowedDestinations.IterEnabled() {
			if _, ok := w.AddressBook.Get(id); !ok {
				return errors.Wrapf(errors.ErrSlotMismatch, "balance account %s destination %d", a.GUIDHash, id)
			}
		}
	}
	return nil
}

func (w *Wallet) checkApproversAreSigners(approvers Approvers) error {
	for _, id := range approvers.IterEnabled() {
		if _, ok := w.Signers.Get(id); !ok {
			return errors.Wrapf(errors.ErrSlotMismatch, "slot %d is not a signer", id)
		}
	}
	return nil
}

func checkApprovalTimeout(d time.Duration) error {
	if d < MinApprovalTimeout {
		return errors.Wrapf(errors.ErrTimeout, "approval timeout %s is below %s", d, MinApprovalTimeout)
	}
	if d > MaxApprovalTimeout {
		return errors.Wrapf(errors.ErrTimeout, "approval timeout %s is above %s", d, MaxApprovalTimeout)
	}
	return nil
}

// checkRequestedTimeout validates a timeout carried by an update before it
// is converted. Zero means the current value is kept.
func checkRequestedTimeout(d custody.UnixDuration) error {
	if d < 0 {
		return errors.Wrapf(errors.ErrTimeout, "negative approval timeout %d", d)
	}
	if d > custody.AsUnixDuration(MaxApprovalTimeout) {
		return errors.Wrapf(errors.ErrTimeout, "approval timeout of %d seconds is above %s", d, MaxApprovalTimeout)
	}
	return nil
}

func checkThreshold(required uint8, approvers Approvers) error {
	n := approvers.CountEnabled()
	if int(required) > n {
		return errors.Wrapf(errors.ErrThreshold, "%d approvals required but only %d approvers configured", required, n)
	}
	if required == 0 {
		return errors.Wrap(errors.ErrThreshold, "approvals required cannot be 0")
	}
	if n == 0 {
		return errors.Wrap(errors.ErrThreshold, "at least one approver must be configured")
	}
	return nil
}

// WalletUpdate describes a change of the wallet wide configuration. A zero
// timeout keeps the current value.
type WalletUpdate struct {
	ApprovalsRequiredForConfig uint8                `json:"approvals_required_for_config"`
	ApprovalTimeoutForConfig   custody.UnixDuration `json:"approval_timeout_for_config"`
	AddSigners                 []SignerSlot         `json:"add_signers"`
	RemoveSigners              []SignerSlot         `json:"remove_signers"`
	AddConfigApprovers         []SignerSlot         `json:"add_config_approvers"`
	RemoveConfigApprovers      []SignerSlot         `json:"remove_config_approvers"`
	AddAddressBookEntries      []EntrySlot          `json:"add_address_book_entries"`
	RemoveAddressBookEntries   []EntrySlot          `json:"remove_address_book_entries"`
}

// WalletConfigPolicyUpdate describes a change of who approves configuration
// changes. A zero timeout keeps the current value.
type WalletConfigPolicyUpdate struct {
	ApprovalsRequiredForConfig uint8                `json:"approvals_required_for_config"`
	ApprovalTimeoutForConfig   custody.UnixDuration `json:"approval_timeout_for_config"`
	AddConfigApprovers         []SignerSlot         `json:"add_config_approvers"`
	RemoveConfigApprovers      []SignerSlot         `json:"remove_config_approvers"`
}

// BalanceAccountUpdate describes a change of a balance account policy. A
// zero timeout keeps the current value.
type BalanceAccountUpdate struct {
	NameHash                     NameHash             `json:"name_hash"`
	ApprovalsRequiredForTransfer uint8                `json:"approvals_required_for_transfer"`
	ApprovalTimeoutForTransfer   custody.UnixDuration `json:"approval_timeout_for_transfer"`
	AddTransferApprovers         []SignerSlot         `json:"add_transfer_approvers"`
	RemoveTransferApprovers      []SignerSlot         `json:"remove_transfer_approvers"`
	AddAllowedDestinations       []EntrySlot          `json:"add_allowed_destinations"`
	RemoveAllowedDestinations    []EntrySlot          `json:"remove_allowed_destinations"`
}

// BalanceAccountCreation describes a new balance account.
type BalanceAccountCreation struct {
	BalanceAccountUpdate
	WhitelistEnabled BooleanSetting `json:"whitelist_enabled"`
	DAppsEnabled     BooleanSetting `json:"dapps_enabled"`
}

// AddressBookUpdate adds and removes address book entries.
type AddressBookUpdate struct {
	AddEntries    []EntrySlot `json:"add_entries"`
	RemoveEntries []EntrySlot `json:"remove_entries"`
}

// SlotUpdateType tells if a slot is filled or emptied.
type SlotUpdateType uint8

const (
	SlotAdd    SlotUpdateType = 0
	SlotRemove SlotUpdateType = 1
)

func (t SlotUpdateType) String() string {
	switch t {
	case SlotAdd:
		return "add"
	case SlotRemove:
		return "remove"
	default:
		return fmt.Sprintf("SlotUpdateType(%d)", uint8(t))
	}
}

// SignerUpdate adds or removes a single signer.
type SignerUpdate struct {
	Type SlotUpdateType `json:"type"`
	Slot SignerSlot     `json:"slot"`
}
