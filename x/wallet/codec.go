package wallet

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/slots"
)

const (
	signerLen = custody.AddressLength
	entryLen  = custody.AddressLength + 32

	// BalanceAccountLen is the size of a serialized balance account:
	// guid 32 | name 32 | approvals required 1 | timeout seconds 8 |
	// transfer approvers 3 | allowed destinations 16 | settings 1 | lock 1
	BalanceAccountLen = 32 + 32 + 1 + 8 + (MaxSigners+7)/8 + (MaxAddressBookEntries+7)/8 + 1 + 1

	// WalletLen is the size of a serialized wallet:
	// initialized 1 | signers 24*(1+32) | assistant 32 |
	// address book 128*(1+64) | approvals required 1 | timeout seconds 8 |
	// config approvers 3 | account count 1 | accounts 10*94 | lock 1
	WalletLen = 1 + MaxSigners*(1+signerLen) + signerLen + MaxAddressBookEntries*(1+entryLen) +
		1 + 8 + (MaxSigners+7)/8 + 1 + MaxBalanceAccounts*BalanceAccountLen + 1
)

const (
	whitelistSettingBit = 0
	dappsSettingBit     = 1
)

type signerCodec struct{}

func (signerCodec) Size() int { return signerLen }

func (signerCodec) Put(dst []byte, s Signer) { copy(dst, s.Key[:]) }

func (signerCodec) Read(src []byte) (Signer, error) {
	var s Signer
	copy(s.Key[:], src)
	return s, nil
}

type entryCodec struct{}

func (entryCodec) Size() int { return entryLen }

func (entryCodec) Put(dst []byte, e AddressBookEntry) {
	copy(dst, e.Address[:])
	copy(dst[custody.AddressLength:], e.NameHash[:])
}

func (entryCodec) Read(src []byte) (AddressBookEntry, error) {
	var e AddressBookEntry
	copy(e.Address[:], src)
	copy(e.NameHash[:], src[custody.AddressLength:])
	return e, nil
}

// cursor walks a fixed layout buffer.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) next(n int) []byte {
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

func putTimeout(dst []byte, d time.Duration) {
	binary.LittleEndian.PutUint64(dst, uint64(d/time.Second))
}

func readTimeout(src []byte) (time.Duration, error) {
	secs := binary.LittleEndian.Uint64(src)
	if secs > uint64(math.MaxInt64/int64(time.Second)) {
		return 0, errors.Wrapf(errors.ErrMalformedRecord, "timeout of %d seconds", secs)
	}
	return time.Duration(secs) * time.Second, nil
}

func readBool(b byte, name string) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(errors.ErrMalformedRecord, "%s flag %d", name, b)
	}
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a *BalanceAccount) MarshalBinary() ([]byte, error) {
	out := make([]byte, BalanceAccountLen)
	a.marshalTo(out)
	return out, nil
}

func (a *BalanceAccount) marshalTo(dst []byte) {
	c := cursor{buf: dst}
	copy(c.next(32), a.GUIDHash[:])
	copy(c.next(32), a.NameHash[:])
	c.next(1)[0] = a.ApprovalsRequiredForTransfer
	putTimeout(c.next(8), a.ApprovalTimeoutForTransfer)
	copy(c.next(slots.FlagsLen(MaxSigners)), a.TransferApprovers.Bytes())
	copy(c.next(slots.FlagsLen(MaxAddressBookEntries)), a.AllowedDestinations.Bytes())
	c.next(1)[0] = uint8(a.WhitelistEnabled)<<whitelistSettingBit | uint8(a.DAppsEnabled)<<dappsSettingBit
	c.next(1)[0] = boolByte(a.PolicyUpdateLocked)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *BalanceAccount) UnmarshalBinary(raw []byte) error {
	if len(raw) != BalanceAccountLen {
		return errors.Wrapf(errors.ErrMalformedRecord, "balance account: want %d bytes, got %d", BalanceAccountLen, len(raw))
	}
	var (
		acc BalanceAccount
		err error
		c   = cursor{buf: raw}
	)
	copy(acc.GUIDHash[:], c.next(32))
	copy(acc.NameHash[:], c.next(32))
	acc.ApprovalsRequiredForTransfer = c.next(1)[0]
	if acc.ApprovalTimeoutForTransfer, err = readTimeout(c.next(8)); err != nil {
		return errors.Wrap(err, "balance account")
	}
	if acc.TransferApprovers, err = slots.FlagsFromBytes[Signer](MaxSigners, c.next(slots.FlagsLen(MaxSigners))); err != nil {
		return errors.Wrap(err, "balance account approvers")
	}
	if acc.AllowedDestinations, err = slots.FlagsFromBytes[AddressBookEntry](MaxAddressBookEntries, c.next(slots.FlagsLen(MaxAddressBookEntries))); err != nil {
		return errors.Wrap(err, "balance account destinations")
	}
	settings := c.next(1)[0]
	if settings>>(dappsSettingBit+1) != 0 {
		return errors.Wrapf(errors.ErrMalformedRecord, "balance account settings %08b", settings)
	}
	acc.WhitelistEnabled = BooleanSetting(settings >> whitelistSettingBit & 1)
	acc.DAppsEnabled = BooleanSetting(settings >> dappsSettingBit & 1)
	if acc.PolicyUpdateLocked, err = readBool(c.next(1)[0], "balance account lock"); err != nil {
		return err
	}
	*a = acc
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler. Unused balance account
// slots are zero filled.
func (w *Wallet) MarshalBinary() ([]byte, error) {
	if len(w.BalanceAccounts) > MaxBalanceAccounts {
		return nil, errors.Wrapf(errors.ErrInput, "at most %d balance accounts allowed", MaxBalanceAccounts)
	}
	out := make([]byte, WalletLen)
	c := cursor{buf: out}
	c.next(1)[0] = boolByte(w.IsInitialized)
	w.Signers.MarshalTo(c.next(slots.EncodedLen[Signer](MaxSigners, signerCodec{})), signerCodec{})
	copy(c.next(signerLen), w.Assistant.Key[:])
	w.AddressBook.MarshalTo(c.next(slots.EncodedLen[AddressBookEntry](MaxAddressBookEntries, entryCodec{})), entryCodec{})
	c.next(1)[0] = w.ApprovalsRequiredForConfig
	putTimeout(c.next(8), w.ApprovalTimeoutForConfig)
	copy(c.next(slots.FlagsLen(MaxSigners)), w.ConfigApprovers.Bytes())
	c.next(1)[0] = uint8(len(w.BalanceAccounts))
	accounts := c.next(MaxBalanceAccounts * BalanceAccountLen)
	for i := range w.BalanceAccounts {
		w.BalanceAccounts[i].marshalTo(accounts[i*BalanceAccountLen : (i+1)*BalanceAccountLen])
	}
	c.next(1)[0] = boolByte(w.ConfigPolicyUpdateLocked)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Every byte is
// checked so that a decoded wallet always serializes back to the same
// bytes.
func (w *Wallet) UnmarshalBinary(raw []byte) error {
	if len(raw) != WalletLen {
		return errors.Wrapf(errors.ErrMalformedRecord, "wallet: want %d bytes, got %d", WalletLen, len(raw))
	}
	var (
		wl  Wallet
		err error
		c   = cursor{buf: raw}
	)
	if wl.IsInitialized, err = readBool(c.next(1)[0], "wallet initialized"); err != nil {
		return err
	}
	if wl.Signers, err = slots.Unmarshal[Signer](c.next(slots.EncodedLen[Signer](MaxSigners, signerCodec{})), MaxSigners, signerCodec{}); err != nil {
		return errors.Wrap(err, "wallet signers")
	}
	copy(wl.Assistant.Key[:], c.next(signerLen))
	if wl.AddressBook, err = slots.Unmarshal[AddressBookEntry](c.next(slots.EncodedLen[AddressBookEntry](MaxAddressBookEntries, entryCodec{})), MaxAddressBookEntries, entryCodec{}); err != nil {
		return errors.Wrap(err, "wallet address book")
	}
	wl.ApprovalsRequiredForConfig = c.next(1)[0]
	if wl.ApprovalTimeoutForConfig, err = readTimeout(c.next(8)); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if wl.ConfigApprovers, err = slots.FlagsFromBytes[Signer](MaxSigners, c.next(slots.FlagsLen(MaxSigners))); err != nil {
		return errors.Wrap(err, "wallet config approvers")
	}
	count := int(c.next(1)[0])
	if count > MaxBalanceAccounts {
		return errors.Wrapf(errors.ErrMalformedRecord, "wallet: %d balance accounts", count)
	}
	accounts := c.next(MaxBalanceAccounts * BalanceAccountLen)
	if count > 0 {
		wl.BalanceAccounts = make([]BalanceAccount, count)
	}
	for i := 0; i < MaxBalanceAccounts; i++ {
		chunk := accounts[i*BalanceAccountLen : (i+1)*BalanceAccountLen]
		if i >= count {
			if !isZero(chunk) {
				return errors.Wrapf(errors.ErrMalformedRecord, "wallet: balance account %d beyond count", i)
			}
			continue
		}
		if err := wl.BalanceAccounts[i].UnmarshalBinary(chunk); err != nil {
			return errors.Wrapf(err, "wallet: balance account %d", i)
		}
	}
	if wl.ConfigPolicyUpdateLocked, err = readBool(c.next(1)[0], "wallet lock"); err != nil {
		return err
	}
	*w = wl
	return nil
}

// Marshal serializes the wallet for the store.
func (w *Wallet) Marshal() ([]byte, error) {
	return w.MarshalBinary()
}

// Unmarshal loads a wallet serialized with Marshal.
func (w *Wallet) Unmarshal(raw []byte) error {
	return w.UnmarshalBinary(raw)
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
