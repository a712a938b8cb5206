package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is limited by the client. The greatest supported
// nonce value at client side is
//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
const maxSequenceValue = (1 << 53) - 1

// UserData is the replay protection state of a single signer.
type UserData struct {
	Pubkey   custody.Address
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

// userDataMsg is the protobuf message of a UserData.
type userDataMsg struct {
	Pubkey   []byte `protobuf:"bytes,1,opt,name=pubkey,proto3"`
	Sequence int64  `protobuf:"varint,2,opt,name=sequence,proto3"`
}

func (m *userDataMsg) Reset()         { *m = userDataMsg{} }
func (m *userDataMsg) String() string { return proto.CompactTextString(m) }
func (*userDataMsg) ProtoMessage()    {}

// Marshal serializes the account using protobuf.
func (u *UserData) Marshal() ([]byte, error) {
	return proto.Marshal(&userDataMsg{Pubkey: u.Pubkey[:], Sequence: u.Sequence})
}

// Unmarshal loads an account serialized with Marshal.
func (u *UserData) Unmarshal(raw []byte) error {
	var m userDataMsg
	if err := proto.Unmarshal(raw, &m); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	key, err := custody.AddressFromBytes(m.Pubkey)
	if err != nil {
		return errors.Wrap(err, "pubkey")
	}
	*u = UserData{Pubkey: key, Sequence: m.Sequence}
	return nil
}

func (u *UserData) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Pubkey", u.Pubkey.Validate())
	if u.Sequence < 0 || u.Sequence > maxSequenceValue {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	}
	return errs
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(ErrInvalidSequence, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Bucket stores signer accounts under the signer address.
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName)}
}

// GetUser returns the account of given key or ErrNotFound.
func (b Bucket) GetUser(db custody.ReadOnlyKVStore, pubkey custody.Address) (*UserData, error) {
	var u UserData
	if err := b.One(db, pubkey[:], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreate initializes a UserData if none exist for that key
func (b Bucket) GetOrCreate(db custody.ReadOnlyKVStore, pubkey custody.Address) (*UserData, error) {
	u, err := b.GetUser(db, pubkey)
	if errors.ErrNotFound.Is(err) {
		return &UserData{Pubkey: pubkey}, nil
	}
	return u, err
}

// Save stores the account under its key.
func (b Bucket) Save(db custody.KVStore, u *UserData) error {
	return b.Put(db, u.Pubkey[:], u)
}
