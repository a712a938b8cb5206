package wallet

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x/cash"
)

// confPkg is the name the configuration is stored under.
const confPkg = "wallet"

// Configuration is the wallet extension configuration. It is set in the
// genesis and can be updated by the owner.
type Configuration struct {
	// Owner can update the configuration. Without an owner the
	// configuration can be changed only by the genesis.
	Owner custody.Address `json:"owner"`
	// OperationDeposit is charged from the initiator of every operation
	// and returned to the collector when the operation is finalized.
	OperationDeposit uint64 `json:"operation_deposit"`
	DepositTicker    string `json:"deposit_ticker"`
	// NativeTicker and WrappedTicker are the two sides of a WrapUnwrap
	// operation.
	NativeTicker  string `json:"native_ticker"`
	WrappedTicker string `json:"wrapped_ticker"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

// configurationMsg is the protobuf message of a Configuration.
type configurationMsg struct {
	Owner            []byte `protobuf:"bytes,1,opt,name=owner,proto3"`
	OperationDeposit uint64 `protobuf:"varint,2,opt,name=operation_deposit,proto3"`
	DepositTicker    string `protobuf:"bytes,3,opt,name=deposit_ticker,proto3"`
	NativeTicker     string `protobuf:"bytes,4,opt,name=native_ticker,proto3"`
	WrappedTicker    string `protobuf:"bytes,5,opt,name=wrapped_ticker,proto3"`
}

func (m *configurationMsg) Reset()         { *m = configurationMsg{} }
func (m *configurationMsg) String() string { return proto.CompactTextString(m) }
func (*configurationMsg) ProtoMessage()    {}

// GetOwner returns the address allowed to update the configuration.
func (c *Configuration) GetOwner() custody.Address {
	return c.Owner
}

// Marshal serializes the configuration using protobuf.
func (c *Configuration) Marshal() ([]byte, error) {
	m := configurationMsg{
		OperationDeposit: c.OperationDeposit,
		DepositTicker:    c.DepositTicker,
		NativeTicker:     c.NativeTicker,
		WrappedTicker:    c.WrappedTicker,
	}
	if !c.Owner.IsZero() {
		m.Owner = c.Owner[:]
	}
	return proto.Marshal(&m)
}

// Unmarshal loads a configuration serialized with Marshal.
func (c *Configuration) Unmarshal(raw []byte) error {
	var m configurationMsg
	if err := proto.Unmarshal(raw, &m); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	var owner custody.Address
	if len(m.Owner) != 0 {
		addr, err := custody.AddressFromBytes(m.Owner)
		if err != nil {
			return errors.Wrap(err, "owner")
		}
		owner = addr
	}
	*c = Configuration{
		Owner:            owner,
		OperationDeposit: m.OperationDeposit,
		DepositTicker:    m.DepositTicker,
		NativeTicker:     m.NativeTicker,
		WrappedTicker:    m.WrappedTicker,
	}
	return nil
}

func (c *Configuration) Validate() error {
	var errs error
	if (c.OperationDeposit != 0 || c.DepositTicker != "") && !cash.IsCC(c.DepositTicker) {
		errs = errors.AppendField(errs, "DepositTicker", errors.Wrapf(errors.ErrInput, "invalid ticker %q", c.DepositTicker))
	}
	switch {
	case c.NativeTicker == "" && c.WrappedTicker == "":
		// Wrapping is disabled.
	case !cash.IsCC(c.NativeTicker):
		errs = errors.AppendField(errs, "NativeTicker", errors.Wrapf(errors.ErrInput, "invalid ticker %q", c.NativeTicker))
	case !cash.IsCC(c.WrappedTicker):
		errs = errors.AppendField(errs, "WrappedTicker", errors.Wrapf(errors.ErrInput, "invalid ticker %q", c.WrappedTicker))
	case c.NativeTicker == c.WrappedTicker:
		errs = errors.AppendField(errs, "WrappedTicker", errors.Wrap(errors.ErrInput, "must differ from native ticker"))
	}
	return errs
}

// deposit returns the coin charged for opening an operation and false if
// no deposit is configured.
func (c Configuration) deposit() (cash.Coin, bool) {
	if c.OperationDeposit == 0 {
		return cash.Coin{}, false
	}
	return cash.NewCoin(c.OperationDeposit, c.DepositTicker), true
}

// loadConf returns the current configuration. A missing configuration
// means no deposit and no wrapping.
func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return Configuration{}, nil
	default:
		return conf, errors.Wrap(err, "load configuration")
	}
}

// UpdateConfigurationMsg patches the configuration. Zero fields of Patch
// are left unchanged. The patched configuration is validated as a whole
// before it is saved.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ custody.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty)
	}
	return nil
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	if m.Patch == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "patch")
	}
	return m.Patch.Marshal()
}
