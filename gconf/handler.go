package gconf

import (
	"reflect"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
)

// OwnedConfig is a configuration that names the address allowed to patch
// it.
type OwnedConfig interface {
	Unmarshaler
	ValidMarshaler
	GetOwner() custody.Address
}

// Bootstrap returns the address allowed to create a configuration that was
// not set in the genesis.
type Bootstrap func(custody.ReadOnlyKVStore) (custody.Address, error)

// UpdateConfigurationHandler applies the patch carried by a message to the
// configuration of a single extension.
type UpdateConfigurationHandler struct {
	pkg       string
	typ       reflect.Type
	auth      x.Authenticator
	bootstrap Bootstrap
}

var _ custody.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a handler patching the configuration
// stored for pkg. The message must have a Patch field of the same type as
// config. Zero fields of the patch keep the stored value.
//
// An existing configuration can be patched only with the signature of its
// owner. A missing one can be created only with the signature of the
// address returned by bootstrap. A nil bootstrap means the configuration
// must come from the genesis.
func NewUpdateConfigurationHandler(
	pkg string,
	config OwnedConfig,
	auth x.Authenticator,
	bootstrap Bootstrap,
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		typ:       reflect.TypeOf(config).Elem(),
		auth:      auth,
		bootstrap: bootstrap,
	}
}

func (h UpdateConfigurationHandler) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.applyTx(ctx, store, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	conf, err := h.applyTx(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	owner := conf.GetOwner()
	custody.GetLogger(ctx).Info("configuration updated", "pkg", h.pkg, "owner", owner.String())
	return &custody.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) applyTx(ctx custody.Context, store custody.KVStore, tx custody.Tx) (OwnedConfig, error) {
	conf := reflect.New(h.typ).Interface().(OwnedConfig)
	if err := h.authorize(ctx, store, conf); err != nil {
		return nil, err
	}
	payload, err := patchPayload(tx)
	if err != nil {
		return nil, errors.Wrap(err, "patch")
	}
	if err := patch(conf, payload); err != nil {
		return nil, err
	}
	if err := Save(store, h.pkg, conf); err != nil {
		return nil, errors.Wrap(err, "cannot save patched configuration")
	}
	return conf, nil
}

// authorize loads the stored configuration into conf, if there is one, and
// checks that the right address signed the change.
func (h UpdateConfigurationHandler) authorize(ctx custody.Context, store custody.KVStore, conf OwnedConfig) error {
	err := Load(store, h.pkg, conf)
	switch {
	case err == nil:
		owner := conf.GetOwner()
		if owner.IsZero() {
			return errors.Wrapf(errors.ErrUnauthorized, "%s configuration has no owner", h.pkg)
		}
		if !h.auth.HasSigner(ctx, owner) {
			return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
		}
		return nil
	case !errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "load configuration")
	case h.bootstrap == nil:
		return errors.Wrapf(errors.ErrUnauthorized, "%s configuration can be set only in the genesis", h.pkg)
	}
	admin, err := h.bootstrap(store)
	if err != nil {
		return errors.Wrap(err, "bootstrap address")
	}
	if !h.auth.HasSigner(ctx, admin) {
		return errors.Wrap(errors.ErrUnauthorized, "bootstrap signature required")
	}
	return nil
}

// patch copies every non zero field of payload into config.
func patch(config OwnedConfig, payload OwnedConfig) error {
	cval := reflect.ValueOf(config).Elem()
	pval := reflect.ValueOf(payload).Elem()
	if pval.Type() != cval.Type() {
		return errors.Wrapf(errors.ErrMsg, "patch of type %s for configuration of type %s", pval.Type(), cval.Type())
	}
	for i := 0; i < cval.NumField(); i++ {
		if f := pval.Field(i); !f.IsZero() {
			cval.Field(i).Set(f)
		}
	}
	return nil
}

// patchPayload returns the value of the Patch field of the validated
// message.
func patchPayload(tx custody.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	val := reflect.ValueOf(msg)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "message %T is not a struct pointer", msg)
	}
	field := val.Elem().FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrInput, `%T has no "Patch" field`, msg)
	}
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrState, `"Patch" field is required`)
	}
	payload, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "patch of type %s is not a configuration", field.Type())
	}
	return payload, nil
}
