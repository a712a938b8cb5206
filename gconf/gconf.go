package gconf

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// ReadStore is the part of custody.ReadOnlyKVStore configuration loading
// needs.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is the part of custody.KVStore configuration saving needs.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// configKey is the key the configuration of pkg is stored under. The
// prefix keeps it apart from every orm bucket.
func configKey(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save stores the configuration of pkg, replacing any previous one. Invalid
// configurations are rejected.
func Save(db Store, pkg string, src ValidMarshaler) error {
	key := configKey(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", key)
	}
	if err := db.Set(key, raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// ValidMarshaler is a configuration that can be checked and serialized.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Load reads the configuration of given package into dst. It returns
// ErrNotFound if the package was never configured.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	key := configKey(pkg)
	raw, err := db.Get(key)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", key)
	}
	return nil
}

// Unmarshaler loads a configuration serialized with Marshal.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is what InitConfig can load from the genesis.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// InitConfig reads the genesis section conf.<pkg> into conf and saves it.
// It returns ErrNotFound when the genesis has no such section, so that
// callers can treat the configuration as optional.
func InitConfig(db Store, opts custody.Options, pkg string, conf Configuration) error {
	var confOptions custody.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "read configuration for %s: %s", pkg, err)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
