package app

import (
	"encoding/binary"
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Genesis file format.
type Genesis struct {
	ChainID    string          `json:"chain_id"`
	AppOptions custody.Options `json:"app_options"`
}

// LoadGenesis reads and parses a genesis file.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...custody.Initializer) custody.Initializer {
	return chainInitializer{inits: inits}
}

type chainInitializer struct {
	inits []custody.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}

const chainIDKey = "_i:chain_id"

// loadChainID returns the chain id stored if any
func loadChainID(kv custody.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv custody.KVStore, chainID string) error {
	if !custody.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	k := []byte(chainIDKey)
	if ok, err := kv.Has(k); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	} else if ok {
		return errors.Wrap(errors.ErrState, "chain id already set")
	}
	return kv.Set(k, []byte(chainID))
}

const blockTimeKey = "_i:block_time"

// loadBlockTime returns the last block time stored or a zero time.
func loadBlockTime(kv custody.ReadOnlyKVStore) (time.Time, error) {
	v, err := kv.Get([]byte(blockTimeKey))
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if v == nil {
		return time.Time{}, nil
	}
	if len(v) != 8 {
		return time.Time{}, errors.Wrapf(errors.ErrModel, "block time of %d bytes", len(v))
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(v))), nil
}

func saveBlockTime(kv custody.KVStore, t time.Time) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(t.UnixNano()))
	if err := kv.Set([]byte(blockTimeKey), v[:]); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
