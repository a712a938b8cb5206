package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/crypto/bech32"
	"github.com/stellar/go/exp/crypto/derivation"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.

A key can be derived from a hex encoded seed. When a derivation path is given
the key is derived using SLIP-10, otherwise the seed must be exactly 32 bytes
long and is used directly.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use CUSTODYCLI_PRIV_KEY environment variable to set it.")
		seedFl = fl.String("seed", "", "Hex encoded seed to derive the key from. A random key is created if not provided.")
		pathFl = fl.String("path", "", `SLIP-10 derivation path, for example "m/44'/148'/0'".`)
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first to ensure we do not delete
		// such crucial data by an accident (bad command usage).
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	var key *crypto.PrivateKey
	if *seedFl == "" {
		if *pathFl != "" {
			return fmt.Errorf("derivation path requires a seed")
		}
		key = crypto.GenPrivKeyEd25519()
	} else {
		seed, err := hex.DecodeString(*seedFl)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", err)
		}
		key, err = deriveKey(seed, *pathFl)
		if err != nil {
			return err
		}
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(key.Bytes()); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	return nil
}

// deriveKey returns the key for given seed and SLIP-10 path. An empty path
// uses the seed as the key.
func deriveKey(seed []byte, path string) (*crypto.PrivateKey, error) {
	if path == "" {
		return crypto.PrivKeyEd25519FromSeed(seed)
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, fmt.Errorf("cannot derive key for %q: %s", path, err)
	}
	return crypto.PrivKeyEd25519FromSeed(k.Key)
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address associated with your private key. The address is the
ed25519 public key, printed in hex and, if a prefix is given, in bech32.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use CUSTODYCLI_PRIV_KEY environment variable to set it.")
		hrpFl = fl.String("hrp", "custody", "Human readable prefix of the bech32 address. Empty to print only hex.")
	)
	fl.Parse(args)

	raw, err := ioutil.ReadFile(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot read private key file: %s", err)
	}
	key, err := crypto.PrivKeyEd25519FromBytes(raw)
	if err != nil {
		return fmt.Errorf("invalid private key: %s", err)
	}

	addr := key.PublicKey()
	if _, err := fmt.Fprintln(output, addr); err != nil {
		return err
	}
	if *hrpFl == "" {
		return nil
	}
	b, err := bech32.EncodeAddress(*hrpFl, addr)
	if err != nil {
		return fmt.Errorf("cannot serialize to bech32: %s", err)
	}
	_, err = fmt.Fprintln(output, b)
	return err
}
