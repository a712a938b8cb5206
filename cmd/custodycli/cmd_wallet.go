package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/google/uuid"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/slots"
	"github.com/iov-one/custody/x/multisig"
	"github.com/iov-one/custody/x/wallet"
)

func cmdGUID(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create the GUID hash of a new balance account. Keep the printed uuid, it is
the only way to recompute the hash.
`)
		fl.PrintDefaults()
	}
	var (
		uuidFl = fl.String("uuid", "", "Use given uuid instead of generating a new one.")
		nameFl = fl.String("name", "", "Also print the hash of the balance account name.")
	)
	fl.Parse(args)

	id := uuid.New()
	if *uuidFl != "" {
		var err error
		if id, err = uuid.Parse(*uuidFl); err != nil {
			return fmt.Errorf("invalid uuid: %s", err)
		}
	}

	res := struct {
		UUID     string           `json:"uuid"`
		GUIDHash wallet.GUIDHash  `json:"guid_hash"`
		NameHash *wallet.NameHash `json:"name_hash,omitempty"`
	}{
		UUID:     id.String(),
		GUIDHash: wallet.NewGUIDHash(id),
	}
	if *nameFl != "" {
		h := wallet.HashName(*nameFl)
		res.NameHash = &h
	}
	return writeJSON(output, res)
}

func cmdParamsHash(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read operation params in JSON format from the input and print the hash every
approver must vote for.

  {"kind": "transfer", "params": {...}}
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	raw, err := readInput(input)
	if err != nil {
		return err
	}
	params, err := wallet.UnmarshalParams(raw)
	if err != nil {
		return fmt.Errorf("cannot parse params: %s", err)
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %s", err)
	}
	_, err = fmt.Fprintln(output, multisig.HashParams(params))
	return err
}

func cmdViewOperation(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode a hex encoded operation record read from the input and display it.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	raw, err := readHexInput(input)
	if err != nil {
		return err
	}
	var op multisig.Operation
	if err := op.Unmarshal(raw); err != nil {
		return fmt.Errorf("cannot deserialize operation: %s", err)
	}
	return writeJSON(output, op)
}

func cmdViewWallet(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode a hex encoded wallet record read from the input and display it.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	raw, err := readHexInput(input)
	if err != nil {
		return err
	}
	var w wallet.Wallet
	if err := w.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("cannot deserialize wallet: %s", err)
	}
	return writeJSON(output, newWalletView(&w))
}

// walletView is the human readable representation of a wallet. Approvers
// and destinations are listed by slot id.
type walletView struct {
	Initialized                bool                 `json:"initialized"`
	Assistant                  custody.Address      `json:"assistant"`
	Signers                    []wallet.SignerSlot  `json:"signers"`
	AddressBook                []wallet.EntrySlot   `json:"address_book"`
	ConfigApprovers            []int                `json:"config_approvers"`
	ApprovalsRequiredForConfig uint8                `json:"approvals_required_for_config"`
	ApprovalTimeoutForConfig   string               `json:"approval_timeout_for_config"`
	ConfigPolicyUpdateLocked   bool                 `json:"config_policy_update_locked"`
	BalanceAccounts            []balanceAccountView `json:"balance_accounts"`
}

type balanceAccountView struct {
	GUIDHash                     wallet.GUIDHash `json:"guid_hash"`
	NameHash                     wallet.NameHash `json:"name_hash"`
	ApprovalsRequiredForTransfer uint8           `json:"approvals_required_for_transfer"`
	ApprovalTimeoutForTransfer   string          `json:"approval_timeout_for_transfer"`
	TransferApprovers            []int           `json:"transfer_approvers"`
	AllowedDestinations          []int           `json:"allowed_destinations"`
	WhitelistEnabled             string          `json:"whitelist_enabled"`
	DAppsEnabled                 string          `json:"dapps_enabled"`
	PolicyUpdateLocked           bool            `json:"policy_update_locked"`
}

func newWalletView(w *wallet.Wallet) walletView {
	v := walletView{
		Initialized:                w.IsInitialized,
		Assistant:                  w.Assistant.Key,
		Signers:                    []wallet.SignerSlot{},
		AddressBook:                []wallet.EntrySlot{},
		ConfigApprovers:            slotIDs(w.ConfigApprovers.IterEnabled()),
		ApprovalsRequiredForConfig: w.ApprovalsRequiredForConfig,
		ApprovalTimeoutForConfig:   w.ApprovalTimeoutForConfig.String(),
		ConfigPolicyUpdateLocked:   w.ConfigPolicyUpdateLocked,
		BalanceAccounts:            []balanceAccountView{},
	}
	w.Signers.Each(func(id wallet.SignerID, s wallet.Signer) {
		v.Signers = append(v.Signers, wallet.SignerSlot{ID: id, Value: s})
	})
	w.AddressBook.Each(func(id wallet.EntryID, e wallet.AddressBookEntry) {
		v.AddressBook = append(v.AddressBook, wallet.EntrySlot{ID: id, Value: e})
	})
	for _, a := range w.BalanceAccounts {
		v.BalanceAccounts = append(v.BalanceAccounts, balanceAccountView{
			GUIDHash:                     a.GUIDHash,
			NameHash:                     a.NameHash,
			ApprovalsRequiredForTransfer: a.ApprovalsRequiredForTransfer,
			ApprovalTimeoutForTransfer:   a.ApprovalTimeoutForTransfer.String(),
			TransferApprovers:            slotIDs(a.TransferApprovers.IterEnabled()),
			AllowedDestinations:          slotIDs(a.AllowedDestinations.IterEnabled()),
			WhitelistEnabled:             a.WhitelistEnabled.String(),
			DAppsEnabled:                 a.DAppsEnabled.String(),
			PolicyUpdateLocked:           a.PolicyUpdateLocked,
		})
	}
	return v
}

// slotIDs converts ids to plain numbers, a slice of uint8 based ids would
// be serialized as base64.
func slotIDs[T any](ids []slots.ID[T]) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

func readInput(input io.Reader) ([]byte, error) {
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("cannot read input: %s", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("no input data")
	}
	return raw, nil
}

func readHexInput(input io.Reader) ([]byte, error) {
	raw, err := readInput(input)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("input must be hex encoded: %s", err)
	}
	return b, nil
}

func writeJSON(output io.Writer, v interface{}) error {
	pretty, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}
