package multisig

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/minio/sha256-simd"
)

// MaxApprovers is the maximum number of approvers an operation can
// snapshot. It matches the maximum number of signers of a wallet.
const MaxApprovers = 24

// ApprovalDisposition is the vote of a single approver.
type ApprovalDisposition uint8

const (
	DispositionNone ApprovalDisposition = iota
	DispositionApprove
	DispositionDeny
)

func (d ApprovalDisposition) String() string {
	switch d {
	case DispositionNone:
		return "none"
	case DispositionApprove:
		return "approve"
	case DispositionDeny:
		return "deny"
	default:
		return fmt.Sprintf("ApprovalDisposition(%d)", uint8(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d ApprovalDisposition) MarshalText() ([]byte, error) {
	if d > DispositionDeny {
		return nil, errors.Wrapf(errors.ErrInput, "unknown disposition %d", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *ApprovalDisposition) UnmarshalText(raw []byte) error {
	switch strings.ToLower(string(raw)) {
	case "none":
		*d = DispositionNone
	case "approve":
		*d = DispositionApprove
	case "deny":
		*d = DispositionDeny
	default:
		return errors.Wrapf(errors.ErrInput, "unknown disposition %q", raw)
	}
	return nil
}

// OperationDisposition is the aggregated outcome of all votes.
type OperationDisposition uint8

const (
	OperationNone OperationDisposition = iota
	OperationApproved
	OperationDenied
)

func (d OperationDisposition) String() string {
	switch d {
	case OperationNone:
		return "none"
	case OperationApproved:
		return "approved"
	case OperationDenied:
		return "denied"
	default:
		return fmt.Sprintf("OperationDisposition(%d)", uint8(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d OperationDisposition) MarshalText() ([]byte, error) {
	if d > OperationDenied {
		return nil, errors.Wrapf(errors.ErrInput, "unknown disposition %d", d)
	}
	return []byte(d.String()), nil
}

// ParamsHash binds an operation to the exact parameters of the proposed
// change.
type ParamsHash [32]byte

func (h ParamsHash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalJSON provides a hex representation for JSON.
func (h ParamsHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON parses JSON in hex representation.
func (h *ParamsHash) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "params hash must be a hex string")
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(h) {
		return errors.Wrap(errors.ErrInput, "params hash must be 32 hex encoded bytes")
	}
	copy(h[:], b)
	return nil
}

// Params is implemented by the parameters of every operation kind.
type Params interface {
	// CanonicalBytes returns a deterministic encoding of every field
	// that defines the operation. Two different operations must never
	// share the same encoding.
	CanonicalBytes() []byte
}

// HashParams returns the SHA-256 digest of the canonical encoding of p.
func HashParams(p Params) ParamsHash {
	return ParamsHash(sha256.Sum256(p.CanonicalBytes()))
}

// DispositionRecord is the vote of one approver.
type DispositionRecord struct {
	Approver    custody.Address     `json:"approver"`
	Disposition ApprovalDisposition `json:"disposition"`
}

// Operation is the record of a pending operation.
type Operation struct {
	IsInitialized        bool                 `json:"initialized"`
	DispositionRecords   []DispositionRecord  `json:"disposition_records"`
	DispositionsRequired uint8                `json:"dispositions_required"`
	OperationDisposition OperationDisposition `json:"operation_disposition"`
	ParamsHash           ParamsHash           `json:"params_hash"`
	StartedAt            custody.UnixTime     `json:"started_at"`
	ExpiresAt            custody.UnixTime     `json:"expires_at"`
}

// NewOperation returns an operation waiting for the votes of given
// approvers. It expires timeout after now.
func NewOperation(
	approvers []custody.Address,
	required uint8,
	now time.Time,
	timeout time.Duration,
	params Params,
) (*Operation, error) {
	if timeout < time.Second {
		return nil, errors.Wrap(errors.ErrTimeout, "operation must not expire immediately")
	}
	records := make([]DispositionRecord, len(approvers))
	for i, a := range approvers {
		records[i] = DispositionRecord{Approver: a, Disposition: DispositionNone}
	}
	started := custody.AsUnixTime(now)
	op := &Operation{
		IsInitialized:        true,
		DispositionRecords:   records,
		DispositionsRequired: required,
		OperationDisposition: OperationNone,
		ParamsHash:           HashParams(params),
		StartedAt:            started,
		ExpiresAt:            started.Add(timeout),
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}
	return op, nil
}

// Validate returns an error if the operation is not consistent.
func (o *Operation) Validate() error {
	if !o.IsInitialized {
		return errors.Wrap(errors.ErrState, "not initialized")
	}
	n := len(o.DispositionRecords)
	if n == 0 {
		return errors.Wrap(errors.ErrEmpty, "approvers")
	}
	if n > MaxApprovers {
		return errors.Wrapf(errors.ErrInput, "at most %d approvers allowed", MaxApprovers)
	}
	seen := make(map[custody.Address]struct{}, n)
	for i, r := range o.DispositionRecords {
		if err := r.Approver.Validate(); err != nil {
			return errors.Wrapf(err, "approver %d", i)
		}
		if _, ok := seen[r.Approver]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "approver %s", r.Approver)
		}
		seen[r.Approver] = struct{}{}
		if r.Disposition > DispositionDeny {
			return errors.Wrapf(errors.ErrInput, "approver %d disposition", i)
		}
	}
	if o.DispositionsRequired == 0 || int(o.DispositionsRequired) > n {
		return errors.Wrapf(errors.ErrThreshold, "%d of %d approvers required", o.DispositionsRequired, n)
	}
	if o.OperationDisposition > OperationDenied {
		return errors.Wrap(errors.ErrInput, "operation disposition")
	}
	if o.ExpiresAt <= o.StartedAt {
		return errors.Wrap(errors.ErrState, "expiration must be after start")
	}
	return nil
}

// Approvers returns the keys of all approvers snapshotted by this operation.
func (o *Operation) Approvers() []custody.Address {
	keys := make([]custody.Address, len(o.DispositionRecords))
	for i, r := range o.DispositionRecords {
		keys[i] = r.Approver
	}
	return keys
}

// IsExpired returns true if the operation cannot collect votes anymore at
// given time. Expiration is inclusive.
func (o *Operation) IsExpired(now time.Time) bool {
	return o.ExpiresAt <= custody.AsUnixTime(now)
}

// SetDisposition records the vote of an approver and recomputes the
// outcome.
//
// A vote replaces any previous vote of the same approver. Once the outcome
// is decided it cannot change anymore. Repeating a vote that does not
// change the record is accepted.
func (o *Operation) SetDisposition(approver custody.Address, d ApprovalDisposition, hash ParamsHash, now time.Time) error {
	if !o.IsInitialized {
		return errors.Wrap(errors.ErrState, "not initialized")
	}
	idx := -1
	for i, r := range o.DispositionRecords {
		if r.Approver == approver {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not an approver", approver)
	}
	if hash != o.ParamsHash {
		return errors.Wrap(errors.ErrParamsHashMismatch, "disposition")
	}
	if o.IsExpired(now) {
		return errors.Wrapf(errors.ErrExpired, "expired at %s", o.ExpiresAt)
	}
	if d != DispositionApprove && d != DispositionDeny {
		return errors.Wrapf(errors.ErrInput, "disposition must be approve or deny, got %s", d)
	}
	if o.OperationDisposition != OperationNone {
		if o.DispositionRecords[idx].Disposition == d {
			return nil
		}
		return errors.Wrapf(errors.ErrState, "operation already %s", o.OperationDisposition)
	}
	o.DispositionRecords[idx].Disposition = d
	o.OperationDisposition = o.Outcome()
	return nil
}

// Outcome computes the aggregated disposition of all recorded votes. The
// operation is approved as soon as enough approvals are recorded and denied
// as soon as the approvers that did not deny cannot reach the quorum.
func (o *Operation) Outcome() OperationDisposition {
	var approvals, denials int
	for _, r := range o.DispositionRecords {
		switch r.Disposition {
		case DispositionApprove:
			approvals++
		case DispositionDeny:
			denials++
		}
	}
	required := int(o.DispositionsRequired)
	switch {
	case approvals >= required:
		return OperationApproved
	case len(o.DispositionRecords)-denials < required:
		return OperationDenied
	default:
		return OperationNone
	}
}

// Finalize checks that params are the ones this operation was created for
// and returns true if the change they describe may be applied.
//
// A nil error means that the operation is closed and its record can be
// removed. Denied and expired operations are closed without applying the
// change. An operation that is still collecting votes cannot be finalized.
func (o *Operation) Finalize(params Params, now time.Time) (bool, error) {
	if !o.IsInitialized {
		return false, errors.Wrap(errors.ErrState, "not initialized")
	}
	if HashParams(params) != o.ParamsHash {
		return false, errors.Wrap(errors.ErrParamsHashMismatch, "finalize")
	}
	switch o.OperationDisposition {
	case OperationApproved:
		return true, nil
	case OperationDenied:
		return false, nil
	}
	if o.IsExpired(now) {
		return false, nil
	}
	return false, errors.Wrap(errors.ErrState, "operation is still pending")
}

// CloseReason explains why a finalized operation did not apply its change.
// It returns nil for an approved operation.
func (o *Operation) CloseReason(now time.Time) error {
	switch o.OperationDisposition {
	case OperationApproved:
		return nil
	case OperationDenied:
		return errors.Wrap(errors.ErrUnauthorized, "operation denied")
	}
	if o.IsExpired(now) {
		return errors.Wrap(errors.ErrExpired, "operation expired without quorum")
	}
	return errors.Wrap(errors.ErrState, "operation is still pending")
}
