package multisig

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const pathSetDispositionMsg = "multisig/set_disposition"

// SetDispositionMsg is the vote of an approver on a pending operation.
type SetDispositionMsg struct {
	Operation   custody.Address     `json:"operation"`
	Approver    custody.Address     `json:"approver"`
	Disposition ApprovalDisposition `json:"disposition"`
	ParamsHash  ParamsHash          `json:"params_hash"`
}

var _ custody.Msg = (*SetDispositionMsg)(nil)

// Path returns the routing path for this message.
func (SetDispositionMsg) Path() string {
	return pathSetDispositionMsg
}

// Validate ensures the message is well formed.
func (m *SetDispositionMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Operation", m.Operation.Validate())
	errs = errors.AppendField(errs, "Approver", m.Approver.Validate())
	if m.Disposition != DispositionApprove && m.Disposition != DispositionDeny {
		errs = errors.AppendField(errs, "Disposition", errors.Wrapf(errors.ErrInput, "%s", m.Disposition))
	}
	return errs
}

// Marshal returns the bytes covered by the transaction signature.
func (m *SetDispositionMsg) Marshal() ([]byte, error) {
	out := make([]byte, 0, 2*custody.AddressLength+1+len(m.ParamsHash))
	out = append(out, m.Operation[:]...)
	out = append(out, m.Approver[:]...)
	out = append(out, uint8(m.Disposition))
	out = append(out, m.ParamsHash[:]...)
	return out, nil
}
