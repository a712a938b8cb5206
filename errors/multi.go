package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored and
// nested groups are flattened. Returns nil when no error was given.
func Append(errs ...error) error {
	var all []error
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			all = append(all, m...)
			continue
		}
		all = append(all, e)
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return multiErr(all)
	}
}

// Field wraps err with the name of the attribute it was returned for. It
// returns nil if err is nil.
//
// Use Go naming for the field name. For nested fields use dot notation, for
// example Accounts.2.Name.
func Field(name string, err error) error {
	if errIsNil(err) {
		return nil
	}
	return Wrapf(err, "field %q", name)
}

// AppendField is a shortcut for Append(errs, Field(name, err)).
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err))
}

type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors occurred: %s", len(m), strings.Join(msgs, "; "))
}

// Unpack returns all grouped errors.
func (m multiErr) Unpack() []error {
	return []error(m)
}

// Code returns the code of the first error, matching the fail fast
// behaviour of the rest of the code base.
func (m multiErr) Code() uint32 {
	return Code(m[0])
}
