package errors

const (
	// SuccessCode is returned for a nil error.
	SuccessCode uint32 = 0

	// internalCode is returned for errors that do not wrap a registered
	// root error.
	internalCode uint32 = 1
)

// Code returns the numeric code of the root error wrapped by err. Errors
// that do not wrap a registered root error are reported as internal.
func Code(err error) uint32 {
	if errIsNil(err) {
		return SuccessCode
	}
	for {
		if e, ok := err.(coder); ok {
			return e.Code()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// Log returns a message that is safe to return to a client. Errors that do
// not wrap a registered root error and recovered panics may carry system
// information, so unless debug is set only a generic message is returned.
func Log(err error, debug bool) string {
	if errIsNil(err) {
		return ""
	}
	if debug {
		return err.Error()
	}
	code := Code(err)
	if code == internalCode || code == ErrPanic.code {
		return "internal error"
	}
	return err.Error()
}

type coder interface {
	Code() uint32
}

func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*Error); ok && e == nil {
		return true
	}
	return false
}
