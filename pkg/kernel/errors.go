package kernel

// ToolError is the tagged outcome of a failed or gated authorization. The
// three kinds have disjoint semantics (spec.md §7) and callers should
// switch on Kind rather than on error string content.
type ToolError struct {
	Kind   ErrorKind
	Reason string
}

// ErrorKind distinguishes the three ToolError varieties.
type ErrorKind int

const (
	// KindInvalid: the request is malformed. Caller should not retry
	// without fixing the payload. Never reveals policy content.
	KindInvalid ErrorKind = iota
	// KindDenied: the request is well-formed but policy forbids it.
	// Not retryable as-is.
	KindDenied
	// KindNeedsConfirmation: well-formed and within policy, but no
	// confirmation token is registered yet for this call's ID.
	KindNeedsConfirmation
)

func (e *ToolError) Error() string {
	switch e.Kind {
	case KindInvalid:
		return "invalid: " + e.Reason
	case KindDenied:
		return "denied: " + e.Reason
	case KindNeedsConfirmation:
		return "needs confirmation"
	default:
		return e.Reason
	}
}

// Invalid constructs a KindInvalid ToolError.
func Invalid(reason string) *ToolError { return &ToolError{Kind: KindInvalid, Reason: reason} }

// Denied constructs a KindDenied ToolError.
func Denied(reason string) *ToolError { return &ToolError{Kind: KindDenied, Reason: reason} }

// NeedsConfirmation constructs the confirmation-gate signal. It carries no
// reason: it is not a rejection, just a "not yet" for a well-formed,
// in-policy call.
func NeedsConfirmation() *ToolError { return &ToolError{Kind: KindNeedsConfirmation} }

// IsDenied reports whether err is a *ToolError of KindDenied.
func IsDenied(err error) bool {
	te, ok := err.(*ToolError)
	return ok && te.Kind == KindDenied
}

// IsInvalid reports whether err is a *ToolError of KindInvalid.
func IsInvalid(err error) bool {
	te, ok := err.(*ToolError)
	return ok && te.Kind == KindInvalid
}

// IsNeedsConfirmation reports whether err is a *ToolError of
// KindNeedsConfirmation.
func IsNeedsConfirmation(err error) bool {
	te, ok := err.(*ToolError)
	return ok && te.Kind == KindNeedsConfirmation
}
