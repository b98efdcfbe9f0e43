package terminal

// Failure is a categorized engine init failure
type Failure int

const (
	FailureUnknown Failure = iota
	UnsupportedTerminal
	FailedToOpenTty
	PipeTrapError
)

// FailureFromCode maps a negative init code to a Failure.
// Codes without a named mapping yield FailureUnknown.
func FailureFromCode(code int) Failure {
	switch code {
	case CodeUnsupportedTerminal:
		return UnsupportedTerminal
	case CodeFailedToOpenTty:
		return FailedToOpenTty
	case CodePipeTrapError:
		return PipeTrapError
	}
	return FailureUnknown
}

func (f Failure) Error() string {
	switch f {
	case UnsupportedTerminal:
		return "terminal: unsupported terminal"
	case FailedToOpenTty:
		return "terminal: failed to open tty"
	case PipeTrapError:
		return "terminal: pipe trap error"
	}
	return "terminal: unknown init failure"
}
