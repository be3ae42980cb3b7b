package verifier

import "errors"

var (
	// ErrWorkDirUnavailable indicates the work directory is missing or cannot be entered.
	ErrWorkDirUnavailable = errors.New("work directory unavailable")

	// ErrScriptMissing indicates a configured script is not present in the work directory.
	ErrScriptMissing = errors.New("script not found")

	// ErrVerifierNotFound indicates the verifier executable could not be resolved.
	ErrVerifierNotFound = errors.New("verifier executable not found")
)
