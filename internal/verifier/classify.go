package verifier

import (
	"strings"

	"github.com/harrison/proofrunner/internal/models"
)

// Success markers printed by SAW on a completed proof.
const (
	MarkerProofSucceeded = "Proof succeeded!"
	MarkerVerified       = "Verified"
)

// DefaultMarkers returns the stdout substrings that mark a successful proof.
func DefaultMarkers() []string {
	return []string{MarkerProofSucceeded, MarkerVerified}
}

// Classify decides whether an invocation verified its script.
// Both conditions are required: exit status 0 and at least one marker in
// stdout. Stderr is never inspected.
func Classify(inv models.Invocation, markers []string) (bool, models.Reason) {
	if inv.ExitCode != 0 {
		return false, models.ReasonNonZeroExit
	}
	if !ContainsMarker(inv.Stdout, markers) {
		return false, models.ReasonNoMarker
	}
	return true, models.ReasonPassed
}

// ContainsMarker reports whether output contains any non-empty marker.
func ContainsMarker(output string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(output, m) {
			return true
		}
	}
	return false
}
