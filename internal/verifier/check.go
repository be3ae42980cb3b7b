package verifier

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/harrison/proofrunner/internal/models"
)

// ScriptStatus records whether a configured script is on disk.
type ScriptStatus struct {
	Script  models.Script
	Path    string
	Present bool
}

// Inspection is the result of a dry preflight over the configuration.
type Inspection struct {
	WorkDir      string
	WorkDirErr   error          // Non-nil when the work dir is unusable
	VerifierPath string         // Resolved verifier path, empty when not found
	VerifierErr  error          // Non-nil when the verifier cannot be resolved
	Scripts      []ScriptStatus // One entry per configured script, in order
}

// Missing returns the scripts that are not present.
func (i *Inspection) Missing() []models.Script {
	var missing []models.Script
	for _, s := range i.Scripts {
		if !s.Present {
			missing = append(missing, s.Script)
		}
	}
	return missing
}

// Ready reports whether a run could verify every script.
func (i *Inspection) Ready() bool {
	return i.WorkDirErr == nil && i.VerifierErr == nil && len(i.Missing()) == 0
}

// Inspect checks the work dir, the verifier and each script without running
// the verifier. Script presence is only checked when the work dir is usable.
func Inspect(opts Options) *Inspection {
	ins := &Inspection{WorkDir: opts.WorkDir}

	if path, err := exec.LookPath(opts.Verifier); err != nil {
		ins.VerifierErr = fmt.Errorf("%w: %s", ErrVerifierNotFound, opts.Verifier)
	} else {
		ins.VerifierPath = path
	}

	if err := CheckWorkDir(opts.WorkDir); err != nil {
		ins.WorkDirErr = err
		return ins
	}

	for _, script := range opts.Scripts {
		path := script.Path(opts.WorkDir)
		_, err := os.Stat(path)
		ins.Scripts = append(ins.Scripts, ScriptStatus{
			Script:  script,
			Path:    path,
			Present: err == nil,
		})
	}

	return ins
}
