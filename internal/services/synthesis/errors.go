package synthesis

import "fmt"

// Stage names used in SynthesisError.
const (
	StagePrepare     = "prepare"
	StageSynthesize  = "synthesize"
	StageConcatenate = "concatenate"
	StageFinalize    = "finalize"
)

// SynthesisError reports an aborted synthesis. The wrapped error keeps its
// AppError code so callers can still tell auth, quota, network, subprocess
// and file failures apart.
type SynthesisError struct {
	Stage string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed during %s: %v", e.Stage, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
