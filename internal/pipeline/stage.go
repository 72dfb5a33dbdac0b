package pipeline

// Stage marks which phase of the pipeline a State describes.
type Stage int

const (
	// Individual stages see one sample at a time.
	Individual Stage = iota
	// Batches stages see whole collated batches.
	Batches
)

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case Individual:
		return "individual"
	case Batches:
		return "batches"
	default:
		return "unknown"
	}
}
