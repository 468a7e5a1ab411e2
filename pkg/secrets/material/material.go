package material

import "github.com/lamassuiot/ca-material-validator/pkg/engine"

// Secrets hands the engine its three input slots. I/O failure is not an
// error return here: it is a source state the engine reports on, so a
// backend that cannot read a slot still lets every other check run.
type Secrets interface {
	GetBundle() engine.Source
	GetKey() engine.Source
	GetCRLChain() engine.Source
}
