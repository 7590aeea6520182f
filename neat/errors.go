package neat

import "errors"

var (
	// ErrConfig is wrapped by every configuration loading or validation failure.
	ErrConfig = errors.New("config error")
	// ErrDuplicateNode is returned when a node id is inserted twice into one genome.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrNodeTypeConflict is returned when a connection endpoint disagrees with the
	// type of the node already stored under the same id.
	ErrNodeTypeConflict = errors.New("node type conflict")
	// ErrNoSpecies is returned when no species survives to breed.
	ErrNoSpecies = errors.New("no surviving species")
	// ErrSelectionExhausted is returned when weighted selection walks past every member.
	ErrSelectionExhausted = errors.New("selection exhausted without choosing a genome")
	// ErrMateDraw is returned when the weighted draw over mate strategies selects none.
	ErrMateDraw = errors.New("unable to choose mate strategy")
)
