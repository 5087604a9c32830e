// Package state persists the local install record that drives the update lifecycle.
package state

// State is the persisted install record. It is always written wholesale.
type State struct {
	PackageName string `json:"packageName,omitempty" yaml:"packageName,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Initialized bool   `json:"initialized" yaml:"initialized"`
	Interrupted bool   `json:"interrupted" yaml:"interrupted"`
}

// Default returns the record used when nothing has been persisted yet.
func Default() State {
	return State{Initialized: false, Interrupted: false}
}

// Store defines the interface for reading and writing the install record.
type Store interface {
	Load() (State, error)
	Save(State) error
}
