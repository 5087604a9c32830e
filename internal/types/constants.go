// Package types provides type-safe constants for the updraft lifecycle.
//
// This package centralizes the enumerated types shared between the changelog
// parser, the update controller and the CLI output, replacing magic strings
// with typed constants that carry their own validation.
package types

import (
	"fmt"
	"strings"
)

// ChangeKind classifies a single changelog entry.
type ChangeKind string

const (
	// ChangeAdded marks a feature that was added ("+").
	ChangeAdded ChangeKind = "added"
	// ChangeRemoved marks a feature that was removed ("-").
	ChangeRemoved ChangeKind = "removed"
	// ChangeFixed marks a bug fix ("·").
	ChangeFixed ChangeKind = "fixed"
	// ChangeNote marks a free-form note ("|").
	ChangeNote ChangeKind = "note"
)

// AllChangeKinds returns every change kind in rendering order.
func AllChangeKinds() []ChangeKind {
	return []ChangeKind{ChangeAdded, ChangeRemoved, ChangeFixed, ChangeNote}
}

// Validate checks if the ChangeKind is a valid value.
func (k ChangeKind) Validate() error {
	switch k {
	case ChangeAdded, ChangeRemoved, ChangeFixed, ChangeNote:
		return nil
	case "":
		return fmt.Errorf("change kind is required")
	default:
		return fmt.Errorf("invalid change kind '%s' (must be added, removed, fixed, or note)", k)
	}
}

// String returns the string representation of the ChangeKind.
func (k ChangeKind) String() string {
	return string(k)
}

// Rank returns the position of the kind in rendering order, or -1 if unknown.
func (k ChangeKind) Rank() int {
	for i, kind := range AllChangeKinds() {
		if kind == k {
			return i
		}
	}
	return -1
}

// Sentinel returns the marker character that introduces entries of this kind.
func (k ChangeKind) Sentinel() rune {
	switch k {
	case ChangeAdded:
		return '+'
	case ChangeRemoved:
		return '-'
	case ChangeFixed:
		return '·'
	case ChangeNote:
		return '|'
	default:
		return 0
	}
}

// ChangeKindForSentinel maps a marker character to its kind.
func ChangeKindForSentinel(r rune) (ChangeKind, bool) {
	switch r {
	case '+':
		return ChangeAdded, true
	case '-':
		return ChangeRemoved, true
	case '·':
		return ChangeFixed, true
	case '|':
		return ChangeNote, true
	default:
		return "", false
	}
}

// ParseChangeKind parses a string into a ChangeKind.
func ParseChangeKind(s string) (ChangeKind, error) {
	k := ChangeKind(strings.ToLower(s))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Decision is the branch the update controller takes for a run.
type Decision string

const (
	// DecisionResume re-offers an install that was interrupted.
	DecisionResume Decision = "resume"
	// DecisionFirstInstall offers the initial download.
	DecisionFirstInstall Decision = "first_install"
	// DecisionUpToDate means the installed version matches the latest release.
	DecisionUpToDate Decision = "up_to_date"
	// DecisionUpdateAvailable means a different release is available.
	DecisionUpdateAvailable Decision = "update_available"
)

// AllDecisions returns all valid decisions.
func AllDecisions() []Decision {
	return []Decision{DecisionResume, DecisionFirstInstall, DecisionUpToDate, DecisionUpdateAvailable}
}

// Validate checks if the Decision is a valid value.
func (d Decision) Validate() error {
	for _, v := range AllDecisions() {
		if d == v {
			return nil
		}
	}
	if d == "" {
		return fmt.Errorf("decision is required")
	}
	return fmt.Errorf("invalid decision '%s'", d)
}

// String returns the string representation of the Decision.
func (d Decision) String() string {
	return string(d)
}

// RequiresInstall returns true if the decision can lead to a download.
func (d Decision) RequiresInstall() bool {
	return d != DecisionUpToDate
}

// GitBackend selects how release repositories are cloned.
type GitBackend string

const (
	// GitBackendGoGit clones in-process with go-git.
	GitBackendGoGit GitBackend = "go-git"
	// GitBackendCLI shells out to the git binary.
	GitBackendCLI GitBackend = "cli"
)

// Validate checks if the GitBackend is a valid value.
func (b GitBackend) Validate() error {
	switch b {
	case GitBackendGoGit, GitBackendCLI:
		return nil
	case "":
		return fmt.Errorf("git backend is required")
	default:
		return fmt.Errorf("invalid git backend '%s' (must be go-git or cli)", b)
	}
}

// String returns the string representation of the GitBackend.
func (b GitBackend) String() string {
	return string(b)
}

// Outcome is the terminal result of a controller run that did not fail.
type Outcome string

const (
	OutcomeInstalled Outcome = "installed"
	OutcomeUpdated   Outcome = "updated"
	OutcomeResumed   Outcome = "resumed"
	OutcomeUpToDate  Outcome = "up_to_date"
	OutcomeDeclined  Outcome = "declined"
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	return string(o)
}

// Changed reports whether the outcome modified the project tree.
func (o Outcome) Changed() bool {
	switch o {
	case OutcomeInstalled, OutcomeUpdated, OutcomeResumed:
		return true
	default:
		return false
	}
}
