// Package lifecycle drives an update run from start to finish.
//
// A run has two phases. Prepare loads the persisted record, fetches the
// installable package set once and settles the package identity, producing an
// immutable RunContext. Run then resolves the latest release and takes one of
// four branches chosen by Decide:
//
//   - resume: the previous install was interrupted; offer to redo it
//   - first_install: nothing has been installed yet; offer a download
//   - up_to_date: the installed version matches the latest release
//   - update_available: show the changelog and offer an update with backup
//
// Cancellation is cooperative. Every blocking call takes the run's context;
// when it is cancelled the controller records the run as interrupted, keeping
// the previously installed version, and returns a cancelled error.
package lifecycle
