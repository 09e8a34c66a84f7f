// Package tui provides the Terminal User Interface for leakctl.
//
// The interface follows the run as it happens: a spinner while tests are
// executing, a table with one row per finished test, and a summary of the
// owners found leaking once the run is over. Test results arrive as Bubble
// Tea messages sent from the harness listeners; log output arrives through
// the channel returned by logging.InitForTUI.
//
// # Key bindings
//
//   - ↑/k and ↓/j move the table selection
//   - / filters rows by test id, esc clears the filter
//   - c copies the failures of the selected test to the clipboard
//   - y copies the run summary
//   - L toggles the activity log
//   - q or ctrl+c stops the run and quits
package tui
