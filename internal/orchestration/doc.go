// Package orchestration runs integrations on behalf of the application: a
// single run with live progress, or a sequential sweep over several thread
// counts whose results are checked for consistency. It decouples the numeric
// work from presentation via the ProgressReporter and ResultPresenter
// interfaces.
package orchestration
