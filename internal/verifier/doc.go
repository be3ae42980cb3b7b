// Package verifier drives an external proof tool over an ordered list of
// scripts and classifies each run as passed or failed.
//
// A script passes only when the tool exits with status 0 and its standard
// output contains one of the configured success markers. Scripts run one at a
// time, each exactly once; a missing file or a tool that cannot be started
// fails that script and the run moves on. Only an unusable work directory
// aborts the run before any script is attempted.
package verifier
