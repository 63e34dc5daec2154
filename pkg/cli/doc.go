// Package cli implements the fautty command line: the serve command that runs
// the proxy, and client commands that inspect and drive a running proxy
// through its admin API.
package cli
