// Package exclude maintains the repository-local exclusion list kept at
// .git/info/exclude.
//
// Store reads, appends to, and truncates the exclusion file, creating it on
// first use. CommandBuilder assembles the Cobra command that dispatches the
// list, add, and clear modes against a Store.
package exclude
