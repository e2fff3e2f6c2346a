// Package prompt collects yes/no confirmations from the user before
// destructive or bulk changes are applied.
package prompt
