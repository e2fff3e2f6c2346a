// Package filesystem abstracts the operating system calls used by the
// repository locator and the exclusion store so tests can substitute
// failing or recording implementations.
package filesystem
