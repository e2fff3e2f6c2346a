// Package gitrepo locates the Git working copy enclosing a directory.
//
// Locator walks from a starting directory towards the filesystem root and
// returns a Repository describing the nearest ancestor that holds a .git
// metadata directory. The walk is read-only and honors optional ceiling
// directories in the same way Git treats GIT_CEILING_DIRECTORIES.
package gitrepo
