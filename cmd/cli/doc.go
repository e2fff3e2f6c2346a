// Package cli constructs the git-local-ignore command-line interface. It wires
// the exclude command as the Cobra root, loads layered configuration through
// Viper, and builds the zap logger shared by every component.
package cli
