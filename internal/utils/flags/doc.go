// Package flags provides pflag values shared by the command-line interface.
package flags
