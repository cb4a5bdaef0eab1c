// Package pathutils resolves local directories given on the command line or in configuration.
package pathutils
