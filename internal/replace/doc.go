// Package replace implements the find-and-replace maintenance command.
//
// The service locates every requested path in one tree listing, rewrites the files whose content changes
// and commits them on top of the current tip without touching the rest of the tree.
package replace
