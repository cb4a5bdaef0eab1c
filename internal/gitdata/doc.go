// Package gitdata reads and rewrites a remote repository's Git object graph through the hosting service's
// Git Data API, without a local clone.
//
// A Service resolves references to commits, fetches trees shallowly, recursively, or subtree by subtree,
// locates file descriptors by exact path, reads blob content, and synthesizes a new commit from a partial
// local staging directory while leaving untouched parts of the tree intact.
package gitdata
