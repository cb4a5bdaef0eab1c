// Package staging implements the local filesystem collaborator: folder creation, file reads and writes,
// doublestar globbing below a root, and root-relative paths. It is backed by afero so callers and tests
// can swap the operating system filesystem for an in-memory one.
package staging
