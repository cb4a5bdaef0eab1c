// Package filerename implements the rename maintenance command.
//
// A rename commits the file under its new path with the original mode and drops the old path in the same commit.
package filerename
