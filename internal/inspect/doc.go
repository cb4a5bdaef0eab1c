// Package inspect provides read-only commands that print repository trees and files fetched through the
// Git Data API.
package inspect
