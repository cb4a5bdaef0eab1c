// Package download implements the download command, which materializes repository trees locally through
// the Git Data API.
package download
