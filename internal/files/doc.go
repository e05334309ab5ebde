// Package files discovers source workbooks on disk. The CLI uses it to pick
// the newest Summary and Secondary files of a directory, and the server
// lists the sources of its data directory.
package files
