// Package source flattens a handler's local import graph into one text
// body by inlining every import that names a file present on disk.
package source
