// Package organizer plans canonical library paths for classified media and
// copies files into place with chunked, atomic writes.
package organizer
