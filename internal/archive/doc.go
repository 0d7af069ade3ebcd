// Package archive expands zip files into a scratch directory so their
// contents can run through the normal organizing pipeline.
package archive
