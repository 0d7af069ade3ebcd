// Package workflow coordinates queue processing: it dequeues items,
// expands directories and archives into further work, and drives media
// files through classification, planning, and copying.
package workflow
