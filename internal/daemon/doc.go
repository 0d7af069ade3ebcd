// Package daemon ties the workflow manager and the drive hotplug monitor
// into a single lifecycle with flock-based locking to prevent multiple
// instances from processing the same queue.
package daemon
