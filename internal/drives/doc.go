// Package drives discovers mounted removable drives, selects the
// destination root for organized media, and watches for hotplug events.
package drives
