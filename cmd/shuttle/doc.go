// Command shuttle is the CLI and daemon entry point for the media file
// organizer.
package main
