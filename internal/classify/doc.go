// Package classify determines whether a media file is a movie or a TV
// episode and extracts title, series, year, season, and episode details
// from its filename.
package classify
