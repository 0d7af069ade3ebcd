// Package textutil provides text helpers for filename handling.
//
// The main use case is sanitizing user-derived titles into path segments that
// are safe on every filesystem shuttle may write to, including FAT-formatted
// removable drives.
package textutil
