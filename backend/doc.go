// Package backend implements terminal.Engine.
//
// Two engines are provided:
//   - Tcell drives a tcell.Screen (terminfo-aware, portable)
//   - ANSI talks to /dev/tty directly: raw mode via x/term, poll/ioctl via x/sys,
//     ANSI byte-stream input parsing and double-buffered diffing output
//
// Both speak the numeric engine contract only; typed keys and events live in package terminal.
package backend
