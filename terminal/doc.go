// Package terminal provides a typed session layer over a termbox-style terminal engine.
//
// Features:
//   - Exclusive raw-mode session with exactly-once engine shutdown (Term, Run)
//   - Closed key model decoded from the engine's numeric key codes (Decode)
//   - Closed event model translated from raw engine records (Translate)
//   - 4-bit indexed colors and Bold/Underline/Reverse faces packed into the engine's fg word
//   - Typed init failure taxonomy (Failure)
//
// The package never touches the tty itself. All device work goes through the Engine
// interface; see package backend for the tcell and direct ANSI implementations.
//
// A Term is not safe for concurrent use. It represents ownership of the one physical
// terminal and should be held by a single goroutine.
package terminal
