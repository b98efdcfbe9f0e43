//go:build !linux

package backend

func resetTerminalMode() {}
