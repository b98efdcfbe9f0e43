//go:build !unix

package backend

import "github.com/pkg/errors"

// stubTTY reports the terminal as unsupported on platforms without a unix tty
type stubTTY struct{}

func newTTY() tty { return stubTTY{} }

func (stubTTY) Init() error {
	return errors.Wrap(errUnsupported, "no unix tty on this platform")
}

func (stubTTY) Fini()                                    {}
func (stubTTY) Size() (int, int)                         { return 0, 0 }
func (stubTTY) Write([]byte) error                       { return errUnsupported }
func (stubTTY) Read(<-chan struct{}) ([]byte, error)     { return nil, errUnsupported }
func (stubTTY) SetResizeHandler(func(width, height int)) {}
