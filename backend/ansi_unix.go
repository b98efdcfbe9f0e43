//go:build unix

package backend

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// unixTTY drives /dev/tty directly, so the engine works with redirected stdio
type unixTTY struct {
	file    *os.File
	fd      int
	oldTerm *term.State

	// Self-pipe: writing wakeW interrupts a poll in Read
	wakeR int
	wakeW int

	watched <-chan struct{}

	resizeStopCh chan struct{}
	resizeDoneCh chan struct{}

	buf []byte
}

func newTTY() tty {
	return &unixTTY{fd: -1, wakeR: -1, wakeW: -1, buf: make([]byte, 256)}
}

func (t *unixTTY) Init() error {
	if termEnv := os.Getenv("TERM"); termEnv == "" || termEnv == "dumb" {
		return errors.Wrapf(errUnsupported, "TERM=%q", termEnv)
	}

	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return errors.Wrap(errOpenTty, err.Error())
	}
	fd := int(f.Fd())

	old, err := term.MakeRaw(fd)
	if err != nil {
		f.Close()
		return errors.Wrap(errOpenTty, err.Error())
	}

	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		term.Restore(fd, old)
		f.Close()
		return errors.Wrap(errPipeTrap, err.Error())
	}

	t.file = f
	t.fd = fd
	t.oldTerm = old
	t.wakeR, t.wakeW = p[0], p[1]
	return nil
}

func (t *unixTTY) Fini() {
	if t.resizeStopCh != nil {
		close(t.resizeStopCh)
		<-t.resizeDoneCh
		t.resizeStopCh = nil
	}
	if t.wakeW >= 0 {
		unix.Close(t.wakeW)
		unix.Close(t.wakeR)
		t.wakeR, t.wakeW = -1, -1
	}
	if t.oldTerm != nil {
		term.Restore(t.fd, t.oldTerm)
		t.oldTerm = nil
	}
	if t.file != nil {
		t.file.Close()
		t.file = nil
		t.fd = -1
	}
}

func (t *unixTTY) Size() (int, int) {
	ws, err := unix.IoctlGetWinsize(t.fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 80, 24 // Fallback
	}
	return int(ws.Col), int(ws.Row)
}

func (t *unixTTY) Write(p []byte) error {
	if t.file == nil {
		return errors.New("tty closed")
	}
	_, err := t.file.Write(p)
	return err
}

// Read polls the tty and the wake pipe; a quiet period of escapeTimeout returns no data
func (t *unixTTY) Read(stopCh <-chan struct{}) ([]byte, error) {
	if t.watched != stopCh {
		t.watched = stopCh
		go wakeOnStop(stopCh, t.wakeW)
	}

	for {
		select {
		case <-stopCh:
			return nil, nil
		default:
		}

		fds := []unix.PollFd{
			{Fd: int32(t.fd), Events: unix.POLLIN},
			{Fd: int32(t.wakeR), Events: unix.POLLIN},
		}
		n, err := unix.Poll(fds, int(escapeTimeout.Milliseconds()))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		if fds[1].Revents&unix.POLLIN != 0 {
			return nil, nil
		}
		if fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 && fds[0].Revents&unix.POLLIN == 0 {
			return nil, errors.New("tty hung up")
		}

		rn, err := unix.Read(t.fd, t.buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return nil, err
		}
		if rn == 0 {
			return nil, errors.New("tty closed")
		}

		ret := make([]byte, rn)
		copy(ret, t.buf[:rn])
		return ret, nil
	}
}

// wakeOnStop interrupts a blocked poll once the reader is told to stop
func wakeOnStop(stopCh <-chan struct{}, wakeW int) {
	<-stopCh
	unix.Write(wakeW, []byte{0})
}

func (t *unixTTY) SetResizeHandler(handler func(width, height int)) {
	t.resizeStopCh = make(chan struct{})
	t.resizeDoneCh = make(chan struct{})

	stopCh, doneCh := t.resizeStopCh, t.resizeDoneCh
	go func() {
		defer close(doneCh)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGWINCH)
		defer signal.Stop(sigCh)

		for {
			select {
			case <-stopCh:
				return
			case <-sigCh:
				w, h := t.Size()
				handler(w, h)
			}
		}
	}()
}
