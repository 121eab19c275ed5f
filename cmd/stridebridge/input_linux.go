//go:build linux

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// readInputEventsEpoll reads from multiple input devices using epoll.
//
// One goroutine multiplexes all devices; the kernel wakes it only when events
// are available. Device error or hangup is treated as fatal for the reader.
func readInputEventsEpoll(files []*os.File, events chan<- inputEvent, readErr chan<- error) {
	if len(files) == 0 {
		readErr <- fmt.Errorf("no input devices provided")
		return
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		readErr <- fmt.Errorf("epoll_create1: %w", err)
		return
	}
	defer unix.Close(epfd)

	// Map file descriptors to files for later identification
	fdToFile := make(map[int]*os.File)

	for _, f := range files {
		fd := int(f.Fd())
		fdToFile[fd] = f

		event := unix.EpollEvent{
			Events: unix.EPOLLIN,
			Fd:     int32(fd),
		}

		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
			readErr <- fmt.Errorf("epoll_ctl_add fd=%d: %w", fd, err)
			return
		}
	}

	// Reusable buffers
	const maxEvents = 32
	epollEvents := make([]unix.EpollEvent, maxEvents)
	evSize := binary.Size(inputEvent{})
	buf := make([]byte, evSize)
	reader := bytes.NewReader(buf)

	for {
		n, err := unix.EpollWait(epfd, epollEvents, -1)
		if err != nil {
			// Handle interrupted system call (e.g., SIGINT)
			if err == syscall.EINTR {
				continue
			}
			readErr <- fmt.Errorf("epoll_wait: %w", err)
			return
		}

		for i := 0; i < n; i++ {
			fd := int(epollEvents[i].Fd)
			f := fdToFile[fd]

			if epollEvents[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				readErr <- fmt.Errorf("device error/hangup: %s (fd=%d)", f.Name(), fd)
				return
			}

			if _, err := f.Read(buf); err != nil {
				readErr <- fmt.Errorf("read from %s: %w", f.Name(), err)
				return
			}

			reader.Reset(buf)
			var ev inputEvent
			if err := binary.Read(reader, binary.LittleEndian, &ev); err != nil {
				// Skip malformed events
				continue
			}

			events <- ev
		}
	}
}

// runInputReader opens the configured input devices and forwards translated
// daemon events until ctx is canceled or a device fails.
//
// If the reader exits while a nudge key might still be down, a NudgeRelease
// is injected so a dead device can't leave the offset stuck.
func runInputReader(ctx context.Context, devices []string, events chan<- Event, logger *slog.Logger) error {
	files := make([]*os.File, 0, len(devices))
	for _, dev := range devices {
		f, err := os.Open(dev)
		if err != nil {
			for _, open := range files {
				open.Close()
			}
			return fmt.Errorf("open input device %s: %w (run as root or add user to 'input' group)", dev, err)
		}
		files = append(files, f)
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	raw := make(chan inputEvent, 64)
	readErr := make(chan error, 1)
	go readInputEventsEpoll(files, raw, readErr)

	logger.Info("input reader started", "devices", devices)

	releaseOnExit := func() {
		select {
		case events <- NudgeRelease{}:
		default:
			logger.Warn("could not inject nudge release on input reader exit")
		}
	}

	for {
		select {
		case <-ctx.Done():
			releaseOnExit()
			return nil

		case err := <-readErr:
			releaseOnExit()
			return fmt.Errorf("input reader stopped: %w", err)

		case rawEv := <-raw:
			ev, ok := translateKeyEvent(rawEv)
			if !ok {
				continue
			}
			select {
			case events <- ev:
			default:
				logger.Warn("event queue full, dropping input event")
			}
		}
	}
}
