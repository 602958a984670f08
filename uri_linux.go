//go:build linux

package wal

import (
	"golang.org/x/sys/unix"

	"github.com/andrewbaptist/wal/device"
)

// openNativeDevice opens the platform-preferred asynchronous device: the
// completion-ring, used by default when WAL_SYNC_DEVICE is unset.
func openNativeDevice(path string, capacity int) (Device, int, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, 0, WrapError("open", err)
	}
	dev, err := device.NewCompletionRing(fd, capacity, nil)
	if err != nil {
		_ = unix.Close(fd)
		return nil, 0, err
	}
	return dev, capacity, nil
}
