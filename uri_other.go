//go:build !linux

package wal

import (
	"os"

	"github.com/andrewbaptist/wal/device"
)

// openNativeDevice falls back to the synchronous device outside linux,
// where neither the completion-ring nor the event-queue AIO variant is
// available.
func openNativeDevice(path string, capacity int) (Device, int, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, 0, WrapError("open", err)
	}
	return device.NewSync(f, capacity, nil), capacity, nil
}
