package wal

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/andrewbaptist/wal/device"
	"github.com/andrewbaptist/wal/internal/constants"
)

// Open constructs a device from rawURI and returns a recovered WAL.
//
// Supported schemes:
//
//	mem://<blocks>  in-memory device with the given capacity in blocks
//	file:///path    device over a pre-sized regular file
//
// A URI with no "://" is treated as a bare filesystem path, accepted for
// backwards compatibility alongside file:///path.
//
// WAL_SYNC_DEVICE (any value) forces the synchronous device in place of
// the platform-native asynchronous device for file-backed URIs.
func Open(ctx context.Context, rawURI string, opts *Options) (*WAL, error) {
	dev, capacity, err := openDevice(rawURI)
	if err != nil {
		return nil, err
	}
	return newWAL(dev, capacity, opts)
}

func openDevice(rawURI string) (Device, int, error) {
	if !strings.Contains(rawURI, "://") {
		return openFileDevice(rawURI)
	}

	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, 0, NewError("open", KindInvalidArgument, fmt.Sprintf("invalid URI: %v", err))
	}

	switch u.Scheme {
	case "mem":
		blocks, convErr := strconv.Atoi(u.Host)
		if convErr != nil || blocks <= 0 {
			return nil, 0, NewError("open", KindInvalidArgument, "mem:// URI requires a positive integer block count")
		}
		return device.NewMem(blocks), blocks, nil
	case "file":
		return openFileDevice(u.Path)
	default:
		return nil, 0, NewError("open", KindInvalidArgument, fmt.Sprintf("unsupported URI scheme %q", u.Scheme))
	}
}

func openFileDevice(path string) (Device, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, WrapError("open", err)
	}
	if info.Size() <= 0 || info.Size()%BlockSize != 0 {
		return nil, 0, NewError("open", KindInvalidArgument, "file size must be a positive multiple of the block size")
	}
	capacity := int(info.Size() / BlockSize)

	if _, forceSync := os.LookupEnv(constants.EnvSyncDevice); forceSync {
		f, err := os.OpenFile(path, os.O_RDWR, 0o644)
		if err != nil {
			return nil, 0, WrapError("open", err)
		}
		return device.NewSync(f, capacity, nil), capacity, nil
	}

	return openNativeDevice(path, capacity)
}
