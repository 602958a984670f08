// Package constants holds tunables shared across the wal module and its
// device implementations.
package constants

const (
	// BlockSize is the fixed unit of device alignment and I/O granularity.
	BlockSize = 4096

	// HeaderSize is the encoded size in bytes of an EntryHeader.
	HeaderSize = 12
)

// Default device tunables.
const (
	// DefaultSubmissionQueueDepth bounds the in-flight write count for the
	// completion-ring and event-queue devices.
	DefaultSubmissionQueueDepth = 256

	// DefaultThreadOffloadChannelDepth bounds the submission channel used by
	// the thread-offload device.
	DefaultThreadOffloadChannelDepth = 1024

	// DefaultMaxEventsPerDrain bounds how many completion events a single
	// DrainCompletions call harvests from the event-queue device's kernel
	// AIO queue. The completion-ring device drains every available
	// completion without this bound.
	DefaultMaxEventsPerDrain = 256
)

// EnvSyncDevice is the environment variable that, when set to any value,
// forces wal.Open to construct a synchronous device instead of the
// platform-native asynchronous one.
const EnvSyncDevice = "WAL_SYNC_DEVICE"
