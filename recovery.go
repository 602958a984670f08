package wal

import (
	"time"

	"github.com/andrewbaptist/wal/internal/walcore"
)

// recoverHeadTail reconstructs head then tail by scanning dev, the two-
// phase algorithm run once at Open.
func recoverHeadTail(dev Device, capacity int, logger Logger, observer Observer) (head, tail Position, err error) {
	start := time.Now()
	blocksScanned := 0
	head = Position{Rollover: 0, Offset: 0}

	for {
		headerBytes, rerr := dev.Read(head.ByteOffset(BlockSize), HeaderSize)
		if rerr != nil {
			logger.Debugf("recovery: phase A stopped at %s: read failed: %v", head, rerr)
			break
		}
		blocksScanned++

		header, ok := walcore.DecodeHeader(headerBytes)
		if !ok {
			logger.Warnf("recovery: phase A stopped at %s: header failed to decode", head)
			break
		}
		if header.Len == 0 {
			logger.Debugf("recovery: phase A stopped at %s: uninitialized region", head)
			break
		}

		entryBytes, rerr := dev.Read(head.ByteOffset(BlockSize), HeaderSize+int(header.Len))
		if rerr != nil {
			logger.Debugf("recovery: phase A stopped at %s: short read: %v", head, rerr)
			break
		}
		if !walcore.VerifyCRC(header, entryBytes) {
			logger.Warnf("recovery: phase A stopped at %s: crc mismatch", head)
			break
		}
		if header.Rollover < head.Rollover {
			logger.Debugf("recovery: phase A stopped at %s: entry rollover %d older than %d", head, header.Rollover, head.Rollover)
			break
		}

		nextOffset := head.Offset + walcore.NumBlocks(header)
		if int(nextOffset) >= capacity {
			logger.Debugf("recovery: phase A stopped at %s: physical end reached", head)
			break
		}

		head.Offset = nextOffset
		head.Rollover = header.Rollover
	}
	logger.Infof("recovery: phase A located head at %s", head)

	if head.Rollover == 0 {
		logger.Infof("recovery: fresh device, tail = (0,0)")
		observer.ObserveRecoveryScan(blocksScanned, uint64(time.Since(start)))
		return head, Position{Rollover: 0, Offset: 0}, nil
	}

	tail = Position{Rollover: head.Rollover - 1, Offset: head.Offset}
	for offset := head.Offset; int(offset) < capacity; offset++ {
		candidate := Position{Rollover: tail.Rollover, Offset: offset}

		headerBytes, rerr := dev.Read(candidate.ByteOffset(BlockSize), HeaderSize)
		if rerr != nil {
			continue
		}
		blocksScanned++

		header, ok := walcore.DecodeHeader(headerBytes)
		if !ok {
			continue
		}
		if header.Rollover != tail.Rollover {
			continue
		}

		entryBytes, rerr := dev.Read(candidate.ByteOffset(BlockSize), HeaderSize+int(header.Len))
		if rerr != nil {
			continue
		}
		if !walcore.VerifyCRC(header, entryBytes) {
			continue
		}

		tail.Offset = offset
		logger.Infof("recovery: phase B located tail at %s", tail)
		break
	}

	observer.ObserveRecoveryScan(blocksScanned, uint64(time.Since(start)))
	return head, tail, nil
}
