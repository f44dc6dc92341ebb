/*
 * Copyright 2026 AeroLink Systems Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package webrtc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Binary camera frames carry a fixed 16-byte big-endian header ahead of the
// encoded payload: magic (u32), unix timestamp (u32), camera id (u16), frame
// number (u16), payload length (u32).
const (
	frameMagic      = 0x12345678
	frameHeaderSize = 16
)

var (
	ErrFrameTooShort = errors.New("camera frame shorter than header")
	ErrBadFrameMagic = errors.New("camera frame has bad magic")
)

// FrameHeader is the decoded camera frame header.
type FrameHeader struct {
	Timestamp   uint32
	CameraID    uint16
	FrameNumber uint16
	PayloadLen  uint32
}

// ParseFrame validates a raw binary camera frame and splits it into header
// and payload. The payload is a subslice of data, not a copy.
func ParseFrame(data []byte) (FrameHeader, []byte, error) {
	var hdr FrameHeader

	if len(data) < frameHeaderSize {
		return hdr, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(data))
	}

	if magic := binary.BigEndian.Uint32(data[0:4]); magic != frameMagic {
		return hdr, nil, fmt.Errorf("%w: 0x%08x", ErrBadFrameMagic, magic)
	}

	hdr = FrameHeader{
		Timestamp:   binary.BigEndian.Uint32(data[4:8]),
		CameraID:    binary.BigEndian.Uint16(data[8:10]),
		FrameNumber: binary.BigEndian.Uint16(data[10:12]),
		PayloadLen:  binary.BigEndian.Uint32(data[12:16]),
	}

	payload := data[frameHeaderSize:]
	if uint32(len(payload)) < hdr.PayloadLen {
		return hdr, nil, fmt.Errorf("camera frame truncated: header says %d bytes, got %d", hdr.PayloadLen, len(payload))
	}

	return hdr, payload[:hdr.PayloadLen], nil
}

// EncodeFrame prepends the binary header to a payload. The drone side owns
// frame production; the hub uses this in tests and diagnostics.
func EncodeFrame(hdr FrameHeader, payload []byte) []byte {
	buf := make([]byte, frameHeaderSize+len(payload))

	binary.BigEndian.PutUint32(buf[0:4], frameMagic)
	binary.BigEndian.PutUint32(buf[4:8], hdr.Timestamp)
	binary.BigEndian.PutUint16(buf[8:10], hdr.CameraID)
	binary.BigEndian.PutUint16(buf[10:12], hdr.FrameNumber)
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(payload)))
	copy(buf[frameHeaderSize:], payload)

	return buf
}
