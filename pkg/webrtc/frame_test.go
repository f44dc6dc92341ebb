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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameRoundTrip(t *testing.T) {
	payload := []byte("not really jpeg data")
	hdr := FrameHeader{Timestamp: 1730000000, CameraID: 1, FrameNumber: 42}

	frame := EncodeFrame(hdr, payload)
	require.Len(t, frame, frameHeaderSize+len(payload))

	got, gotPayload, err := ParseFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, uint32(1730000000), got.Timestamp)
	assert.Equal(t, uint16(1), got.CameraID)
	assert.Equal(t, uint16(42), got.FrameNumber)
	assert.Equal(t, uint32(len(payload)), got.PayloadLen)
	assert.Equal(t, payload, gotPayload)
}

func TestParseFrameTooShort(t *testing.T) {
	_, _, err := ParseFrame(make([]byte, frameHeaderSize-1))
	require.ErrorIs(t, err, ErrFrameTooShort)

	_, _, err = ParseFrame(nil)
	require.ErrorIs(t, err, ErrFrameTooShort)
}

func TestParseFrameBadMagic(t *testing.T) {
	frame := EncodeFrame(FrameHeader{CameraID: 1}, []byte("x"))
	binary.BigEndian.PutUint32(frame[0:4], 0xdeadbeef)

	_, _, err := ParseFrame(frame)
	require.ErrorIs(t, err, ErrBadFrameMagic)
}

func TestParseFrameTruncatedPayload(t *testing.T) {
	frame := EncodeFrame(FrameHeader{CameraID: 2}, []byte("abcdef"))
	// Claim more payload than is present.
	binary.BigEndian.PutUint32(frame[12:16], 100)

	_, _, err := ParseFrame(frame)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrBadFrameMagic)
}

func TestParseFrameHeaderFieldsBigEndian(t *testing.T) {
	frame := []byte{
		0x12, 0x34, 0x56, 0x78, // magic
		0x00, 0x00, 0x00, 0x0a, // timestamp 10
		0x00, 0x02, // camera 2
		0x01, 0x00, // frame 256
		0x00, 0x00, 0x00, 0x03, // payload length 3
		'a', 'b', 'c',
	}

	hdr, payload, err := ParseFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), hdr.Timestamp)
	assert.Equal(t, uint16(2), hdr.CameraID)
	assert.Equal(t, uint16(256), hdr.FrameNumber)
	assert.Equal(t, []byte("abc"), payload)
}

func TestCameraName(t *testing.T) {
	assert.Equal(t, "front", cameraName(1))
	assert.Equal(t, "bottom", cameraName(2))
	assert.Equal(t, "camera7", cameraName(7))
}
