/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package layers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// NcomLayerNum identifies the layer
	NcomLayerNum = 2001
	// NcomSync is the first byte of each NCOM frame
	NcomSync = 0xE7
	// NcomFrameSize is the fixed length of NCOM frame including sync and checksums
	NcomFrameSize = 72
	// NcomStatusSize is the size of the status channel payload (Batch S)
	NcomStatusSize = 8
)

// Byte offsets inside the frame
const (
	NcomOffsetTime      = 1
	NcomOffsetAccel     = 3
	NcomOffsetRate      = 12
	NcomOffsetNavStatus = 21
	NcomOffsetChecksum1 = 22
	NcomOffsetLat       = 23
	NcomOffsetLon       = 31
	NcomOffsetAlt       = 39
	NcomOffsetVel       = 43
	NcomOffsetHeading   = 52
	NcomOffsetPitch     = 55
	NcomOffsetRoll      = 58
	NcomOffsetChecksum2 = 61
	NcomOffsetChannel   = 62
	NcomOffsetStatus    = 63
	NcomOffsetChecksum3 = 71
)

// NcomBatchA holds time, accelerations and angular rates in raw device units
type NcomBatchA struct {
	// Time is milliseconds into the current GPS minute
	Time  uint16
	Accel [3]int32 // 0.1 mm/s^2
	Rate  [3]int32 // 0.01 mrad/s
}

// NcomBatchB holds position, velocity and orientation in raw device units
type NcomBatchB struct {
	Lat     float64  // rad
	Lon     float64  // rad
	Alt     float32  // m
	Vel     [3]int32 // 0.1 mm/s, north east down
	Heading int32    // 1 urad
	Pitch   int32
	Roll    int32
}

type NcomLayer struct {
	layers.BaseLayer
	NcomBatchA
	NavStatus uint8
	Checksum1 uint8
	NcomBatchB
	Checksum2 uint8
	Channel   uint8
	Status    [NcomStatusSize]byte
	Checksum3 uint8
}

var NcomLayerType = gopacket.RegisterLayerType(NcomLayerNum,
	gopacket.LayerTypeMetadata{Name: "NcomLayerType", Decoder: gopacket.DecodeFunc(DecodeNcomLayer)})

// LayerType returns the type of the NCOM layer in the layer catalog
func (n *NcomLayer) LayerType() gopacket.LayerType {
	return NcomLayerType
}

func (n *NcomLayer) CanDecode() gopacket.LayerClass {
	return NcomLayerType
}

func (n *NcomLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

// Serialize writes the frame to a buffer of at least NcomFrameSize bytes.
// Checksum fields are written as they are, use SetChecksums to compute them.
func (n *NcomLayer) Serialize(buf []byte) {
	buf[0] = NcomSync
	binary.LittleEndian.PutUint16(buf[NcomOffsetTime:], n.Time)
	for i := 0; i < 3; i++ {
		PutInt24(buf[NcomOffsetAccel+3*i:], n.Accel[i])
		PutInt24(buf[NcomOffsetRate+3*i:], n.Rate[i])
		PutInt24(buf[NcomOffsetVel+3*i:], n.Vel[i])
	}
	buf[NcomOffsetNavStatus] = n.NavStatus
	buf[NcomOffsetChecksum1] = n.Checksum1
	binary.LittleEndian.PutUint64(buf[NcomOffsetLat:], math.Float64bits(n.Lat))
	binary.LittleEndian.PutUint64(buf[NcomOffsetLon:], math.Float64bits(n.Lon))
	binary.LittleEndian.PutUint32(buf[NcomOffsetAlt:], math.Float32bits(n.Alt))
	PutInt24(buf[NcomOffsetHeading:], n.Heading)
	PutInt24(buf[NcomOffsetPitch:], n.Pitch)
	PutInt24(buf[NcomOffsetRoll:], n.Roll)
	buf[NcomOffsetChecksum2] = n.Checksum2
	buf[NcomOffsetChannel] = n.Channel
	copy(buf[NcomOffsetStatus:NcomOffsetChecksum3], n.Status[:])
	buf[NcomOffsetChecksum3] = n.Checksum3
}

// SetChecksums computes all three checksums of a serialized frame and stores them
// both in the buffer and in the layer
func (n *NcomLayer) SetChecksums(buf []byte) {
	n.Checksum1 = Checksum(buf, NcomOffsetChecksum1)
	buf[NcomOffsetChecksum1] = n.Checksum1
	n.Checksum2 = Checksum(buf, NcomOffsetChecksum2)
	buf[NcomOffsetChecksum2] = n.Checksum2
	n.Checksum3 = Checksum(buf, NcomOffsetChecksum3)
	buf[NcomOffsetChecksum3] = n.Checksum3
}

// SerializeTo serializes the layer into bytes and writes the bytes to the SerializeBuffer.
// With opts.ComputeChecksums the three checksums are recalculated, otherwise
// the values stored in the layer are used.
func (n *NcomLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(NcomFrameSize)
	if err != nil {
		return err
	}
	n.Serialize(bytes)
	if opts.ComputeChecksums {
		n.SetChecksums(bytes)
	}
	return nil
}

// DecodeFromBytes decodes one frame into raw batches. It does not verify checksums,
// this is the job of the frame synchronizer which has to scan the stream anyway.
func (n *NcomLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < NcomFrameSize {
		df.SetTruncated()
		return errors.New("NCOM frame too short")
	}
	if data[0] != NcomSync {
		return errors.New(fmt.Sprintf("Wrong NCOM sync. Must be 0x%02x", NcomSync))
	}

	n.BaseLayer = layers.BaseLayer{
		Contents: data[:NcomFrameSize],
		Payload:  data[NcomFrameSize:],
	}

	n.Time = binary.LittleEndian.Uint16(data[NcomOffsetTime:])
	for i := 0; i < 3; i++ {
		n.Accel[i] = Int24(data[NcomOffsetAccel+3*i:])
		n.Rate[i] = Int24(data[NcomOffsetRate+3*i:])
		n.Vel[i] = Int24(data[NcomOffsetVel+3*i:])
	}
	n.NavStatus = data[NcomOffsetNavStatus]
	n.Checksum1 = data[NcomOffsetChecksum1]
	n.Lat = math.Float64frombits(binary.LittleEndian.Uint64(data[NcomOffsetLat:]))
	n.Lon = math.Float64frombits(binary.LittleEndian.Uint64(data[NcomOffsetLon:]))
	n.Alt = math.Float32frombits(binary.LittleEndian.Uint32(data[NcomOffsetAlt:]))
	n.Heading = Int24(data[NcomOffsetHeading:])
	n.Pitch = Int24(data[NcomOffsetPitch:])
	n.Roll = Int24(data[NcomOffsetRoll:])
	n.Checksum2 = data[NcomOffsetChecksum2]
	n.Channel = data[NcomOffsetChannel]
	copy(n.Status[:], data[NcomOffsetStatus:NcomOffsetChecksum3])
	n.Checksum3 = data[NcomOffsetChecksum3]
	return nil
}

func DecodeNcomLayer(data []byte, p gopacket.PacketBuilder) error {
	n := &NcomLayer{}
	err := n.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(n)
	return p.NextDecoder(n.NextLayerType())
}

// Checksum is the modulo 256 sum of frame bytes from 1 up to but not including end
func Checksum(frame []byte, end int) uint8 {
	var sum uint8
	for _, b := range frame[1:end] {
		sum += b
	}
	return sum
}

// ValidFrame reports whether at least one of the three checksums of the frame matches.
// A single match is enough, so a frame with one coincidental match is accepted too.
func ValidFrame(frame []byte) bool {
	if len(frame) < NcomFrameSize {
		return false
	}
	return frame[NcomOffsetChecksum1] == Checksum(frame, NcomOffsetChecksum1) ||
		frame[NcomOffsetChecksum2] == Checksum(frame, NcomOffsetChecksum2) ||
		frame[NcomOffsetChecksum3] == Checksum(frame, NcomOffsetChecksum3)
}

// Int24 decodes a little endian signed 24 bit integer
func Int24(b []byte) int32 {
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	return v << 8 >> 8
}

// PutInt24 encodes the low 24 bits of v little endian
func PutInt24(b []byte, v int32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
