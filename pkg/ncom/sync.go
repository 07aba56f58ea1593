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

package ncom

import (
	"bytes"

	"jinr.ru/greenlab/go-ncom/pkg/layers"
)

// FrameSync accumulates stream bytes and cuts valid frames out of them
type FrameSync struct {
	buf []byte

	// NumChars counts bytes consumed by frames plus skipped bytes
	NumChars     uint64
	SkippedChars uint64
	NumPackets   uint64
}

func (fs *FrameSync) Write(data []byte) {
	fs.buf = append(fs.buf, data...)
}

// Buffered is the number of bytes waiting for the rest of a frame
func (fs *FrameSync) Buffered() int {
	return len(fs.buf)
}

func (fs *FrameSync) skip(n int) {
	fs.buf = fs.buf[n:]
	fs.NumChars += uint64(n)
	fs.SkippedChars += uint64(n)
}

// Next returns the next valid frame or false if more data is needed.
// The frame slice is only valid until the next call to Write.
func (fs *FrameSync) Next() ([]byte, bool) {
	for {
		i := bytes.IndexByte(fs.buf, layers.NcomSync)
		if i < 0 {
			fs.skip(len(fs.buf))
			fs.buf = nil
			return nil, false
		}
		if i > 0 {
			fs.skip(i)
		}
		if len(fs.buf) < layers.NcomFrameSize {
			return nil, false
		}
		if !layers.ValidFrame(fs.buf) {
			fs.skip(1)
			continue
		}
		frame := fs.buf[:layers.NcomFrameSize]
		fs.buf = fs.buf[layers.NcomFrameSize:]
		fs.NumChars += layers.NcomFrameSize
		fs.NumPackets++
		return frame, true
	}
}
