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
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-ncom/pkg/layers"
	"jinr.ru/greenlab/go-ncom/pkg/log"
)

// Decoder turns the byte stream of one device into navigation, status and
// connection state. It is not safe for concurrent use.
type Decoder struct {
	sync     FrameSync
	registry *Registry
	state    *State
	clock    ClockOffset

	nav    Fields
	status Fields
	stats  ConnectionStats

	prevSeconds float64
}

func NewDecoder(address string) *Decoder {
	return &Decoder{
		registry: registry,
		state:    NewState(),
		nav:      Fields{},
		status:   Fields{},
		stats: ConnectionStats{
			Address:            address,
			DecodeStatusErrors: map[uint8]uint64{},
		},
	}
}

// Write appends received bytes to the decode buffer
func (d *Decoder) Write(data []byte) {
	d.sync.Write(data)
	d.stats.BytesReceived += uint64(len(data))
	d.stats.Datagrams++
}

// Repeated counts a datagram dropped as a duplicate
func (d *Decoder) Repeated() {
	d.stats.RepeatedDatagrams++
}

// Decode decodes at most one frame from the buffer and reports whether it did.
// local is the time the bytes were received, zero if unknown.
func (d *Decoder) Decode(local time.Time) bool {
	frame, ok := d.sync.Next()
	if !ok {
		d.syncStats()
		return false
	}

	l := &layers.NcomLayer{}
	if err := l.DecodeFromBytes(frame, gopacket.NilDecodeFeedback); err != nil {
		log.Debug("Error while decoding ncom frame: %s", err)
		d.syncStats()
		return true
	}

	d.nav = Fields{"NavStatus": Uint(uint64(l.NavStatus))}
	if nothingValid(l.NavStatus) {
		d.status = Fields{}
		d.syncStats()
		return true
	}
	if batchAValid(l.NavStatus) || batchSValid(l.NavStatus) {
		d.status.Set("NavStatus", Uint(uint64(l.NavStatus)))
	}

	if batchAValid(l.NavStatus) {
		decodeBatchA(l, d.nav)
		seconds, _ := d.nav.Float("GpsSeconds")
		device, ok := d.updateTime(seconds)
		if ok && !local.IsZero() {
			d.clock.Update(device, local)
		} else {
			d.clock.Reset()
		}
	}

	if batchBValid(l.NavStatus) {
		decodeBatchB(l, d.nav)
	}

	if batchSValid(l.NavStatus) {
		ctx := &channelContext{status: d.status, nav: d.nav, state: d.state}
		if err := d.registry.Decode(l.Channel, l.Status[:], ctx); err != nil {
			d.stats.DecodeStatusErrors[l.Channel]++
			log.Debug("Error while decoding status channel %d from %s: %s", l.Channel, d.stats.Address, err)
		}
	}

	d.syncStats()
	return true
}

// DecodeAll decodes every complete frame in the buffer and returns their number
func (d *Decoder) DecodeAll(local time.Time) int {
	n := 0
	for d.Decode(local) {
		n++
	}
	return n
}

func (d *Decoder) syncStats() {
	d.stats.NumChars = d.sync.NumChars
	d.stats.SkippedChars = d.sync.SkippedChars
	d.stats.NumPackets = d.sync.NumPackets
	d.stats.UnprocessedBytes = d.sync.Buffered()
	d.stats.TimeOffset = d.clock.Value()
}

// Nav returns a copy of the navigation fields of the last frame
func (d *Decoder) Nav() Fields {
	return d.nav.Clone()
}

// Status returns a copy of the status fields
func (d *Decoder) Status() Fields {
	return d.status.Clone()
}

func (d *Decoder) Connection() ConnectionStats {
	return d.stats.Clone()
}

// DeviceTime converts local time to device GPS time once the clock offset is known
func (d *Decoder) DeviceTime(local time.Time) (time.Time, bool) {
	return d.clock.DeviceTime(local)
}
