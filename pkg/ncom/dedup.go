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
	"hash/crc32"
)

const DefaultDedupCapacity = 200

// Dedup remembers checksums of the last datagrams to drop repeated deliveries
type Dedup struct {
	ring []uint32
	next int
	seen map[uint32]struct{}
}

func NewDedup(capacity int) *Dedup {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	return &Dedup{
		ring: make([]uint32, 0, capacity),
		seen: make(map[uint32]struct{}, capacity),
	}
}

// Seen reports whether the datagram was already received. A new datagram
// is remembered and evicts the oldest one when the ring is full.
func (d *Dedup) Seen(data []byte) bool {
	sum := crc32.ChecksumIEEE(data)
	if _, ok := d.seen[sum]; ok {
		return true
	}
	if len(d.ring) < cap(d.ring) {
		d.ring = append(d.ring, sum)
	} else {
		delete(d.seen, d.ring[d.next])
		d.ring[d.next] = sum
		d.next = (d.next + 1) % len(d.ring)
	}
	d.seen[sum] = struct{}{}
	return false
}

func (d *Dedup) Len() int {
	return len(d.ring)
}
