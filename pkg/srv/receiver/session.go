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

package receiver

import (
	"sync"
	"time"

	"jinr.ru/greenlab/go-ncom/pkg/ncom"
)

// Session is the decode state of one device. The receive loop is its only
// writer, everybody else reads it through Snapshot.
type Session struct {
	mu sync.RWMutex

	address   string
	port      int
	firstSeen time.Time
	lastSeen  time.Time

	decoder *ncom.Decoder
	dedup   *ncom.Dedup
}

// Snapshot is a deep copy of a session taken under its read lock
type Snapshot struct {
	Address    string               `json:"address"`
	Port       int                  `json:"port"`
	FirstSeen  time.Time            `json:"firstSeen"`
	LastSeen   time.Time            `json:"lastSeen"`
	Nav        ncom.Fields          `json:"nav"`
	Status     ncom.Fields          `json:"status"`
	Connection ncom.ConnectionStats `json:"connection"`
}

// DeviceSummary is the short form of a snapshot used in device lists
type DeviceSummary struct {
	Address    string    `json:"address"`
	Port       int       `json:"port"`
	LastSeen   time.Time `json:"lastSeen"`
	NumPackets uint64    `json:"numPackets"`
	DevId      string    `json:"devId,omitempty"`
}

func NewSession(address string, port int, dedupCapacity int, now time.Time) *Session {
	return &Session{
		address:   address,
		port:      port,
		firstSeen: now,
		lastSeen:  now,
		decoder:   ncom.NewDecoder(address),
		dedup:     ncom.NewDedup(dedupCapacity),
	}
}

// Handle feeds one datagram received at local and returns the number of
// frames decoded from it. Repeated datagrams are counted and dropped.
func (s *Session) Handle(data []byte, port int, local time.Time) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = local
	s.port = port
	if s.dedup.Seen(data) {
		s.decoder.Repeated()
		return 0, true
	}
	s.decoder.Write(data)
	return s.decoder.DecodeAll(local), false
}

func (s *Session) Address() string {
	return s.address
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Address:    s.address,
		Port:       s.port,
		FirstSeen:  s.firstSeen,
		LastSeen:   s.lastSeen,
		Nav:        s.decoder.Nav(),
		Status:     s.decoder.Status(),
		Connection: s.decoder.Connection(),
	}
}

func (s *Session) Nav() ncom.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decoder.Nav()
}

func (s *Session) Status() ncom.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decoder.Status()
}

func (s *Session) Connection() ncom.ConnectionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decoder.Connection()
}

// DeviceTime converts local to device GPS time once the clock offset is known
func (s *Session) DeviceTime(local time.Time) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decoder.DeviceTime(local)
}

func (snap Snapshot) Summary() DeviceSummary {
	devId, _ := snap.Status.Get("DevId").Text()
	return DeviceSummary{
		Address:    snap.Address,
		Port:       snap.Port,
		LastSeen:   snap.LastSeen,
		NumPackets: snap.Connection.NumPackets,
		DevId:      devId,
	}
}
