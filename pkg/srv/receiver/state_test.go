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
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestRegistry(t *testing.T) *DeviceRegistry {
	t.Helper()
	reg, err := NewDeviceRegistry(filepath.Join(t.TempDir(), "db", "devices.db"))
	if err != nil {
		t.Fatalf("NewDeviceRegistry: %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestDeviceDescriptionRoundTrip(t *testing.T) {
	reg := openTestRegistry(t)
	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	dd := &DeviceDescription{
		Address:      "10.0.0.5",
		Port:         3000,
		FirstSeen:    first,
		LastSeen:     first.Add(time.Hour),
		Packets:      42,
		DevId:        "RT3000",
		SerialNumber: 1234,
	}
	if err := reg.SetDeviceDescription(dd); err != nil {
		t.Fatalf("SetDeviceDescription: %v", err)
	}
	got, err := reg.GetDeviceDescription("10.0.0.5")
	if err != nil {
		t.Fatalf("GetDeviceDescription: %v", err)
	}
	if got.DevId != "RT3000" || got.Packets != 42 || got.SerialNumber != 1234 || !got.FirstSeen.Equal(first) {
		t.Fatalf("got %+v want %+v", got, dd)
	}
}

func TestDeviceDescriptionKeepsFirstSeen(t *testing.T) {
	reg := openTestRegistry(t)
	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	reg.SetDeviceDescription(&DeviceDescription{Address: "10.0.0.5", FirstSeen: first, LastSeen: first})
	later := first.Add(24 * time.Hour)
	if err := reg.SetDeviceDescription(&DeviceDescription{Address: "10.0.0.5", FirstSeen: later, LastSeen: later, Packets: 7}); err != nil {
		t.Fatalf("SetDeviceDescription: %v", err)
	}
	got, err := reg.GetDeviceDescription("10.0.0.5")
	if err != nil {
		t.Fatalf("GetDeviceDescription: %v", err)
	}
	if !got.FirstSeen.Equal(first) || !got.LastSeen.Equal(later) || got.Packets != 7 {
		t.Fatalf("first=%v last=%v packets=%d want %v %v 7", got.FirstSeen, got.LastSeen, got.Packets, first, later)
	}
}

func TestGetDeviceDescriptionNotFound(t *testing.T) {
	reg := openTestRegistry(t)
	_, err := reg.GetDeviceDescription("10.9.9.9")
	if _, ok := err.(ErrDeviceNotFound); !ok {
		t.Fatalf("err=%v want ErrDeviceNotFound", err)
	}
}

func TestStoreAndRun(t *testing.T) {
	reg := openTestRegistry(t)
	r := NewReceiver(testConfig())
	now := time.Now()
	r.HandlePacket(packetFrom(devIdFrame(t, "B"), "10.0.0.2", 3000, now))
	r.HandlePacket(packetFrom(devIdFrame(t, "A"), "10.0.0.1", 3000, now))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := reg.Run(ctx, r, time.Hour); err != nil {
		t.Fatalf("Run: %v", err)
	}

	devices, err := reg.GetAllDeviceDescriptions()
	if err != nil {
		t.Fatalf("GetAllDeviceDescriptions: %v", err)
	}
	if len(devices) != 2 || devices[0].Address != "10.0.0.1" || devices[1].Address != "10.0.0.2" {
		t.Fatalf("devices=%v", devices)
	}
	if devices[0].DevId != "A" || devices[0].Packets != 1 {
		t.Fatalf("10.0.0.1 stored as %+v", devices[0])
	}
}

func TestDeviceDescriptionString(t *testing.T) {
	dd := &DeviceDescription{Address: "10.0.0.5", Port: 3000, DevId: "RT3000"}
	s := dd.String()
	if !strings.HasPrefix(s, "---\n") || !strings.Contains(s, "devId: RT3000") {
		t.Fatalf("String()=%q", s)
	}
}
