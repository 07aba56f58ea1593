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
	"net"
	"path/filepath"
	"testing"
	"time"
)

func TestCaptureReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.pcap")
	capture, err := NewCapture(path, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 3000})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}
	live := NewReceiver(testConfig())
	live.SetCapture(capture)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	frameA := devIdFrame(t, "A")
	live.HandlePacket(packetFrom(frameA, "10.0.0.1", 3000, start))
	live.HandlePacket(packetFrom(frameA, "10.0.0.1", 3000, start.Add(time.Millisecond)))
	live.HandlePacket(packetFrom(devIdFrame(t, "B"), "10.0.0.2", 3001, start.Add(2*time.Millisecond)))
	if err := capture.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	replayed := NewReceiver(testConfig())
	n, err := replayed.Replay(context.Background(), path)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	// the repeated datagram is not captured
	if n != 2 {
		t.Fatalf("replayed=%d want 2", n)
	}
	devices := replayed.Devices()
	if len(devices) != 2 || devices[0] != "10.0.0.1" || devices[1] != "10.0.0.2" {
		t.Fatalf("devices=%v", devices)
	}
	b, _ := replayed.Session("10.0.0.2")
	snap := b.Snapshot()
	if id, _ := snap.Status.Get("DevId").Text(); id != "B" || snap.Port != 3001 {
		t.Fatalf("10.0.0.2 DevId=%q port=%d want B 3001", id, snap.Port)
	}
	if !snap.LastSeen.Equal(start.Add(2 * time.Millisecond)) {
		t.Fatalf("last seen=%v want capture timestamp", snap.LastSeen)
	}
}

func TestReplayMissingFile(t *testing.T) {
	r := NewReceiver(testConfig())
	if _, err := r.Replay(context.Background(), filepath.Join(t.TempDir(), "absent.pcap")); err == nil {
		t.Fatalf("Replay of a missing file returned nil")
	}
}
