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
	"math"
	"testing"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-ncom/pkg/layers"
)

func buildFrame(t *testing.T, l *layers.NcomLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{ComputeChecksums: true}, l); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return append([]byte(nil), buf.Bytes()...)
}

// quietChannel carries a status channel which does not touch time fields
const quietChannel = 21

// statusLayer builds a frame where only Batch S is valid
func statusLayer(channel uint8, payload [8]byte) *layers.NcomLayer {
	return &layers.NcomLayer{NavStatus: 10, Channel: channel, Status: payload}
}

// feed writes one frame and decodes it
func feed(t *testing.T, d *Decoder, l *layers.NcomLayer, local time.Time) {
	t.Helper()
	d.Write(buildFrame(t, l))
	if !d.Decode(local) {
		t.Fatalf("frame not decoded")
	}
}

func feedStatus(t *testing.T, d *Decoder, channel uint8, payload [8]byte) {
	t.Helper()
	feed(t, d, statusLayer(channel, payload), time.Time{})
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func wantFloat(t *testing.T, f Fields, name string, want float64) {
	t.Helper()
	got, ok := f.Get(name).Float()
	if !ok {
		t.Fatalf("%s is not valid: %v", name, f.Get(name))
	}
	if !near(got, want, 1e-9*math.Max(1, math.Abs(want))) {
		t.Fatalf("%s=%v want %v", name, got, want)
	}
}

func wantUint(t *testing.T, f Fields, name string, want uint64) {
	t.Helper()
	got, ok := f.Get(name).Uint()
	if !ok || got != want {
		t.Fatalf("%s=%v want %v", name, f.Get(name), want)
	}
}

func wantInvalid(t *testing.T, f Fields, name string) {
	t.Helper()
	v, ok := f[name]
	if !ok {
		t.Fatalf("%s is missing", name)
	}
	if v.Valid() {
		t.Fatalf("%s=%v want invalid", name, v)
	}
}

func le16(v uint16) (byte, byte) {
	return byte(v), byte(v >> 8)
}
