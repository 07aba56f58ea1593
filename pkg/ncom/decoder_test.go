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
	"testing"
	"time"

	"jinr.ru/greenlab/go-ncom/pkg/layers"
)

func TestNoiseOnly(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	noise := make([]byte, 100)
	for i := range noise {
		noise[i] = byte(i)
	}
	d.Write(noise)
	if d.Decode(time.Time{}) {
		t.Fatalf("decoded a frame from noise")
	}
	cs := d.Connection()
	if cs.SkippedChars != 100 || cs.NumChars != 100 || cs.NumPackets != 0 || cs.UnprocessedBytes != 0 {
		t.Fatalf("stats=%+v want 100 skipped", cs)
	}
}

func TestGarbageThenFrame(t *testing.T) {
	garbage := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	l := &layers.NcomLayer{NavStatus: 1, NcomBatchA: layers.NcomBatchA{Accel: [3]int32{10000, 0, 0}}}

	cases := []struct {
		name  string
		split bool
	}{
		{"one write", false},
		{"separate writes", true},
	}
	for _, c := range cases {
		d := NewDecoder("10.0.0.1")
		if c.split {
			d.Write(garbage)
			if d.Decode(time.Time{}) {
				t.Fatalf("%s: decoded garbage", c.name)
			}
			d.Write(buildFrame(t, l))
		} else {
			d.Write(append(append([]byte(nil), garbage...), buildFrame(t, l)...))
		}
		if !d.Decode(time.Time{}) {
			t.Fatalf("%s: frame not decoded", c.name)
		}
		cs := d.Connection()
		if cs.SkippedChars != uint64(len(garbage)) {
			t.Fatalf("%s: skipped=%d want %d", c.name, cs.SkippedChars, len(garbage))
		}
		if cs.NumChars != uint64(len(garbage))+layers.NcomFrameSize || cs.NumPackets != 1 {
			t.Fatalf("%s: stats=%+v", c.name, cs)
		}
		wantFloat(t, d.Nav(), "Ax", 1.0)
	}
}

func TestSpuriousSync(t *testing.T) {
	frame := buildFrame(t, &layers.NcomLayer{NavStatus: 2})
	var data []byte
	// pick filler bytes for which no window starting at the fake sync validates
	for fill := 0; fill < 256 && data == nil; fill++ {
		candidate := []byte{layers.NcomSync, byte(fill), byte(fill), byte(fill)}
		candidate = append(candidate, frame...)
		if !layers.ValidFrame(candidate) {
			data = candidate
		}
	}
	if data == nil {
		t.Fatalf("no filler found")
	}

	d := NewDecoder("10.0.0.1")
	d.Write(data)
	if !d.Decode(time.Time{}) {
		t.Fatalf("frame not decoded")
	}
	if cs := d.Connection(); cs.SkippedChars != 4 || cs.NumPackets != 1 {
		t.Fatalf("stats=%+v want 4 skipped", cs)
	}
}

func TestPartialFrameWaits(t *testing.T) {
	frame := buildFrame(t, &layers.NcomLayer{NavStatus: 1})
	d := NewDecoder("10.0.0.1")
	d.Write(frame[:40])
	if d.Decode(time.Time{}) {
		t.Fatalf("decoded a partial frame")
	}
	if cs := d.Connection(); cs.UnprocessedBytes != 40 || cs.SkippedChars != 0 {
		t.Fatalf("stats=%+v", cs)
	}
	d.Write(frame[40:])
	if !d.Decode(time.Time{}) {
		t.Fatalf("completed frame not decoded")
	}
	if cs := d.Connection(); cs.UnprocessedBytes != 0 || cs.NumChars != layers.NcomFrameSize {
		t.Fatalf("stats=%+v", cs)
	}
}

func TestDecodeAll(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	var data []byte
	for i := 0; i < 3; i++ {
		data = append(data, buildFrame(t, &layers.NcomLayer{NavStatus: 1, NcomBatchA: layers.NcomBatchA{Time: uint16(i * 10)}})...)
	}
	data = append(data, 0xE7, 1, 2)
	d.Write(data)
	if n := d.DecodeAll(time.Time{}); n != 3 {
		t.Fatalf("decoded %d frames want 3", n)
	}
	if cs := d.Connection(); cs.UnprocessedBytes != 3 || cs.NumPackets != 3 {
		t.Fatalf("stats=%+v", cs)
	}
	wantFloat(t, d.Nav(), "GpsSeconds", 0.02)
}

// A frame with a corrupted Batch B is still accepted because checksum 1 matches.
// This is a known false accept of the any-of-three checksum rule.
func TestChecksumFalseAccept(t *testing.T) {
	frame := buildFrame(t, &layers.NcomLayer{NavStatus: 4, NcomBatchB: layers.NcomBatchB{Lat: 0.5}})
	frame[layers.NcomOffsetLat+7] ^= 0x01
	if frame[layers.NcomOffsetChecksum2] == layers.Checksum(frame, layers.NcomOffsetChecksum2) {
		t.Fatalf("checksum 2 still matches")
	}

	d := NewDecoder("10.0.0.1")
	d.Write(frame)
	if !d.Decode(time.Time{}) {
		t.Fatalf("frame with matching checksum 1 rejected")
	}
	lat, ok := d.Nav().Float("Lat")
	if !ok || lat == 0.5 {
		t.Fatalf("lat=%v, expected the corrupted value", lat)
	}
}

func TestNothingValidResets(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	feedStatus(t, d, 0, [8]byte{0x40, 0x42, 0x0F, 0x00, 9, 1, 2, 3})
	wantUint(t, d.Status(), "GpsMinutes", 1000000)
	feed(t, d, &layers.NcomLayer{NavStatus: 4, NcomBatchB: layers.NcomBatchB{Lat: 1}}, time.Time{})

	for _, ns := range []uint8{0, 5, 6, 7} {
		feed(t, d, &layers.NcomLayer{NavStatus: ns, Channel: 0}, time.Time{})
		if st := d.Status(); len(st) != 0 {
			t.Fatalf("navstatus %d: status=%v want empty", ns, st)
		}
		nav := d.Nav()
		if len(nav) != 1 {
			t.Fatalf("navstatus %d: nav=%v want only NavStatus", ns, nav)
		}
		wantUint(t, nav, "NavStatus", uint64(ns))
	}
}

func TestUnlistedNavStatus(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	feedStatus(t, d, 0, [8]byte{0x40, 0x42, 0x0F, 0x00, 9, 1, 2, 3})
	feed(t, d, &layers.NcomLayer{NavStatus: 9, Channel: 0, Status: [8]byte{0xE8, 0x03}}, time.Time{})
	if nav := d.Nav(); len(nav) != 1 {
		t.Fatalf("nav=%v want only NavStatus", nav)
	}
	wantUint(t, d.Status(), "GpsMinutes", 1000000)
	wantUint(t, d.Status(), "NavStatus", 10)
}

func TestBatchScaling(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	l := &layers.NcomLayer{
		NavStatus: 3,
		NcomBatchA: layers.NcomBatchA{
			Time:  1234,
			Accel: [3]int32{10000, -20000, 98100},
			Rate:  [3]int32{100000, 0, -50000},
		},
		NcomBatchB: layers.NcomBatchB{
			Lat:     0.9,
			Lon:     -0.1,
			Alt:     55.5,
			Vel:     [3]int32{10000, -5000, 1},
			Heading: -1570796,
			Pitch:   100000,
			Roll:    -100000,
		},
	}
	feed(t, d, l, time.Time{})
	nav := d.Nav()
	wantFloat(t, nav, "GpsSeconds", 1.234)
	wantFloat(t, nav, "Ax", 1.0)
	wantFloat(t, nav, "Ay", -2.0)
	wantFloat(t, nav, "Az", 9.81)
	wantFloat(t, nav, "Wx", 1.0*rad2deg)
	wantFloat(t, nav, "Wz", -0.5*rad2deg)
	wantFloat(t, nav, "Lat", 0.9)
	wantFloat(t, nav, "Lon", -0.1)
	wantFloat(t, nav, "Alt", 55.5)
	wantFloat(t, nav, "Vn", 1.0)
	wantFloat(t, nav, "Ve", -0.5)
	wantFloat(t, nav, "Heading", 360-1.570796*rad2deg)
	wantFloat(t, nav, "Pitch", 0.1*rad2deg)
	wantFloat(t, nav, "Roll", -0.1*rad2deg)

	// Batch B is not valid for NavStatus 1
	feed(t, d, &layers.NcomLayer{NavStatus: 1, NcomBatchB: layers.NcomBatchB{Lat: 0.9}}, time.Time{})
	if _, ok := d.Nav()["Lat"]; ok {
		t.Fatalf("Lat present for NavStatus 1")
	}
	// Batch A is not valid for NavStatus 10, Batch S is
	feed(t, d, &layers.NcomLayer{NavStatus: 10, Channel: 21, Status: [8]byte{1}}, time.Time{})
	if _, ok := d.Nav()["Ax"]; ok {
		t.Fatalf("Ax present for NavStatus 10")
	}
	wantUint(t, d.Status(), "DiskSpace", 1)
}

func TestGpsTime(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	feed(t, d, &layers.NcomLayer{NavStatus: 1}, time.Time{})
	if _, ok := d.Nav()["GpsTime"]; ok {
		t.Fatalf("GpsTime without minutes")
	}

	// 2000000 minutes, UTC offset -18 s
	feedStatus(t, d, 0, [8]byte{0x80, 0x84, 0x1E, 0x00, 10, 1, 1, 1})
	feed(t, d, &layers.NcomLayer{NavStatus: 1, Channel: quietChannel, NcomBatchA: layers.NcomBatchA{Time: 59000}}, time.Time{})
	gps, ok := d.Nav().Get("GpsTime").Time()
	want := GpsEpoch.Add(2000000*time.Minute + 59*time.Second)
	if !ok || gps.Sub(want).Abs() > time.Microsecond {
		t.Fatalf("GpsTime=%v want %v", gps, want)
	}
	if _, ok := d.Nav()["UtcTime"]; ok {
		t.Fatalf("UtcTime without offset")
	}

	utcOffset := int8(-18*2 + 1)
	feedStatus(t, d, 16, [8]byte{7: byte(utcOffset)})
	// seconds wrap from 59 to 0.1 moves to the next minute
	feed(t, d, &layers.NcomLayer{NavStatus: 1, Channel: quietChannel, NcomBatchA: layers.NcomBatchA{Time: 100}}, time.Time{})
	wantUint(t, d.Status(), "GpsMinutes", 2000001)
	want = GpsEpoch.Add(2000001*time.Minute + 100*time.Millisecond)
	gps, _ = d.Status().Get("GpsTime").Time()
	if gps.Sub(want).Abs() > time.Microsecond {
		t.Fatalf("GpsTime=%v want %v", gps, want)
	}
	utc, ok := d.Nav().Get("UtcTime").Time()
	if !ok || utc.Sub(want.Add(-18*time.Second)).Abs() > time.Microsecond {
		t.Fatalf("UtcTime=%v want %v", utc, want.Add(-18*time.Second))
	}
}

func TestGpsTimeLargeMinutes(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	feedStatus(t, d, 0, [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 10, 1, 1, 1})
	local := time.Unix(1600000000, 0)
	feed(t, d, &layers.NcomLayer{NavStatus: 1, Channel: quietChannel, NcomBatchA: layers.NcomBatchA{Time: 1000}}, local)

	wantUnix := GpsEpoch.Unix() + 0xFFFFFFFF*60 + 1
	gps, ok := d.Nav().Get("GpsTime").Time()
	if !ok || gps.Unix() != wantUnix {
		t.Fatalf("GpsTime=%v unix=%d want %d", gps, gps.Unix(), wantUnix)
	}
	if gps.Year() < 9000 {
		t.Fatalf("GpsTime year=%d, minutes overflowed", gps.Year())
	}

	off, ok := d.Connection().TimeOffset.Float()
	want := 0xFFFFFFFF*60.0 + 1.0 - 1600000000.0
	if !ok || !near(off, want, 1e-3) {
		t.Fatalf("offset=%v want %v", off, want)
	}
	dev, ok := d.DeviceTime(local)
	if diff := dev.Unix() - wantUnix; !ok || diff < -1 || diff > 1 {
		t.Fatalf("device time=%v unix=%d want %d", dev, dev.Unix(), wantUnix)
	}
}

func TestClockOffsetFromFrames(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	feedStatus(t, d, 0, [8]byte{0x80, 0x84, 0x1E, 0x00, 10, 1, 1, 1})
	local := time.Unix(1600000000, 0)
	feed(t, d, &layers.NcomLayer{NavStatus: 1, Channel: quietChannel, NcomBatchA: layers.NcomBatchA{Time: 1000}}, local)

	want := 2000000*60.0 + 1.0 - 1600000000.0
	off, ok := d.Connection().TimeOffset.Float()
	if !ok || !near(off, want, 1e-3) {
		t.Fatalf("offset=%v want %v", off, want)
	}
	dev, ok := d.DeviceTime(local)
	devWant := GpsEpoch.Add(2000000*time.Minute + time.Second)
	if !ok || dev.Sub(devWant).Abs() > time.Millisecond {
		t.Fatalf("device time=%v want %v", dev, devWant)
	}

	// no local time clears the estimate
	feed(t, d, &layers.NcomLayer{NavStatus: 1, Channel: quietChannel, NcomBatchA: layers.NcomBatchA{Time: 1010}}, time.Time{})
	if d.Connection().TimeOffset.Valid() {
		t.Fatalf("offset kept without local time")
	}
	if _, ok := d.DeviceTime(local); ok {
		t.Fatalf("device time without offset")
	}
}

func TestStatusChannelErrors(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	feedStatus(t, d, 25, [8]byte{})
	feedStatus(t, d, 25, [8]byte{})
	feedStatus(t, d, 19, [8]byte{0xFF, 0xFE, 'a'})
	feedStatus(t, d, 21, [8]byte{5})

	cs := d.Connection()
	if cs.DecodeStatusErrors[25] != 2 || cs.DecodeStatusErrors[19] != 1 || cs.Errors() != 3 {
		t.Fatalf("errors=%v", cs.DecodeStatusErrors)
	}
	if cs.NumPackets != 4 {
		t.Fatalf("packets=%d want 4", cs.NumPackets)
	}
	wantInvalid(t, d.Status(), "DevId")
	wantUint(t, d.Status(), "DiskSpace", 5)
}

func TestSnapshotsAreCopies(t *testing.T) {
	d := NewDecoder("10.0.0.1")
	feedStatus(t, d, 25, [8]byte{})
	st := d.Status()
	st.Set("Injected", Uint(1))
	cs := d.Connection()
	cs.DecodeStatusErrors[25] = 100
	if _, ok := d.Status()["Injected"]; ok {
		t.Fatalf("status snapshot shares the map")
	}
	if d.Connection().DecodeStatusErrors[25] != 1 {
		t.Fatalf("connection snapshot shares the map")
	}
}
