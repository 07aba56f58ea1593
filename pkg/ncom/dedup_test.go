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
	"fmt"
	"testing"
)

func TestDedupSeen(t *testing.T) {
	d := NewDedup(DefaultDedupCapacity)
	data := []byte("datagram")
	if d.Seen(data) {
		t.Fatalf("first datagram reported as seen")
	}
	if !d.Seen(data) {
		t.Fatalf("repeated datagram not detected")
	}
	if d.Seen([]byte("datagram2")) {
		t.Fatalf("different datagram reported as seen")
	}
}

func TestDedupEviction(t *testing.T) {
	d := NewDedup(3)
	for i := 0; i < 4; i++ {
		if d.Seen([]byte(fmt.Sprintf("dg%d", i))) {
			t.Fatalf("dg%d reported as seen", i)
		}
	}
	if d.Len() != 3 {
		t.Fatalf("len=%d want 3", d.Len())
	}
	// dg0 was evicted by dg3
	if d.Seen([]byte("dg0")) {
		t.Fatalf("evicted datagram reported as seen")
	}
	// dg0 in turn evicted dg1
	if d.Seen([]byte("dg1")) {
		t.Fatalf("evicted datagram reported as seen")
	}
	if !d.Seen([]byte("dg3")) {
		t.Fatalf("recent datagram not detected")
	}
}
