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
	"time"
)

const (
	// ClockFactorUp is applied when the device clock is ahead of the estimate
	ClockFactorUp = 0.1
	// ClockFactorDown is applied when the device clock is behind the estimate.
	// Network delay only ever makes packets late so the estimate falls slowly.
	ClockFactorDown = 0.001
)

// GpsEpoch is the start of GPS time
var GpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// ClockOffset estimates offset in seconds such that device time = local time + offset
type ClockOffset struct {
	offset float64
	valid  bool
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) * 1e-9
}

// Update feeds device time in seconds since GpsEpoch received at local time
func (c *ClockOffset) Update(device float64, local time.Time) {
	to := device - unixSeconds(local)
	if !c.valid {
		c.offset = to
		c.valid = true
		return
	}
	dto := to - c.offset
	if dto < 0 {
		c.offset += dto * ClockFactorDown
	} else {
		c.offset += dto * ClockFactorUp
	}
}

func (c *ClockOffset) Reset() {
	c.offset = 0
	c.valid = false
}

func (c *ClockOffset) Offset() (float64, bool) {
	return c.offset, c.valid
}

func (c *ClockOffset) Value() Value {
	if !c.valid {
		return Invalid()
	}
	return Float(c.offset)
}

// DeviceTime converts local time to device GPS time
func (c *ClockOffset) DeviceTime(local time.Time) (time.Time, bool) {
	if !c.valid {
		return time.Time{}, false
	}
	return gpsSecondsTime(unixSeconds(local) + c.offset), true
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// gpsMinuteTime is GpsEpoch plus whole minutes. It goes through Unix seconds
// because a time.Duration overflows past about 292 years.
func gpsMinuteTime(minutes uint64) time.Time {
	return time.Unix(GpsEpoch.Unix()+int64(minutes)*60, 0).UTC()
}

// gpsSecondsTime is GpsEpoch plus s seconds, see gpsMinuteTime
func gpsSecondsTime(s float64) time.Time {
	whole := math.Floor(s)
	return time.Unix(GpsEpoch.Unix()+int64(whole), int64((s-whole)*1e9)).UTC()
}
