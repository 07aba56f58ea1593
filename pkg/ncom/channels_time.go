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
)

// minValidMinutes is the smallest plausible GPS minute count
const minValidMinutes = 1000

func decodeTime(p []byte, c *channelContext) error {
	minutes := u32(p, 0)
	c.setUint("GpsMinutes", uint64(minutes), minutes >= minValidMinutes)
	c.byteField("GpsNumObs", p[4])
	c.byteField("GpsPosMode", p[5])
	c.byteField("GpsVelMode", p[6])
	c.byteField("GpsAttMode", p[7])
	return nil
}

// decodeVehicleRotation also carries the GPS to UTC offset in byte 7
func decodeVehicleRotation(p []byte, c *channelContext) error {
	c.fields16(p, axes([3]string{"VehHeading", "VehPitch", "VehRoll"}, true, gpsAttToRad*rad2deg), p[6] <= maxAge)
	c.setInt("TimeUtcOffset", int64(int8(p[7])>>1), p[7]&0x01 != 0)
	return nil
}

func decodeLoopTiming(p []byte, c *channelContext) error {
	mismatch := u16(p, 0)
	c.setUint("TimeMismatch", uint64(mismatch), mismatch != 0xFFFF)
	c.byteField("ImuTimeDiff", p[2])
	c.byteField("ImuTimeMargin", p[3])
	imuLoop := u16(p, 4)
	c.setUint("ImuLoopTime", uint64(imuLoop), imuLoop != 0xFFFF)
	opLoop := u16(p, 6)
	c.setUint("OpLoopTime", uint64(opLoop), opLoop != 0xFFFF)
	return nil
}

// upTime expands the compressed up time: seconds, then minutes, then hours
func upTime(x uint16) uint64 {
	switch {
	case x > 20700:
		return uint64(x-20532) * 3600
	case x < 10800:
		return uint64(x)
	default:
		return uint64(x-10620) * 60
	}
}

func decodeUpTime(p []byte, c *channelContext) error {
	lag := u16(p, 0)
	c.setUint("BnsLag", uint64(lag), lag != 0xFFFF)
	c.status.Set("UpTime", Uint(upTime(u16(p, 2))))
	c.byteField("GpsPosReject", p[4])
	c.byteField("GpsVelReject", p[5])
	c.byteField("GpsAttReject", p[6])
	return nil
}

// decodeWheelSpeedCounts stamps the count with the millisecond field of the
// payload in the current GPS minute
func decodeWheelSpeedCounts(p []byte, c *channelContext) error {
	c.status.Set("WSpeedCount", Uint(uint64(u32(p, 0))))

	ms := u16(p, 4)
	minutes, ok := c.status.Get("GpsMinutes").Uint()
	if ok && ms != 0xFFFF {
		t := gpsMinuteTime(minutes).Add(time.Duration(ms) * time.Millisecond)
		c.status.Set("WSpeedTime", Time(t))
	} else {
		c.status.Set("WSpeedTime", Invalid())
	}

	c.setFloat("WSpeedTimeUnchanged", float64(p[6])*wsDelayToSec, p[6] != 0xFF)
	return nil
}
