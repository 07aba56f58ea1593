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

	"jinr.ru/greenlab/go-ncom/pkg/layers"
)

// nothingValid reports a NavStatus for which no part of the frame is meaningful
func nothingValid(navStatus uint8) bool {
	switch navStatus {
	case 0, 5, 6, 7:
		return true
	}
	return false
}

func batchAValid(navStatus uint8) bool {
	switch navStatus {
	case 1, 2, 3, 4, 20, 21, 22:
		return true
	}
	return false
}

func batchBValid(navStatus uint8) bool {
	switch navStatus {
	case 3, 4, 20, 21, 22:
		return true
	}
	return false
}

func batchSValid(navStatus uint8) bool {
	switch navStatus {
	case 1, 2, 3, 4, 10, 20, 21, 22:
		return true
	}
	return false
}

var (
	accelNames = [3]string{"Ax", "Ay", "Az"}
	rateNames  = [3]string{"Wx", "Wy", "Wz"}
	velNames   = [3]string{"Vn", "Ve", "Vd"}
)

func decodeBatchA(l *layers.NcomLayer, nav Fields) {
	nav.Set("GpsSeconds", Float(float64(l.Time)*timeToSec))
	for i := 0; i < 3; i++ {
		nav.Set(accelNames[i], Float(float64(l.Accel[i])*accToMps2))
		nav.Set(rateNames[i], Float(float64(l.Rate[i])*rateToRps*rad2deg))
	}
}

// decodeBatchB keeps latitude and longitude in radians as transmitted
func decodeBatchB(l *layers.NcomLayer, nav Fields) {
	nav.Set("Lat", Float(l.Lat))
	nav.Set("Lon", Float(l.Lon))
	nav.Set("Alt", Float(float64(l.Alt)))
	for i := 0; i < 3; i++ {
		nav.Set(velNames[i], Float(float64(l.Vel[i])*velToMps))
	}
	heading := float64(l.Heading) * angToRad * rad2deg
	heading = math.Mod(heading, 360)
	if heading < 0 {
		heading += 360
	}
	nav.Set("Heading", Float(heading))
	nav.Set("Pitch", Float(float64(l.Pitch)*angToRad*rad2deg))
	nav.Set("Roll", Float(float64(l.Roll)*angToRad*rad2deg))
}

// updateTime maintains the minute counter across a seconds wrap and derives
// absolute GPS and UTC time. It returns device time in seconds since GpsEpoch.
func (d *Decoder) updateTime(seconds float64) (float64, bool) {
	minutes, ok := d.status.Get("GpsMinutes").Uint()
	if ok && d.prevSeconds > 30.0 && seconds < 30.0 {
		minutes++
		d.status.Set("GpsMinutes", Uint(minutes))
	}
	d.prevSeconds = seconds
	if !ok {
		d.status.Invalidate("GpsTime")
		d.status.Invalidate("UtcTime")
		return 0, false
	}

	gps := gpsMinuteTime(minutes).Add(secondsToDuration(seconds))
	d.nav.Set("GpsTime", Time(gps))
	d.status.Set("GpsTime", Time(gps))

	offset, ok := d.status.Get("TimeUtcOffset").Int()
	if ok {
		utc := gps.Add(time.Duration(offset) * time.Second)
		d.nav.Set("UtcTime", Time(utc))
		d.status.Set("UtcTime", Time(utc))
	} else {
		d.status.Invalidate("UtcTime")
	}
	return float64(minutes)*60.0 + seconds, true
}
