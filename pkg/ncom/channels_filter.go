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
)

var innovations1 = [8]string{"InnPosX", "InnPosY", "InnPosZ", "InnVelX", "InnVelY", "InnVelZ", "InnHeading", "InnPitch"}

var innovations2 = [6]string{"InnZeroVelX", "InnZeroVelY", "InnZeroVelZ", "InnNoSlipH", "InnHeadingH", "InnWSpeed"}

func decodeInnovations1(p []byte, c *channelContext) error {
	for i, name := range innovations1 {
		c.innovation(name, p[i])
	}
	return nil
}

func decodeInnovations2(p []byte, c *channelContext) error {
	for i, name := range innovations2 {
		c.innovation(name, p[i])
	}
	return nil
}

const refFrameInvalid = 0x80000000

func (c *channelContext) refAngle(name string, p []byte, i int) {
	c.setFloat(name, float64(s32(p, i))*fineAngToRad*rad2deg, u32(p, i) != refFrameInvalid)
}

func decodeRefFrameLatLon(p []byte, c *channelContext) error {
	c.refAngle("RefFrameLat", p, 0)
	c.refAngle("RefFrameLon", p, 4)
	c.computeRefFrame()
	return nil
}

func decodeRefFrameAltHeading(p []byte, c *channelContext) error {
	c.setFloat("RefFrameAlt", float64(s32(p, 0))*altToM, u32(p, 0) != refFrameInvalid)
	c.refAngle("RefFrameHeading", p, 4)
	c.computeRefFrame()
	return nil
}

var refFrameDerived = [4]string{"RefLatRadius", "RefLonRadius", "RefHeadingCos", "RefHeadingSin"}

// computeRefFrame derives metres per degree of the reference frame origin and
// the heading rotation. Lat/lon and alt/heading arrive on different channels so
// a moving origin is briefly inconsistent until both have been updated.
func (c *channelContext) computeRefFrame() {
	lat, okLat := c.status.Float("RefFrameLat")
	_, okLon := c.status.Float("RefFrameLon")
	alt, okAlt := c.status.Float("RefFrameAlt")
	heading, okHeading := c.status.Float("RefFrameHeading")
	if !(okLat && okLon && okAlt && okHeading) {
		for _, name := range refFrameDerived {
			c.status.Invalidate(name)
		}
		return
	}

	tmp := earthEccentricity * math.Sin(lat*deg2rad)
	tmp = 1.0 - tmp*tmp
	sqt := math.Sqrt(tmp)
	rhoE := earthEquatRadius * (1.0 - earthEccentricity*earthEccentricity) / (sqt * tmp)
	rhoN := earthEquatRadius / sqt

	c.status.Set("RefLatRadius", Float((rhoE+alt)*deg2rad))
	c.status.Set("RefLonRadius", Float((rhoN+alt)*math.Cos(lat*deg2rad)*deg2rad))
	c.status.Set("RefHeadingCos", Float(math.Cos(heading*deg2rad)))
	c.status.Set("RefHeadingSin", Float(math.Sin(heading*deg2rad)))
}

func decodeDop(p []byte, c *channelContext) error {
	c.setFloat("Undulation", float64(s16(p, 0))*undulToM, u16(p, 0) != 0x8000)

	hdop := float64(p[2]) * dopFactor
	pdop := float64(p[3]) * dopFactor
	c.setFloat("HDOP", hdop, p[2] != 0xFF)
	c.setFloat("PDOP", pdop, p[3] != 0xFF)
	if p[2] != 0xFF && p[3] != 0xFF {
		c.status.Set("VDOP", Float(math.Sqrt(math.Max(pdop*pdop-hdop*hdop, 0))))
	} else {
		c.status.Set("VDOP", Invalid())
	}

	c.byteField("DatumEllipsoid", p[6])
	c.byteField("DatumEarthFrame", p[7])
	return nil
}
