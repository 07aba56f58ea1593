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
	"strings"
	"unicode/utf8"
)

func decodePositionAccuracy(p []byte, c *channelContext) error {
	c.fields16(p, axes([3]string{"NorthAcc", "EastAcc", "AltAcc"}, false, posAccToM), p[6] <= maxAge)
	c.byteField("UmacStatus", p[7])
	return nil
}

func decodeVelocityAccuracy(p []byte, c *channelContext) error {
	c.fields16(p, axes([3]string{"VnAcc", "VeAcc", "VdAcc"}, false, velAccToMps), p[6] <= maxAge)
	c.setUint("BlendedMethod", uint64(p[7]), p[7] != 0)
	return nil
}

// decodeLeverArmExtended is the GAP estimate with a range multiplier in byte 7
func decodeLeverArmExtended(p []byte, c *channelContext) error {
	sf := float64(p[7])
	c.fields16(p, axes([3]string{"GAPx", "GAPy", "GAPz"}, true, gpsPosToM*sf), p[6] <= maxAge && p[7] != 0)
	return nil
}

func (c *channelContext) text(name string, b []byte) (string, error) {
	if !utf8.Valid(b) {
		c.status.Set(name, Invalid())
		return "", ErrInvalidText{Channel: c.channel, Field: name}
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

func decodeDevId(p []byte, c *channelContext) error {
	id, err := c.text("DevId", p)
	if err != nil {
		return err
	}
	c.status.Set("DevId", Text(id))
	return nil
}

func decodeDiffCorrections(p []byte, c *channelContext) error {
	c.status.Set("GpsDiffAge", Float(float64(s16(p, 0))*diffAgeToSec))
	if p[2] == 0 {
		c.status.Set("BaseStationId", Invalid())
		return nil
	}
	id, err := c.text("BaseStationId", p[2:6])
	if err != nil {
		return err
	}
	c.status.Set("BaseStationId", Text(id))
	return nil
}

func decodeDisk(p []byte, c *channelContext) error {
	c.status.Set("DiskSpace", Uint(uint64(u32(p, 0))))
	c.status.Set("FileSize", Uint(uint64(u32(p, 4))))
	return nil
}

func decodeVersion(p []byte, c *channelContext) error {
	c.byteField("OsVersion1", p[0])
	c.byteField("OsVersion2", p[1])
	c.byteField("OsVersion3", p[2])

	script := int32(uint32(p[3])|uint32(p[4])<<8|uint32(p[5])<<16) << 8 >> 8
	if script >= 0 {
		c.status.Set("OsScriptId", Text(fmt.Sprintf("%06d", script)))
	} else {
		c.status.Set("OsScriptId", Invalid())
	}

	// 0xFFFF is a valid serial number
	c.status.Set("SerialNumber", Uint(uint64(u16(p, 6))))
	return nil
}

// flag is one bit of an inverted flags byte
type flag struct {
	name string
	mask byte
}

// invertedFlags decodes a flags byte whose bits are transmitted inverted.
// The flags are valid when the inverted top bit is set.
func (c *channelContext) invertedFlags(b byte, flags []flag) {
	gf := ^b
	valid := gf&0x80 != 0
	for _, f := range flags {
		c.setBool(f.name, gf&f.mask != 0, valid)
	}
}

var gnssDiffFlags = []flag{
	{"PsrDiffEnabled", 0x01},
	{"SBASEnabled", 0x02},
	{"OmniVBSEnabled", 0x08},
	{"OmniHpEnabled", 0x10},
	{"L1DiffEnabled", 0x20},
	{"L2DiffEnabled", 0x40},
}

func decodeHardware(p []byte, c *channelContext) error {
	for i, name := range []string{"ImuType", "GpsPrimary", "GpsSecondary", "InterPcbType", "FrontPcbType", "InterSwId", "HwConfig"} {
		c.byteField(name, p[i])
	}
	c.invertedFlags(p[7], gnssDiffFlags)
	return nil
}

var gnssRawFlags = []flag{
	{"GnssGlonassEnabled", 0x01},
	{"GnssGalileoEnabled", 0x02},
	{"GnssRawRngEnabled", 0x04},
	{"GnssRawDopEnabled", 0x08},
	{"GnssRawL1Enabled", 0x10},
	{"GnssRawL2Enabled", 0x20},
	{"GnssRawL5Enabled", 0x40},
}

// nibble sets a 4 bit field where 0xF means not available
func (c *channelContext) nibble(name string, b byte) {
	c.setUint(name, uint64(b&0x0F), b&0x0F != 0x0F)
}

func decodeGnssConfig(p []byte, c *channelContext) error {
	c.byteField("CpuPcbType", p[0])
	c.byteField("GpsSetType", p[1])
	c.byteField("GpsSetFormat", p[2])
	c.byteField("DualPortRamStatus", p[3])
	c.nibble("GpsPrimarySetPosRate", p[4])
	c.nibble("GpsPrimarySetVelRate", p[4]>>4)
	c.nibble("GpsPrimarySetRawRate", p[5])
	c.nibble("GpsSecondarySetRawRate", p[5]>>4)
	c.invertedFlags(p[6], gnssRawFlags)
	return nil
}

// receiverStatus handles the status channels of the primary, secondary and external receivers
func receiverStatus(prefix string) channelHandler {
	return func(p []byte, c *channelContext) error {
		c.setUint(prefix+"AntStatus", uint64(p[0]&0x03), p[0]&0x03 != 0x03)
		c.setUint(prefix+"AntPower", uint64((p[0]&0x0C)>>2), p[0]&0x0C != 0x0C)
		c.byteField(prefix+"CpuUsed", p[1])
		c.byteField(prefix+"CoreNoise", p[2])
		c.byteField(prefix+"Baud", p[3])
		c.byteField(prefix+"NumSats", p[4])
		c.byteField(prefix+"PosMode", p[5])
		c.setFloat(prefix+"CoreTemp", float64(p[6])+tempKOffset+absZeroTempC, p[6] != 0xFF)
		c.setFloat(prefix+"SupplyVolt", float64(p[7])*supplyToV, p[7] != 0xFF)
		return nil
	}
}
