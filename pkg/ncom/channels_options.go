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

func (c *channelContext) scaledByte(name string, b byte, scale float64) {
	c.setFloat(name, float64(b)*scale, b != 0xFF)
}

func (c *channelContext) scaledWord(name string, w uint16, scale float64) {
	c.setFloat(name, float64(w)*scale, w != 0xFFFF)
}

// option sets a configuration byte whose top bit marks it as not set
func (c *channelContext) option(name string, b byte) {
	c.setUint(name, uint64(b), b&0x80 == 0)
}

func decodeHeadingSearch(p []byte, c *channelContext) error {
	c.status.Set("HeadQuality", Uint(uint64(p[0])))
	c.status.Set("HeadSearchType", Uint(uint64(p[1])))
	c.status.Set("HeadSearchStatus", Uint(uint64(p[2])))
	c.status.Set("HeadSearchReady", Uint(uint64(p[3])))
	searchInit := u16(p, 4)
	c.setUint("HeadSearchInit", uint64(searchInit), searchInit != 0xFFFF)
	num := u16(p, 6)
	c.setUint("HeadSearchNum", uint64(num), num != 0xFFFF)
	return nil
}

func decodeHeadingSearchInit(p []byte, c *channelContext) error {
	for i, name := range []string{"HeadSearchMaster", "HeadSearchSlave1", "HeadSearchSlave2", "HeadSearchSlave3"} {
		c.status.Set(name, Uint(1+uint64(p[i])))
	}
	c.status.Set("HeadSearchTime", Uint(uint64(u16(p, 4))))
	c.status.Set("HeadSearchConstr", Uint(uint64(u16(p, 6))))
	return nil
}

var optionNames = [8]string{
	"OptionLevel", "OptionVibration", "OptionGpsAcc", "OptionUpd",
	"OptionSer1", "OptionSer2", "OptionHeading", "OptionHeave",
}

func decodeOptions(p []byte, c *channelContext) error {
	for i, name := range optionNames {
		c.option(name, p[i])
	}
	return nil
}

func decodeMisalignment(p []byte, c *channelContext) error {
	valid := p[6] == 0
	c.setFloat("HeadingMisAlign", float64(s16(p, 0))*alignToRad*rad2deg, valid)
	c.setFloat("HeadingMisAlignAcc", float64(u16(p, 2))*alignAccToRad*rad2deg, valid)
	c.byteField("NumSatsUsedPos", p[4])
	c.byteField("NumSatsUsedVel", p[5])
	c.byteField("NumSatsUsedAtt", p[7])
	return nil
}

func decodeZeroVelOptions(p []byte, c *channelContext) error {
	c.scaledByte("OptionSZVDelay", p[0], szvDelayToSec)
	c.scaledByte("OptionSZVPeriod", p[1], szvPeriodToSec)
	c.scaledWord("OptionTopSpeed", u16(p, 2), topSpeedToMps)
	c.scaledByte("OptionInitSpeed", p[4], initSpeedToMps)
	c.option("OptionSer3", p[5])
	return nil
}

func decodeNoSlipOptions(p []byte, c *channelContext) error {
	c.scaledByte("OptionNSDelay", p[0], nsDelayToSec)
	c.scaledByte("OptionNSPeriod", p[1], nsPeriodToSec)
	c.scaledWord("OptionNSAngleStd", u16(p, 2), angAccToRad*rad2deg)
	c.scaledByte("OptionNSHAccel", p[4], nsAccelToMps2)
	c.scaledByte("OptionNSVAccel", p[5], nsAccelToMps2)
	c.scaledByte("OptionNSSpeed", p[6], nsSpeedToMps)
	c.scaledByte("OptionNSRadius", p[7], nsRadiusToM)
	return nil
}

func decodeBaudRates(p []byte, c *channelContext) error {
	for i, name := range []string{"OptionSer1Baud", "OptionSer2Baud", "OptionSer3Baud", "OptionCanBaud"} {
		c.status.Set(name, Uint(uint64(p[i]&0x0F)))
	}
	return nil
}

func decodeHeadingLockOptions(p []byte, c *channelContext) error {
	c.scaledByte("OptionHLDelay", p[0], hlDelayToSec)
	c.scaledByte("OptionHLPeriod", p[1], hlPeriodToSec)
	c.scaledWord("OptionHLAngleStd", u16(p, 2), angAccToRad*rad2deg)
	c.scaledByte("OptionStatDelay", p[4], statDelayToSec)
	c.scaledByte("OptionStatSpeed", p[5], statSpeedToMps)
	return nil
}

func decodeWheelSpeedConfig(p []byte, c *channelContext) error {
	c.scaledWord("WSpeedScale", u16(p, 0), wsSfToPpm)
	c.scaledWord("WSpeedScaleStd", u16(p, 2), wsSfAccToPc)
	c.scaledByte("OptionWSpeedDelay", p[4], wsDelayToSec)
	c.scaledByte("OptionWSpeedZVDelay", p[5], wsDelayToSec)
	c.scaledByte("OptionWSpeedNoiseStd", p[6], wsNoiseToCnt)
	return nil
}
