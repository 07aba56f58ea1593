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
	"encoding/binary"
	"math"
	"sort"
)

// channelContext is what a status channel handler may read and modify
type channelContext struct {
	channel uint8
	status  Fields
	nav     Fields
	state   *State
}

type channelHandler func(p []byte, c *channelContext) error

// State is registry state which outlives status map resets
type State struct {
	counters map[string]uint64
}

func NewState() *State {
	return &State{counters: map[string]uint64{}}
}

// mergeCounter extends the low bits of a wrapping device counter with the
// high bits of the previous logical value
func mergeCounter(prev, s uint64, bits uint) uint64 {
	mask := uint64(1)<<bits - 1
	il := prev & mask
	iu := prev >> bits
	if il > s {
		iu++
	}
	return iu<<bits + s
}

// Registry maps status channels to their decoders
type Registry struct {
	handlers map[uint8]channelHandler
}

// registry is immutable after init and shared by all decoders
var registry = newRegistry()

func (r *Registry) Registered(channel uint8) bool {
	_, ok := r.handlers[channel]
	return ok
}

// Channels returns registered channel ids in ascending order
func (r *Registry) Channels() []uint8 {
	ids := make([]uint8, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) Decode(channel uint8, payload []byte, c *channelContext) error {
	h, ok := r.handlers[channel]
	if !ok {
		return ErrUnknownChannel{Channel: channel}
	}
	if len(payload) != 8 {
		return ErrShortPayload{Channel: channel, Len: len(payload)}
	}
	c.channel = channel
	return h(payload, c)
}

// Channels lists status channels the decoder understands
func Channels() []uint8 {
	return registry.Channels()
}

func u16(p []byte, i int) uint16 {
	return binary.LittleEndian.Uint16(p[i:])
}

func s16(p []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(p[i:]))
}

func u32(p []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(p[i:])
}

func s32(p []byte, i int) int32 {
	return int32(binary.LittleEndian.Uint32(p[i:]))
}

func (c *channelContext) setFloat(name string, f float64, valid bool) {
	if valid {
		c.status.Set(name, Float(f))
	} else {
		c.status.Set(name, Invalid())
	}
}

func (c *channelContext) setUint(name string, u uint64, valid bool) {
	if valid {
		c.status.Set(name, Uint(u))
	} else {
		c.status.Set(name, Invalid())
	}
}

func (c *channelContext) setInt(name string, i int64, valid bool) {
	if valid {
		c.status.Set(name, Int(i))
	} else {
		c.status.Set(name, Invalid())
	}
}

func (c *channelContext) setBool(name string, b bool, valid bool) {
	if valid {
		c.status.Set(name, Bool(b))
	} else {
		c.status.Set(name, Invalid())
	}
}

// byteField sets a one byte field where 0xFF means not available
func (c *channelContext) byteField(name string, b byte) {
	c.setUint(name, uint64(b), b != 0xFF)
}

// counter merges a wrapping counter of the given width into its logical value
func (c *channelContext) counter(name string, s uint64, bits uint) {
	v := mergeCounter(c.state.counters[name], s, bits)
	c.state.counters[name] = v
	c.status.Set(name, Uint(v))
}

// innovation decodes a Kalman filter innovation. Bit 0 is the validity flag,
// the rest is the signed value in units of 0.1.
func (c *channelContext) innovation(name string, b byte) {
	filt := name + "Filt"
	if b&0x01 == 0 {
		c.status.Set(name, Invalid())
		c.status.Set(filt, Invalid())
		return
	}
	inn := float64(int8(b)>>1) * innFactor
	c.status.Set(name, Float(inn))

	inn = math.Abs(inn)
	prev, ok := c.status.Float(filt)
	switch {
	case !ok, inn > prev:
		c.status.Set(filt, Float(inn))
	default:
		c.status.Set(filt, Float(0.9*prev+0.1*inn))
	}
}

// field16 describes a 16 bit scaled field of a payload
type field16 struct {
	name   string
	signed bool
	scale  float64
}

func (c *channelContext) fields16(p []byte, fs []field16, valid bool) {
	for i, f := range fs {
		var raw float64
		if f.signed {
			raw = float64(s16(p, 2*i))
		} else {
			raw = float64(u16(p, 2*i))
		}
		c.setFloat(f.name, raw*f.scale, valid)
	}
}

const (
	// maxAge is the largest age byte for which an estimate is still valid
	maxAge = 150
)

func xyz(prefix, suffix string, signed bool, scale float64) []field16 {
	return []field16{
		{prefix + "X" + suffix, signed, scale},
		{prefix + "Y" + suffix, signed, scale},
		{prefix + "Z" + suffix, signed, scale},
	}
}

func axes(names [3]string, signed bool, scale float64) []field16 {
	return []field16{
		{names[0], signed, scale},
		{names[1], signed, scale},
		{names[2], signed, scale},
	}
}

// estimated handles channels with three fields and an age byte at offset 6
func estimated(fs []field16) channelHandler {
	return func(p []byte, c *channelContext) error {
		c.fields16(p, fs, p[6] <= maxAge)
		return nil
	}
}

// configured handles channels with three fields valid only when byte 6 is zero
func configured(fs []field16) channelHandler {
	return func(p []byte, c *channelContext) error {
		c.fields16(p, fs, p[6] == 0)
		return nil
	}
}

// counters16 handles channels carrying four 16 bit wrapping counters
func counters16(names [4]string) channelHandler {
	return func(p []byte, c *channelContext) error {
		for i, name := range names {
			c.counter(name, uint64(u16(p, 2*i)), 16)
		}
		return nil
	}
}

// eventTiming handles trigger and camera event channels
func eventTiming(timeName, countName string) channelHandler {
	return func(p []byte, c *channelContext) error {
		m := s32(p, 0)
		t := float64(m)*60.0 + float64(u16(p, 4))*timeToSec + float64(p[6])*fineTimeToSec
		c.setFloat(timeName, t, m != 0)
		c.status.Set(countName, Uint(uint64(p[7])))
		return nil
	}
}

func newRegistry() *Registry {
	h := map[uint8]channelHandler{
		0:  decodeTime,
		1:  decodeInnovations1,
		2:  counters16([4]string{"GpsPrimaryChars", "GpsPrimaryPkts", "GpsPrimaryCharsSkipped", "GpsPrimaryOldPkts"}),
		3:  decodePositionAccuracy,
		4:  decodeVelocityAccuracy,
		5:  estimated(axes([3]string{"HeadingAcc", "PitchAcc", "RollAcc"}, false, angAccToRad*rad2deg)),
		6:  estimated(axes([3]string{"WxBias", "WyBias", "WzBias"}, true, gyroBiasToRps*rad2deg)),
		7:  estimated(axes([3]string{"AxBias", "AyBias", "AzBias"}, true, accBiasToMps2)),
		8:  estimated(axes([3]string{"WxSf", "WySf", "WzSf"}, true, gyroSfFactor)),
		9:  estimated(axes([3]string{"WxBiasAcc", "WyBiasAcc", "WzBiasAcc"}, false, gyroBiasAccRps*rad2deg)),
		10: estimated(axes([3]string{"AxBiasAcc", "AyBiasAcc", "AzBiasAcc"}, false, accBiasAccMps2)),
		11: estimated(axes([3]string{"WxSfAcc", "WySfAcc", "WzSfAcc"}, false, gyroSfAccFactor)),
		12: estimated(axes([3]string{"GAPx", "GAPy", "GAPz"}, true, gpsPosToM)),
		13: estimated([]field16{
			{"AtH", true, gpsAttToRad * rad2deg},
			{"AtP", true, gpsAttToRad * rad2deg},
			{"BaseLineLength", false, gpsPosToM},
		}),
		14: estimated(axes([3]string{"GAPxAcc", "GAPyAcc", "GAPzAcc"}, false, gpsPosAccToM)),
		15: estimated([]field16{
			{"AtHAcc", false, gpsAttAccToRad * rad2deg},
			{"AtPAcc", false, gpsAttAccToRad * rad2deg},
			{"BaseLineLengthAcc", false, gpsPosAccToM},
		}),
		16: decodeVehicleRotation,
		17: counters16([4]string{"GpsSecondaryChars", "GpsSecondaryPkts", "GpsSecondaryCharsSkipped", "GpsSecondaryOldPkts"}),
		18: decodeImuChars,
		19: decodeDevId,
		20: decodeDiffCorrections,
		21: decodeDisk,
		22: decodeLoopTiming,
		23: decodeUpTime,
		24: eventTiming("Trig1FallingTime", "Trig1FallingCount"),
		26: configured(xyz("RemoteLeverArm", "", true, outPosToM)),
		27: decodeHeadingSearch,
		28: decodeHeadingSearchInit,
		29: decodeOptions,
		30: decodeVersion,
		31: decodeHardware,
		32: decodeInnovations2,
		33: configured(xyz("ZeroVelLeverArm", "", true, zvPosToM)),
		34: configured(xyz("ZeroVelLeverArm", "Acc", false, zvPosAccToM)),
		35: configured(xyz("NoSlipLeverArm", "", true, nsPosToM)),
		36: configured(xyz("NoSlipLeverArm", "Acc", false, nsPosAccToM)),
		37: decodeMisalignment,
		38: decodeZeroVelOptions,
		39: decodeNoSlipOptions,
		41: decodeBaudRates,
		42: decodeHeadingLockOptions,
		43: eventTiming("Trig1RisingTime", "Trig1RisingCount"),
		44: decodeWheelSpeedConfig,
		45: decodeWheelSpeedCounts,
		46: configured(xyz("WSpeedLeverArm", "", true, wsPosToM)),
		47: configured(xyz("WSpeedLeverArm", "Acc", false, wsPosAccToM)),
		48: decodeDop,
		50: counters16([4]string{"CmdChars", "CmdPkts", "CmdCharsSkipped", "CmdErrors"}),
		51: configured(xyz("SlipPoint1", "", true, slipPointToM)),
		52: configured(xyz("SlipPoint2", "", true, slipPointToM)),
		53: configured(xyz("SlipPoint3", "", true, slipPointToM)),
		54: configured(xyz("SlipPoint4", "", true, slipPointToM)),
		55: receiverStatus("GpsPrimary"),
		56: receiverStatus("GpsSecondary"),
		57: decodeLeverArmExtended,
		58: estimated(axes([3]string{"OpHeading", "OpPitch", "OpRoll"}, true, gpsAttToRad*rad2deg)),
		59: decodeImuStatus,
		60: estimated(axes([3]string{"Ned2SurfHeading", "Ned2SurfPitch", "Ned2SurfRoll"}, true, gpsAttToRad*rad2deg)),
		61: counters16([4]string{"GpsExternalChars", "GpsExternalPkts", "GpsExternalCharsSkipped", "GpsExternalOldPkts"}),
		62: receiverStatus("GpsExternal"),
		64: decodeGnssConfig,
		65: eventTiming("Digital1OutTime", "Digital1OutCount"),
		66: decodeRefFrameLatLon,
		67: decodeRefFrameAltHeading,
		68: configured(xyz("SlipPoint5", "", true, slipPointToM)),
		69: configured(xyz("SlipPoint6", "", true, slipPointToM)),
		70: configured(xyz("SlipPoint7", "", true, slipPointToM)),
		71: configured(xyz("SlipPoint8", "", true, slipPointToM)),
		72: estimated(axes([3]string{"AxSf", "AySf", "AzSf"}, true, accSfFactor)),
		73: estimated(axes([3]string{"AxSfAcc", "AySfAcc", "AzSfAcc"}, false, accSfAccFactor)),
		79: eventTiming("Trig2FallingTime", "Trig2FallingCount"),
		80: eventTiming("Trig2RisingTime", "Trig2RisingCount"),
		81: eventTiming("Digital2OutTime", "Digital2OutCount"),
	}
	return &Registry{handlers: h}
}
