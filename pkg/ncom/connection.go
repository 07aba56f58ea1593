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

// ConnectionStats describes how well the stream of one device is decoded
type ConnectionStats struct {
	Address           string `json:"address"`
	NumChars          uint64 `json:"numChars"`
	SkippedChars      uint64 `json:"skippedChars"`
	NumPackets        uint64 `json:"numPackets"`
	UnprocessedBytes  int    `json:"unprocessedBytes"`
	BytesReceived     uint64 `json:"bytesReceived"`
	Datagrams         uint64 `json:"datagrams"`
	RepeatedDatagrams uint64 `json:"repeatedDatagrams"`
	// DecodeStatusErrors counts failed status channel decodes per channel id
	DecodeStatusErrors map[uint8]uint64 `json:"decodeStatusErrors"`
	// TimeOffset is device time minus local time in seconds
	TimeOffset Value `json:"timeOffset"`
}

func (cs ConnectionStats) Clone() ConnectionStats {
	out := cs
	out.DecodeStatusErrors = make(map[uint8]uint64, len(cs.DecodeStatusErrors))
	for k, v := range cs.DecodeStatusErrors {
		out.DecodeStatusErrors[k] = v
	}
	return out
}

// Errors is the total number of failed status channel decodes
func (cs ConnectionStats) Errors() uint64 {
	var n uint64
	for _, v := range cs.DecodeStatusErrors {
		n += v
	}
	return n
}
