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

func decodeImuChars(p []byte, c *channelContext) error {
	c.counter("ImuChars", uint64(u32(p, 0)), 32)
	c.counter("ImuPkts", uint64(u16(p, 4)), 16)
	c.counter("ImuSkipped", uint64(u16(p, 6)), 16)
	return nil
}

func decodeImuStatus(p []byte, c *channelContext) error {
	c.counter("ImuMissedPkts", uint64(u16(p, 0)), 16)
	c.counter("ImuResetCount", uint64(p[2]), 8)
	c.counter("ImuErrorCount", uint64(p[3]), 8)
	return nil
}
