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

package srv

import (
	"context"
	"net"
	"time"

	"github.com/google/gopacket"
)

// MaxDatagramSize is big enough for any UDP payload
const MaxDatagramSize = 65535

type InPacket struct {
	Data []byte
	gopacket.CaptureInfo
}

// NewInPacket copies data and records the sender in the capture info
func NewInPacket(data []byte, addr *net.UDPAddr, ts time.Time) InPacket {
	packet := InPacket{
		Data: make([]byte, len(data)),
		CaptureInfo: gopacket.CaptureInfo{
			Timestamp:     ts,
			Length:        len(data),
			CaptureLength: len(data),
			AncillaryData: []interface{}{addr},
		},
	}
	copy(packet.Data, data)
	return packet
}

// GetAddrPort returns the UDPAddr of the device that sent the packet
func GetAddrPort(ci gopacket.CaptureInfo) (*net.UDPAddr, error) {
	if len(ci.AncillaryData) >= 1 {
		udpAddr, ok := ci.AncillaryData[0].(*net.UDPAddr)
		if !ok || udpAddr == nil {
			return nil, ErrGetAddr{}
		}
		return udpAddr, nil
	}
	return nil, ErrGetAddr{}
}

// ListenUDP binds a UDP socket which may share its port with other listeners
func ListenUDP(ctx context.Context, address string) (*net.UDPConn, error) {
	lc := listenConfig()
	conn, err := lc.ListenPacket(ctx, "udp", address)
	if err != nil {
		return nil, err
	}
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		conn.Close()
		return nil, ErrNotUDP{Address: address}
	}
	return udpConn, nil
}

// IsTimeout reports whether err is a network deadline expiry
func IsTimeout(err error) bool {
	netErr, ok := err.(net.Error)
	return ok && netErr.Timeout()
}
