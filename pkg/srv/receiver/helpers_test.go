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

package receiver

import (
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-ncom/pkg/config"
	"jinr.ru/greenlab/go-ncom/pkg/layers"
	"jinr.ru/greenlab/go-ncom/pkg/srv"
)

// devIdFrame is a frame with only the status batch valid carrying the device id
func devIdFrame(t *testing.T, id string) []byte {
	t.Helper()
	l := &layers.NcomLayer{NavStatus: 10, Channel: 19}
	copy(l.Status[:], id)
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{ComputeChecksums: true}, l); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return append([]byte(nil), buf.Bytes()...)
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.IP = "127.0.0.1"
	cfg.Port = 0
	cfg.RecvTimeout = 50 * time.Millisecond
	cfg.DBPath = ""
	return cfg
}

func packetFrom(data []byte, ip string, port int, ts time.Time) srv.InPacket {
	return srv.NewInPacket(data, &net.UDPAddr{IP: net.ParseIP(ip), Port: port}, ts)
}
