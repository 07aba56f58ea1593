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
	"context"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"jinr.ru/greenlab/go-ncom/pkg/log"
	"jinr.ru/greenlab/go-ncom/pkg/srv"
)

// CaptureSnapLen covers a maximum size datagram with its IPv4 and UDP headers
const CaptureSnapLen = srv.MaxDatagramSize + 28

// Capture records received datagrams to a pcap file as raw IPv4/UDP packets
// so a session can be replayed later or opened in packet analyzers.
type Capture struct {
	file  *os.File
	w     *pcapgo.Writer
	dstIP net.IP
	dst   layers.UDPPort
}

// NewCapture creates the pcap file at path. local is the receiver address
// written as the destination of every packet.
func NewCapture(path string, local *net.UDPAddr) (*Capture, error) {
	file, err := os.Create(path)
	if err != nil {
		log.Error("Error while creating file: %s", path)
		return nil, err
	}
	w := pcapgo.NewWriter(file)
	if err := w.WriteFileHeader(CaptureSnapLen, layers.LinkTypeRaw); err != nil {
		file.Close()
		return nil, err
	}
	c := &Capture{file: file, w: w, dstIP: net.IPv4zero}
	if local != nil {
		if ip4 := local.IP.To4(); ip4 != nil {
			c.dstIP = ip4
		}
		c.dst = layers.UDPPort(local.Port)
	}
	return c, nil
}

func (c *Capture) Write(packet srv.InPacket) error {
	src, err := srv.GetAddrPort(packet.CaptureInfo)
	if err != nil {
		return err
	}
	srcIP := src.IP.To4()
	if srcIP == nil {
		log.Debug("Not capturing datagram from non IPv4 source: %s", src)
		return nil
	}

	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    srcIP,
		DstIP:    c.dstIP,
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(src.Port),
		DstPort: c.dst,
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return err
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, udp, gopacket.Payload(packet.Data)); err != nil {
		return err
	}
	data := buf.Bytes()
	ci := gopacket.CaptureInfo{
		Timestamp:     packet.Timestamp,
		Length:        len(data),
		CaptureLength: len(data),
	}
	return c.w.WritePacket(ci, data)
}

func (c *Capture) Close() error {
	return c.file.Close()
}

// Replay feeds the UDP datagrams of a pcap file to r with their capture
// timestamps and returns the number of datagrams handled.
func (r *Receiver) Replay(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader, err := pcapgo.NewReader(file)
	if err != nil {
		return 0, err
	}
	source := gopacket.NewPacketSource(reader, reader.LinkType())
	source.NoCopy = true

	count := 0
	for packet := range source.Packets() {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if !ok {
			continue
		}
		var srcIP net.IP
		switch network := packet.NetworkLayer().(type) {
		case *layers.IPv4:
			srcIP = network.SrcIP
		case *layers.IPv6:
			srcIP = network.SrcIP
		default:
			continue
		}
		addr := &net.UDPAddr{IP: srcIP, Port: int(udp.SrcPort)}
		if _, err := r.HandlePacket(srv.NewInPacket(udp.Payload, addr, packet.Metadata().Timestamp)); err != nil {
			log.Warning("Error while replaying packet: %s", err)
			continue
		}
		count++
	}
	return count, nil
}
