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
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"jinr.ru/greenlab/go-ncom/pkg/config"
	"jinr.ru/greenlab/go-ncom/pkg/log"
	"jinr.ru/greenlab/go-ncom/pkg/srv"
)

// pruneInterval is how often silent sessions are checked for expiry
const pruneInterval = time.Second

// Receiver listens on one UDP port and keeps a decode session per sending device
type Receiver struct {
	*config.Config

	conn    *net.UDPConn
	capture *Capture

	mu       sync.RWMutex
	sessions map[string]*Session

	lastPrune time.Time
}

// NewReceiver does no I/O, Listen binds the socket
func NewReceiver(cfg *config.Config) *Receiver {
	return &Receiver{
		Config:   cfg,
		sessions: map[string]*Session{},
	}
}

func (r *Receiver) address() string {
	return fmt.Sprintf("%s:%d", r.Config.IP, r.Config.Port)
}

func (r *Receiver) Listen(ctx context.Context) error {
	log.Info("Starting NCOM receiver: address: %s", r.address())
	conn, err := srv.ListenUDP(ctx, r.address())
	if err != nil {
		return err
	}
	r.conn = conn
	return nil
}

// LocalAddr is the bound socket address, nil before Listen
func (r *Receiver) LocalAddr() net.Addr {
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// Close releases the socket. Serve also closes it when it returns.
func (r *Receiver) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// Serve reads datagrams until ctx is cancelled or the socket fails.
// Cancellation is noticed within one receive timeout. The socket is closed on return.
func (r *Receiver) Serve(ctx context.Context) error {
	if r.conn == nil {
		return ErrNotListening{}
	}
	defer r.conn.Close()

	timeout := r.Config.RecvTimeout
	if timeout <= 0 {
		timeout = config.DefaultRecvTimeout
	}
	buffer := make([]byte, srv.MaxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping NCOM receiver: address: %s", r.address())
			return nil
		default:
		}

		if err := r.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
		length, addr, err := r.conn.ReadFromUDP(buffer)
		local := time.Now()
		if err != nil {
			if srv.IsTimeout(err) {
				r.maybePrune(local)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Error while reading from socket: %s", err)
			return err
		}

		if _, err := r.HandlePacket(srv.NewInPacket(buffer[:length], addr, local)); err != nil {
			log.Warning("Error while handling packet: %s", err)
		}
		r.maybePrune(local)
	}
}

// Run binds the socket and serves it until ctx is cancelled
func (r *Receiver) Run(ctx context.Context) error {
	if err := r.Listen(ctx); err != nil {
		return err
	}
	return r.Serve(ctx)
}

// HandlePacket routes a datagram to the session of its sender, creating the
// session on first contact. It returns the number of frames decoded.
func (r *Receiver) HandlePacket(packet srv.InPacket) (int, error) {
	udpAddr, err := srv.GetAddrPort(packet.CaptureInfo)
	if err != nil {
		return 0, err
	}
	session := r.session(udpAddr, packet.Timestamp)
	n, repeated := session.Handle(packet.Data, udpAddr.Port, packet.Timestamp)
	log.Debug("Handled datagram: device: %s length: %d frames: %d repeated: %t",
		session.Address(), len(packet.Data), n, repeated)
	if r.capture != nil && !repeated {
		if err := r.capture.Write(packet); err != nil {
			return n, err
		}
	}
	return n, nil
}

// SetCapture records every datagram that is not a repeat to c. Call it before Serve.
func (r *Receiver) SetCapture(c *Capture) {
	r.capture = c
}

func (r *Receiver) session(udpAddr *net.UDPAddr, now time.Time) *Session {
	key := udpAddr.IP.String()

	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s = NewSession(key, udpAddr.Port, r.Config.DedupCapacity, now)
	r.sessions[key] = s
	log.Info("New device: %s", key)
	return s
}

// Devices returns the addresses of all known devices in sorted order
func (r *Receiver) Devices() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	devices := make([]string, 0, len(r.sessions))
	for address := range r.sessions {
		devices = append(devices, address)
	}
	sort.Strings(devices)
	return devices
}

func (r *Receiver) Session(address string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[address]
	return s, ok
}

// Snapshots returns a snapshot of every session ordered by address
func (r *Receiver) Snapshots() []Snapshot {
	var snapshots []Snapshot
	for _, address := range r.Devices() {
		if s, ok := r.Session(address); ok {
			snapshots = append(snapshots, s.Snapshot())
		}
	}
	return snapshots
}

// Prune drops the sessions that have been silent for longer than expiry
// and returns their addresses. A non positive expiry keeps every session.
func (r *Receiver) Prune(now time.Time, expiry time.Duration) []string {
	if expiry <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for address, s := range r.sessions {
		if now.Sub(s.LastSeen()) > expiry {
			delete(r.sessions, address)
			removed = append(removed, address)
			log.Info("Device expired: %s", address)
		}
	}
	sort.Strings(removed)
	return removed
}

func (r *Receiver) maybePrune(now time.Time) {
	if r.Config.SessionExpiry <= 0 || now.Sub(r.lastPrune) < pruneInterval {
		return
	}
	r.lastPrune = now
	r.Prune(now, r.Config.SessionExpiry)
}
