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

package command

import (
	"context"
	"net"
	"sync"

	"jinr.ru/greenlab/go-ncom/pkg/config"
	"jinr.ru/greenlab/go-ncom/pkg/log"
	"jinr.ru/greenlab/go-ncom/pkg/srv/receiver"
)

// StartReceiver runs the NCOM receiver, its API server and the device registry
// writer until ctx is cancelled or one of them fails. A non empty capturePath
// records the received datagrams to a pcap file.
func StartReceiver(ctx context.Context, cfg *config.Config, capturePath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := receiver.NewReceiver(cfg)
	if err := r.Listen(ctx); err != nil {
		return err
	}
	defer r.Close()

	if capturePath != "" {
		local, _ := r.LocalAddr().(*net.UDPAddr)
		capture, err := receiver.NewCapture(capturePath, local)
		if err != nil {
			return err
		}
		defer capture.Close()
		r.SetCapture(capture)
		log.Info("Capturing datagrams to %s", capturePath)
	}

	var registry *receiver.DeviceRegistry
	if cfg.DBPath != "" {
		var err error
		registry, err = receiver.NewDeviceRegistry(cfg.DBPath)
		if err != nil {
			return err
		}
		defer registry.Close()
	}

	api, err := receiver.NewApiServer(cfg, r, registry)
	if err != nil {
		return err
	}

	errChan := make(chan error, 3)
	var wg sync.WaitGroup
	run := func(name string, f func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(ctx); err != nil {
				log.Error("%s stopped: %s", name, err)
				errChan <- err
			}
		}()
	}

	run("Receiver", r.Serve)
	run("API server", api.Run)
	if registry != nil {
		run("Device registry", func(ctx context.Context) error {
			return registry.Run(ctx, r, receiver.DefaultPersistPeriod)
		})
	}

	select {
	case <-ctx.Done():
		err = nil
	case err = <-errChan:
	}
	cancel()
	wg.Wait()
	return err
}

// ReplayCapture decodes a pcap file recorded by StartReceiver without opening sockets
func ReplayCapture(ctx context.Context, cfg *config.Config, path string) ([]receiver.Snapshot, error) {
	r := receiver.NewReceiver(cfg)
	n, err := r.Replay(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Info("Replayed %d datagrams from %s", n, path)
	return r.Snapshots(), nil
}
