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
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-ncom/pkg/log"
)

const (
	BucketPrefix         = "device_"
	DeviceDescriptionKey = "device_description"
	// DefaultPersistPeriod is how often the registry writer stores snapshots
	DefaultPersistPeriod = 5 * time.Second
)

// DeviceDescription is what the registry remembers about a device between runs
type DeviceDescription struct {
	Address      string    `json:"address"`
	Port         int       `json:"port"`
	FirstSeen    time.Time `json:"firstSeen"`
	LastSeen     time.Time `json:"lastSeen"`
	Packets      uint64    `json:"packets"`
	DevId        string    `json:"devId,omitempty"`
	SerialNumber uint64    `json:"serialNumber,omitempty"`
}

func NewDeviceDescription(snap Snapshot) *DeviceDescription {
	dd := &DeviceDescription{
		Address:   snap.Address,
		Port:      snap.Port,
		FirstSeen: snap.FirstSeen,
		LastSeen:  snap.LastSeen,
		Packets:   snap.Connection.NumPackets,
	}
	if devId, ok := snap.Status.Get("DevId").Text(); ok {
		dd.DevId = devId
	}
	if serial, ok := snap.Status.Get("SerialNumber").Uint(); ok {
		dd.SerialNumber = serial
	}
	return dd
}

func (dd *DeviceDescription) String() string {
	data, err := yaml.Marshal(dd)
	if err != nil {
		return fmt.Sprintf("---\nerror: %s\n", err)
	}
	return "---\n" + string(data)
}

// DeviceRegistry persists device descriptions in a bbolt database, one bucket per device
type DeviceRegistry struct {
	DB *bbolt.DB
}

func NewDeviceRegistry(path string) (*DeviceRegistry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open device registry %s: %w", path, err)
	}
	return &DeviceRegistry{DB: db}, nil
}

func (s *DeviceRegistry) Close() error {
	return s.DB.Close()
}

func BucketName(address string) string {
	return fmt.Sprintf("%s%s", BucketPrefix, address)
}

// SetDeviceDescription stores dd. The earliest known first seen time is kept.
func (s *DeviceRegistry) SetDeviceDescription(dd *DeviceDescription) error {
	log.Debug("Setting device description: device: %s", dd.Address)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketName(dd.Address)))
		if err != nil {
			return err
		}
		stored := *dd
		if prevBytes := b.Get([]byte(DeviceDescriptionKey)); prevBytes != nil {
			prev := &DeviceDescription{}
			if err := yaml.Unmarshal(prevBytes, prev); err == nil &&
				!prev.FirstSeen.IsZero() && prev.FirstSeen.Before(stored.FirstSeen) {
				stored.FirstSeen = prev.FirstSeen
			}
		}
		ddBytes, err := yaml.Marshal(&stored)
		if err != nil {
			return err
		}
		return b.Put([]byte(DeviceDescriptionKey), ddBytes)
	})
}

func (s *DeviceRegistry) GetDeviceDescription(address string) (*DeviceDescription, error) {
	log.Debug("Getting device description: device: %s", address)
	dd := &DeviceDescription{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(address)))
		if b == nil {
			return ErrDeviceNotFound{Address: address}
		}
		ddBytes := b.Get([]byte(DeviceDescriptionKey))
		if ddBytes == nil {
			return ErrDeviceNotFound{Address: address}
		}
		return yaml.Unmarshal(ddBytes, dd)
	}); err != nil {
		return nil, err
	}
	return dd, nil
}

// GetAllDeviceDescriptions returns every stored description ordered by address
func (s *DeviceRegistry) GetAllDeviceDescriptions() ([]*DeviceDescription, error) {
	log.Debug("Getting all device descriptions")
	devices := []*DeviceDescription{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(_ []byte, b *bbolt.Bucket) error {
			ddBytes := b.Get([]byte(DeviceDescriptionKey))
			if ddBytes == nil {
				return nil
			}
			dd := &DeviceDescription{}
			if err := yaml.Unmarshal(ddBytes, dd); err != nil {
				log.Error("Error while unmarshalling DeviceDescription %s", err)
				return err
			}
			devices = append(devices, dd)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Address < devices[j].Address
	})
	return devices, nil
}

// Store writes the description of every session of r
func (s *DeviceRegistry) Store(r *Receiver) error {
	for _, snap := range r.Snapshots() {
		if err := s.SetDeviceDescription(NewDeviceDescription(snap)); err != nil {
			return err
		}
	}
	return nil
}

// Run stores the sessions of r every period until ctx is cancelled,
// then stores them one last time.
func (s *DeviceRegistry) Run(ctx context.Context, r *Receiver, period time.Duration) error {
	if period <= 0 {
		period = DefaultPersistPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return s.Store(r)
		case <-ticker.C:
			if err := s.Store(r); err != nil {
				log.Error("Error while storing device descriptions: %s", err)
			}
		}
	}
}
