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
	"errors"
	"fmt"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-ncom/pkg/config"
	"jinr.ru/greenlab/go-ncom/pkg/ncom"
	"jinr.ru/greenlab/go-ncom/pkg/srv/receiver"
)

// ApiClient queries the API of a running receiver
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	host := cfg.IP
	if host == "" || host == config.DefaultIP {
		host = "127.0.0.1"
	}
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d/api", host, cfg.ApiPort),
	}
}

func (c *ApiClient) deviceUrl(device, view string) string {
	if view == "" {
		return fmt.Sprintf("%s/devices/%s", c.ApiPrefix, device)
	}
	return fmt.Sprintf("%s/devices/%s/%s", c.ApiPrefix, device, view)
}

func (c *ApiClient) getJSON(url string, v interface{}) error {
	r, err := req.Get(url)
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	return r.ToJSON(v)
}

// ListDevices returns the devices the receiver has seen
func (c *ApiClient) ListDevices() ([]receiver.DeviceSummary, error) {
	var devices []receiver.DeviceSummary
	if err := c.getJSON(fmt.Sprintf("%s/devices", c.ApiPrefix), &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Device returns the full state of a device as raw JSON values
func (c *ApiClient) Device(device string) (map[string]interface{}, error) {
	snap := map[string]interface{}{}
	if err := c.getJSON(c.deviceUrl(device, ""), &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Nav returns the navigation fields of a device, nil for invalid ones
func (c *ApiClient) Nav(device string) (map[string]interface{}, error) {
	return c.fields(device, "nav")
}

// Status returns the status fields of a device, nil for invalid ones
func (c *ApiClient) Status(device string) (map[string]interface{}, error) {
	return c.fields(device, "status")
}

func (c *ApiClient) fields(device, view string) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if err := c.getJSON(c.deviceUrl(device, view), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Connection returns the connection statistics of a device
func (c *ApiClient) Connection(device string) (*ConnectionStats, error) {
	cs := &ConnectionStats{}
	if err := c.getJSON(c.deviceUrl(device, "connection"), cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// Registry returns the devices stored in the device registry
func (c *ApiClient) Registry() ([]*receiver.DeviceDescription, error) {
	var devices []*receiver.DeviceDescription
	if err := c.getJSON(fmt.Sprintf("%s/registry", c.ApiPrefix), &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// ConnectionStats is the client side form of ncom.ConnectionStats.
// The time offset is a pointer because the API sends null while it is unknown.
type ConnectionStats struct {
	ncom.ConnectionStats
	TimeOffset *float64 `json:"timeOffset"`
}
