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

package config

import (
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the receiver configuration. It is stored as YAML in the user home directory.
type Config struct {
	// IP is the address the NCOM socket and the API server are bound to
	IP      string `yaml:"ip"`
	Port    int    `yaml:"port"`
	ApiPort int    `yaml:"api_port"`

	// RecvTimeout bounds how long the receive loop waits before it rechecks for shutdown
	RecvTimeout time.Duration `yaml:"recv_timeout"`
	// DedupCapacity is the number of datagram checksums remembered per device
	DedupCapacity int `yaml:"dedup_capacity"`
	// SessionExpiry drops devices silent for longer than this. Zero keeps them forever.
	SessionExpiry time.Duration `yaml:"session_expiry"`

	// DBPath is the device registry database. Empty disables the registry.
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"`

	filepath string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = ioutil.WriteFile(c.filepath, data, 0644)
	if err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the config file and fails if it does not exist
func (c *Config) LoadConfig() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	return c.Validate()
}

// Load is LoadConfig which keeps the defaults when there is no config file yet
func (c *Config) Load() error {
	if _, err := os.Stat(c.filepath); os.IsNotExist(err) {
		return nil
	}
	return c.LoadConfig()
}

func (c *Config) Validate() error {
	if c.IP != "" && net.ParseIP(c.IP) == nil {
		return ErrInvalidValue{Name: "ip", Value: c.IP}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidValue{Name: "port", Value: c.Port}
	}
	if c.ApiPort <= 0 || c.ApiPort > 65535 {
		return ErrInvalidValue{Name: "api_port", Value: c.ApiPort}
	}
	if c.RecvTimeout <= 0 {
		return ErrInvalidValue{Name: "recv_timeout", Value: c.RecvTimeout}
	}
	if c.DedupCapacity <= 0 {
		return ErrInvalidValue{Name: "dedup_capacity", Value: c.DedupCapacity}
	}
	if c.SessionExpiry < 0 {
		return ErrInvalidValue{Name: "session_expiry", Value: c.SessionExpiry}
	}
	return nil
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		IP:            DefaultIP,
		Port:          DefaultPort,
		ApiPort:       DefaultApiPort,
		RecvTimeout:   DefaultRecvTimeout,
		DedupCapacity: DefaultDedupCapacity,
		SessionExpiry: 0,
		DBPath:        DefaultDBPath(),
		LogLevel:      DefaultLogLevel,
		filepath:      DefaultConfigPath(),
	}
}
