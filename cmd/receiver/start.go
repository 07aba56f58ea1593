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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-ncom/pkg/command"
	"jinr.ru/greenlab/go-ncom/pkg/config"
)

const (
	IPOptionName            = "ip"
	PortOptionName          = "port"
	ApiPortOptionName       = "api-port"
	DBPathOptionName        = "db-path"
	NoRegistryOptionName    = "no-registry"
	SessionExpiryOptionName = "session-expiry"
	CaptureOptionName       = "capture"
)

func NewStartCommand() *cobra.Command {
	var ip string
	var port, apiPort int
	var dbPath string
	var noRegistry bool
	var capturePath string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the NCOM receiver and its API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ip != "" {
				cfg.IP = ip
			}
			if port != 0 {
				cfg.Port = port
			}
			if apiPort != 0 {
				cfg.ApiPort = apiPort
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if noRegistry {
				cfg.DBPath = ""
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return command.StartReceiver(ctx, cfg, capturePath)
		},
	}
	cmd.Flags().StringVar(&ip, IPOptionName, "", fmt.Sprintf("IP to bind. E.g. %s", config.DefaultIP))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("UDP port to receive NCOM on. E.g. %d", config.DefaultPort))
	cmd.Flags().IntVar(&apiPort, ApiPortOptionName, 0, fmt.Sprintf("API server port. E.g. %d", config.DefaultApiPort))
	cmd.Flags().StringVar(&dbPath, DBPathOptionName, "", "Device registry database path")
	cmd.Flags().BoolVar(&noRegistry, NoRegistryOptionName, false, "Do not persist device descriptions")
	cmd.Flags().StringVar(&capturePath, CaptureOptionName, "", "Record received datagrams to this pcap file")
	cmd.Flags().DurationVar(&cfg.SessionExpiry, SessionExpiryOptionName, cfg.SessionExpiry, "Forget devices silent for longer than this, 0 keeps them")

	return cmd
}
