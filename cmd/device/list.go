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

package device

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-ncom/pkg/command"
	"jinr.ru/greenlab/go-ncom/pkg/config"
)

// OfflineAfter marks a device offline when nothing was received from it for longer
const OfflineAfter = 3 * time.Second

func NewListCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices seen by the receiver",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			devices, err := apiClient.ListDevices()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, device := range devices {
				state := "online"
				if time.Since(device.LastSeen) > OfflineAfter {
					state = "offline"
				}
				fmt.Fprintf(out, "%-15s %-7s port: %d packets: %d id: %s last seen: %s\n",
					device.Address, state, device.Port, device.NumPackets, device.DevId,
					device.LastSeen.Format(time.RFC3339))
			}
			return nil
		},
	}
	return cmd
}

func NewRegistryCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "List devices stored in the device registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			devices, err := apiClient.Registry()
			if err != nil {
				return err
			}
			for _, device := range devices {
				fmt.Fprint(cmd.OutOrStdout(), device.String())
			}
			return nil
		},
	}
	return cmd
}
