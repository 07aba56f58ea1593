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

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-ncom/pkg/command"
	"jinr.ru/greenlab/go-ncom/pkg/config"
)

const (
	FullOptionName = "full"
)

func NewReplayCommand() *cobra.Command {
	var full bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "replay <file.pcap>",
		Short: "Decode a pcap file recorded with receiver start --capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			snapshots, err := command.ReplayCapture(ctx, cfg, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, snap := range snapshots {
				var v interface{}
				if full {
					v = snap
				} else {
					v = struct {
						Device     interface{} `json:"device"`
						Connection interface{} `json:"connection"`
					}{snap.Summary(), snap.Connection}
				}
				data, err := yaml.Marshal(v)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "---\n%s", data)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, FullOptionName, false, "Print nav and status fields of every device too")
	return cmd
}
