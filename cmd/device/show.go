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
	"io"
	"sort"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-ncom/pkg/command"
	"jinr.ru/greenlab/go-ncom/pkg/config"
)

var views = []string{"nav", "status", "connection"}

func NewShowCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:       "show <ip> [nav|status|connection]",
		Short:     "Show the decoded state of a device",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: views,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			device := args[0]
			view := ""
			if len(args) == 2 {
				view = args[1]
			}
			out := cmd.OutOrStdout()
			switch view {
			case "nav":
				fields, err := apiClient.Nav(device)
				if err != nil {
					return err
				}
				printFields(out, fields)
			case "status":
				fields, err := apiClient.Status(device)
				if err != nil {
					return err
				}
				printFields(out, fields)
			case "connection":
				cs, err := apiClient.Connection(device)
				if err != nil {
					return err
				}
				return printYaml(out, cs)
			case "":
				snap, err := apiClient.Device(device)
				if err != nil {
					return err
				}
				return printYaml(out, snap)
			default:
				return fmt.Errorf("unknown view %q, must be one of %v", view, views)
			}
			return nil
		},
	}
	return cmd
}

// printFields prints one field per line in name order, invalid fields as "-"
func printFields(out io.Writer, fields map[string]interface{}) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := fields[name]
		if v == nil {
			fmt.Fprintf(out, "%s: -\n", name)
			continue
		}
		fmt.Fprintf(out, "%s: %v\n", name, v)
	}
}

func printYaml(out io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "---\n%s", data)
	return nil
}
