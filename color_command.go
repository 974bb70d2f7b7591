package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"handwrite/handwriteapi"
	"handwrite/params"
)

func newColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "color <hex|name>",
		Short:       "Decode a color and show its normalized and wire forms",
		Long:        "Accepts #rgb, #rgba, #rrggbb, #rrggbbaa or one of: " + strings.Join(params.ColorNames(), ", ") + ".",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := params.ParseColor(args[0])
			if err != nil {
				return err
			}
			wire, err := json.Marshal(handwriteapi.NewWireColor(c))
			if err != nil {
				return err
			}
			rows := [][]string{
				{"hex", params.EncodeHex(c)},
				{"rgba", fmt.Sprintf("%d, %d, %d, %s", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', 4, 64))},
				{"wire", string(wire)},
			}
			writeTable(cmd.OutOrStdout(), []string{"FORM", "VALUE"}, rows, nil)
			return nil
		},
	}
}
