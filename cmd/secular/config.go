package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/secular/internal/config"
)

func newConfigCmd() *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "config [preset]",
		Short: "print or save a preset configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "default"
			if len(args) == 1 {
				name = args[0]
			}
			cfg := config.GetPreset(name)
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
			}
			if save != "" {
				if err := config.Save(save, cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s preset to %s\n", name, save)
				return nil
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# preset: %s (available: %v)\n%s", name, config.ListPresets(), data)
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "write the preset to this path instead of printing it")
	return cmd
}
