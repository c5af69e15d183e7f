package main

import (
	"fmt"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/modelworks/geoenv/pkg/cliutil"
	"github.com/modelworks/geoenv/pkg/provision"
)

func init() {
	var (
		flagPython    string
		flagWheelDir  string
		flagSkipSmoke bool
	)
	cmd := &cobra.Command{
		Use:   "provision [flags] CONFIG_FILE",
		Short: "Build a geospatial Python environment",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		Long: "Create a virtual environment and install the pinned geospatial stack into " +
			"it, as described by the given YAML config file: the base interpreter, the " +
			"environment directory, path files, the ordered pinned wheel set, a " +
			"requirements manifest, the notebook kernel, and the modules to smoke-test." +
			"\n\n" +
			"The steps run in a fixed order and the first failure aborts the whole run; " +
			"a partially provisioned environment directory is left behind for " +
			"post-mortem inspection, and is safe to delete.",
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			cfg, err := provision.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if flagPython != "" {
				cfg.BaseInterpreter = flagPython
			}
			if flagWheelDir != "" {
				cfg.WheelDir = flagWheelDir
			}
			if flagSkipSmoke {
				cfg.SmokeTestImports = nil
			}

			pipeline, err := provision.NewPipeline(cfg)
			if err != nil {
				return err
			}
			if err := pipeline.Run(ctx); err != nil {
				return fmt.Errorf("in state %q: %w", pipeline.State(), err)
			}
			dlog.Infof(ctx, "environment ready: %s", cfg.EnvDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagPython, "python", "p", "",
		"Use `INTERPRETER` as the base interpreter instead of the one named in the config file")
	cmd.Flags().StringVar(&flagWheelDir, "wheels-dir", "",
		"Look for pinned wheels in `DIR` instead of the directory named in the config file")
	cmd.Flags().BoolVar(&flagSkipSmoke, "skip-smoke-test", false,
		"Do not run the final import checks")

	argparser.AddCommand(cmd)
}
