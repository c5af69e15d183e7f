package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/modelworks/geoenv/pkg/cliutil"
	"github.com/modelworks/geoenv/pkg/kernelspec"
)

var argparserKernel = &cobra.Command{
	Use:   "kernel {[flags]|SUBCOMMAND...}",
	Short: "Work with Jupyter kernel registrations",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,
}

func init() {
	argparser.AddCommand(argparserKernel)
}

// envPython returns the path of an environment's own interpreter without asking the environment.
func envPython(envDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(envDir, "Scripts", "python.exe")
	}
	return filepath.Join(envDir, "bin", "python")
}

func init() {
	var flags struct {
		Name        string
		DisplayName string
	}
	cmd := &cobra.Command{
		Use:   "register [flags] ENV_DIR",
		Short: "Register an environment's notebook kernel",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		Long: "Install the environment's IPython kernel under the environment's own " +
			"prefix, so notebook servers pointed at the environment can discover it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			envDir := args[0]

			name := flags.Name
			if name == "" {
				name = filepath.Base(envDir)
			}
			displayName := flags.DisplayName
			if displayName == "" {
				displayName = name
			}

			spec, err := kernelspec.Register(ctx, envPython(envDir), envDir, name, displayName)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", name, spec.DisplayName)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Name, "name", "",
		"Register the kernel as `NAME` instead of the environment directory's name")
	cmd.Flags().StringVar(&flags.DisplayName, "display-name", "",
		"Show the kernel as `DISPLAY_NAME` in notebook UIs")

	argparserKernel.AddCommand(cmd)
}

func init() {
	cmd := &cobra.Command{
		Use:   "list ENV_DIR",
		Short: "List an environment's registered kernels",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			envDir := args[0]
			names, err := kernelspec.List(envDir)
			if err != nil {
				return err
			}
			for _, name := range names {
				spec, err := kernelspec.Lookup(envDir, name)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s\n", name, spec.DisplayName)
			}
			return nil
		},
	}

	argparserKernel.AddCommand(cmd)
}
