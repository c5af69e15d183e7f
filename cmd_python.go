package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/modelworks/geoenv/pkg/cliutil"
	"github.com/modelworks/geoenv/pkg/python/pyinspect"
)

var argparserPython = &cobra.Command{
	Use:   "python {[flags]|SUBCOMMAND...}",
	Short: "Work with Python interpreters",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,
}

func init() {
	argparser.AddCommand(argparserPython)
}

func init() {
	var flagInterpreter string
	cmd := &cobra.Command{
		Use:   "inspect [flags] >PYTHON_FACTS.yml",
		Short: "Dump information about a Python interpreter",
		Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		Long: "Ask an interpreter about itself, and dump the answers: where it lives, its " +
			"version, its install scheme directories, and the binary-distribution " +
			"compatibility tags it supports, most-preferred first.",
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			interp, err := pyinspect.Inspect(ctx, flagInterpreter)
			if err != nil {
				return err
			}

			var out struct {
				Executable string            `yaml:"executable"`
				Windows    bool              `yaml:"windows"`
				Version    string            `yaml:"version"`
				Scheme     map[string]string `yaml:"scheme"`
				Tags       []string          `yaml:"tags"`
			}
			out.Executable = interp.Exe
			out.Windows = interp.Windows
			ver, err := interp.VersionInfo.PEP440()
			if err != nil {
				return err
			}
			out.Version = ver.String()
			out.Scheme = map[string]string{
				"purelib": interp.Scheme.PureLib,
				"platlib": interp.Scheme.PlatLib,
				"headers": interp.Scheme.Headers,
				"scripts": interp.Scheme.Scripts,
				"data":    interp.Scheme.Data,
			}
			for _, tag := range interp.Tags {
				out.Tags = append(out.Tags, tag.String())
			}

			bs, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(bs); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagInterpreter, "interpreter", "python3",
		"The Python interpreter to inspect")

	argparserPython.AddCommand(cmd)
}

func init() {
	var flagInterpreter string
	cmd := &cobra.Command{
		Use:   "smoketest [flags] MODULE...",
		Short: "Verify that modules are importable",
		Args:  cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()
			for _, module := range args {
				if err := pyinspect.CheckImport(ctx, flagInterpreter, module); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagInterpreter, "interpreter", "python3",
		"The Python interpreter to import the modules with")

	argparserPython.AddCommand(cmd)
}
