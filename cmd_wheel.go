package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelworks/geoenv/pkg/cliutil"
	"github.com/modelworks/geoenv/pkg/fsutil"
	"github.com/modelworks/geoenv/pkg/python/pep503"
	"github.com/modelworks/geoenv/pkg/python/pypa/bdist"
)

var argparserWheel = &cobra.Command{
	Use:   "wheel {[flags]|SUBCOMMAND...}",
	Short: "Work with Python wheel files",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,
}

func init() {
	argparser.AddCommand(argparserWheel)
}

func init() {
	var (
		indexServer string
		outputFile  string
	)
	cmd := &cobra.Command{
		Use:   "get [flags] NAME_VERSION_PLATFORM.whl",
		Short: "Download a wheel file from a package index",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),

		Long: "Given a wheel filename, download it from a package index, writing the file " +
			"contents to --output (or stdout).  This is how the pinned wheel set gets " +
			"fetched for an air-gapped install: run this once per pinned wheel where " +
			"there is network, then carry the wheel directory across." +
			"\n\n" +
			"LIMITATION: While checksums are verified, GPG signatures are not.",

		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()
			filename := args[0]
			filenameInfo, err := bdist.ParseFilename(filename)
			if err != nil {
				return err
			}
			client := pep503.Client{
				BaseURL: indexServer,
			}
			links, err := client.ListPackageFiles(ctx, filenameInfo.Distribution)
			if err != nil {
				return err
			}
			for _, link := range links {
				if link.Text == filename {
					content, err := link.Get(ctx)
					if err != nil {
						return err
					}
					if outputFile == "-" {
						_, err = os.Stdout.Write(content)
						return err
					}
					return fsutil.WriteFileAtomic(outputFile, content, 0o666)
				}
			}
			return fmt.Errorf("package index does not have wheel %q", filename)
		},
	}
	cmd.Flags().StringVar(&indexServer, "index-server", pep503.PyPIBaseURL,
		"Index server to download the wheel from")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "-",
		"Write the wheel to `FILE` instead of stdout")

	argparserWheel.AddCommand(cmd)
}

func init() {
	cmd := &cobra.Command{
		Use:   "verify WHEELFILE...",
		Short: "Verify wheel files against their RECORD",
		Args:  cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		Long: "Check each wheel file's format version, and verify every member against " +
			"the digests in its RECORD.  All problems in a wheel are reported, not " +
			"just the first one.",
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()
			for _, filename := range args {
				if err := verifyWheel(ctx, filename); err != nil {
					return fmt.Errorf("%s: %w", filename, err)
				}
				fmt.Printf("%s: OK\n", filename)
			}
			return nil
		},
	}

	argparserWheel.AddCommand(cmd)
}
