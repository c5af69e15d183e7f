// Copyright (C) 2026  ModelWorks
//
// SPDX-License-Identifier: Apache-2.0

package cliutil_test

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/modelworks/geoenv/pkg/cliutil"
)

//nolint:paralleltest // can't use .Parallel() with .Setenv()
func TestHelpTemplate(t *testing.T) {
	t.Setenv("COLUMNS", "80")
	noopRunE := func(_ *cobra.Command, _ []string) error {
		return nil
	}
	type testcase struct {
		InputCmd     *cobra.Command
		ExpectedHelp string
	}
	testcases := map[string]testcase{
		"basic": {
			InputCmd: func() *cobra.Command {
				cmd := &cobra.Command{
					Use:   "provision [flags] CONFIG_FILE",
					Args:  cobra.ExactArgs(1),
					Short: "Build a geospatial Python environment",
					Long: "Create a virtual environment and install the pinned " +
						"geospatial stack into it.  The steps run in a fixed " +
						"order and the first failure aborts the whole run.",
					RunE: noopRunE,
				}
				cmd.Flags().BoolP("verbose", "v", false, "Log each subprocess invocation")
				cmd.Flags().StringP("python", "p", "", "Use `INTERPRETER` as the base "+
					"interpreter instead of the one found on the PATH")
				return cmd
			}(),
			ExpectedHelp: "" +
				// 0      1         2         3         4         5         6         7         8
				// 345678901234567890123456789012345678901234567890123456789012345678901234567890
				//                                                                          \n"  \n"
				"Usage: provision [flags] CONFIG_FILE\n" +
				"Build a geospatial Python environment\n" +
				"\n" +
				"Create a virtual environment and install the pinned geospatial stack into\n" +
				"it.  The steps run in a fixed order and the first failure aborts the whole\n" +
				"run.\n" +
				"\n" +
				"Flags:\n" +
				"  -p, --python INTERPRETER    Use INTERPRETER as the base interpreter\n" +
				"                              instead of the one found on the PATH\n" +
				"  -v, --verbose               Log each subprocess invocation\n" +
				"",
		},
		"no-long": {
			InputCmd: func() *cobra.Command {
				cmd := &cobra.Command{
					Use:   "provision [flags] CONFIG_FILE",
					Args:  cobra.ExactArgs(1),
					Short: "Build a geospatial Python environment",
					RunE:  noopRunE,
				}
				cmd.Flags().BoolP("verbose", "v", false, "Log each subprocess invocation")
				cmd.Flags().StringP("python", "p", "", "Use `INTERPRETER` as the base "+
					"interpreter instead of the one found on the PATH")
				return cmd
			}(),
			ExpectedHelp: "" +
				// 0      1         2         3         4         5         6         7         8
				// 345678901234567890123456789012345678901234567890123456789012345678901234567890
				//                                                                          \n"  \n"
				"Usage: provision [flags] CONFIG_FILE\n" +
				"Build a geospatial Python environment\n" +
				"\n" +
				"Flags:\n" +
				"  -p, --python INTERPRETER    Use INTERPRETER as the base interpreter\n" +
				"                              instead of the one found on the PATH\n" +
				"  -v, --verbose               Log each subprocess invocation\n" +
				"",
		},
		"subcommand-table": {
			InputCmd: func() *cobra.Command {
				cmd := &cobra.Command{
					Use:   "geoenv",
					Short: "Provision geospatial Python environments",
					RunE:  noopRunE,
				}
				cmd.AddCommand(&cobra.Command{
					Use:   "provision [flags] CONFIG_FILE",
					Args:  cobra.ExactArgs(1),
					Short: "Create the virtual environment and install the pinned wheel set into it", //nolint:lll
					RunE:  noopRunE,
				})
				return cmd
			}(),
			ExpectedHelp: "" +
				// 0      1         2         3         4         5         6         7         8
				// 345678901234567890123456789012345678901234567890123456789012345678901234567890
				//                                                                          \n"  \n"
				"Usage: geoenv\n" +
				"Provision geospatial Python environments\n" +
				"\n" +
				"Available Commands:\n" +
				"  provision     Create the virtual environment and install the pinned\n" +
				"                wheel set into it\n" +
				"\n" +
				"Use \"geoenv [command] --help\" for more information about a command.\n" +
				"",
		},
	}
	for tcName, tcData := range testcases {
		tcData := tcData
		t.Run(tcName, func(t *testing.T) {
			tcData.InputCmd.SetHelpTemplate(cliutil.HelpTemplate)

			var out strings.Builder
			tcData.InputCmd.SetOutput(&out)
			tcData.InputCmd.HelpFunc()(tcData.InputCmd, []string{"--help"})

			assert.Equal(t, tcData.ExpectedHelp, out.String())
		})
	}
}
