package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stencil/internal/version"
	"github.com/arthur-debert/stencil/pkg/generate"
	"github.com/arthur-debert/stencil/pkg/logging"
)

var (
	verbosity int

	rootCmd = &cobra.Command{
		Use:   "stencil",
		Short: "A project scaffolding engine",
		Long: `stencil generates concrete projects from template directory trees,
substituting variables into file contents and file names, and letting
template authors run small embedded scripts during generation.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newGenerateCmd() *cobra.Command {
	var (
		name               string
		outputDir          string
		projectType        string
		initMode           bool
		silent             bool
		preserveWhitespace bool
		defines            []string
	)

	cmd := &cobra.Command{
		Use:   "generate TEMPLATE",
		Short: "Generate a project from a template directory or git URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defineMap := make(map[string]string, len(defines))
			for _, define := range defines {
				key, value, found := strings.Cut(define, "=")
				if !found {
					return fmt.Errorf("invalid --define %q, expected key=value", define)
				}
				defineMap[key] = value
			}

			dest, err := generate.Run(generate.Options{
				TemplateLocation:   args[0],
				OutputDir:          outputDir,
				Name:               name,
				ProjectType:        projectType,
				Init:               initMode,
				Silent:             silent,
				PreserveWhitespace: preserveWhitespace,
				Define:             defineMap,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Done! New project created at %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (skips the prompt)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Parent directory for the generated project")
	cmd.Flags().StringVar(&projectType, "type", "bin", "Project type seeded as the project_type variable")
	cmd.Flags().BoolVar(&initMode, "init", false, "Generate into the output directory itself")
	cmd.Flags().BoolVar(&silent, "silent", false, "Never prompt, fail when a value is missing")
	cmd.Flags().BoolVar(&preserveWhitespace, "preserve-whitespace", false, "Keep whitespace around block tags")
	cmd.Flags().StringArrayVarP(&defines, "define", "d", nil, "Pre-set a variable as key=value (repeatable)")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("stencil %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
