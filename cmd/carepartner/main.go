package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "carepartner",
		Usage:   "Consultation dashboard for the terminal",
		Version: version,
		Description: `carepartner shows the consultation dashboard: KPI cards with trends,
tag rankings, weekly issue reports and satisfaction surveys.

Run without a command to open the interactive dashboard.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (YAML)",
				EnvVars: []string{"CAREPARTNER_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Action: runTUI,
		Commands: []*cli.Command{
			tuiCmd(),
			loginCmd(),
			logoutCmd(),
			summaryCmd(),
			issuesCmd(),
			periodCmd(),
			uploadCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
