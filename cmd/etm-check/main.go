package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tiger/exercise-trace-monitor/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "etm-check: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("etm-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML configuration (defaults apply when empty)")
	render := fs.Bool("render", false, "print the effective configuration after validation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "configuration valid")
	if *render {
		out, err := cfg.Render()
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, out)
	}
	return nil
}
