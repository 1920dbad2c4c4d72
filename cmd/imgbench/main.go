package main

import (
	"studyguide.parallel/imgbench/pkg/cli"
	"studyguide.parallel/imgbench/pkg/runner"
)

func main() {
	cli.Main(cli.NewCommand(cli.Strategy{
		Use:           "imgbench",
		Short:         "Run the sequential, parallel and distributed benchmarks back to back",
		DefaultOutput: "output",
		Run:           (*runner.Runner).All,
	}))
}
