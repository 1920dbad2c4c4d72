package main

import (
	"studyguide.parallel/imgbench/pkg/cli"
	"studyguide.parallel/imgbench/pkg/runner"
)

func main() {
	cli.Main(cli.NewCommand(cli.Strategy{
		Use:           "parallel",
		Short:         "Process the images with worker pools of each configured size and print the speedup table",
		DefaultOutput: "output_parallel",
		Run:           (*runner.Runner).Parallel,
	}))
}
