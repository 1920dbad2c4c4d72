package main

import (
	"studyguide.parallel/imgbench/pkg/cli"
	"studyguide.parallel/imgbench/pkg/runner"
)

func main() {
	cli.Main(cli.NewCommand(cli.Strategy{
		Use:           "distributed",
		Short:         "Split the images across simulated nodes and report the efficiency over sequential",
		DefaultOutput: "output_dist",
		Run:           (*runner.Runner).Distributed,
	}))
}
