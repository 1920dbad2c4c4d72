package main

import (
	"studyguide.parallel/imgbench/pkg/cli"
	"studyguide.parallel/imgbench/pkg/runner"
)

func main() {
	cli.Main(cli.NewCommand(cli.Strategy{
		Use:           "sequential",
		Short:         "Resize and watermark every image one at a time",
		DefaultOutput: "output_seq",
		Run:           (*runner.Runner).Sequential,
	}))
}
