package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ingyamilmolinar/seqplayer/internal/assets"
	"github.com/ingyamilmolinar/seqplayer/internal/probe"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that frame 01 of every catalog sequence exists",
	Long: `probe looks up frame 01 of every style × word × variant named by the
catalog under the configured asset base and prints which are present.`,
	SilenceUsage: true,
	RunE:         runProbe,
}

func runProbe(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.cfg
	var ck probe.Checker
	paths := cfg.Paths()
	if assets.IsRemote(cfg.Assets.Base) {
		ck = assets.NewHTTP[struct{}](nil, cfg.Assets.Parallel, cfg.Assets.FetchTimeout.D(), nil, e.logger)
	} else {
		ck = assets.NewFS[struct{}](os.DirFS(cfg.Assets.Base), cfg.Assets.Parallel, nil)
		paths.Base = ""
	}
	variants := e.catalog.Variants
	if variants < 1 {
		variants = cfg.Variants.Max
	}
	results := probe.Run(cmd.Context(), ck, paths, e.catalog.StyleIDs(), e.catalog.WordIDs(), variants, cfg.Assets.Parallel)
	return probe.Report(cmd.OutOrStdout(), results)
}

