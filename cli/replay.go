package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dbis-ilm/streamvizzard-provinspector/common"
	"github.com/dbis-ilm/streamvizzard-provinspector/data"
)

var (
	replayInitFile string
	replayExecFile string
)

// replayCmd feeds recorded dump files into the provenance graph: first the
// initialization changes, then the debug steps, in file order.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "replay recorded init and execution dumps into the provenance graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		inspector, err := newInspector(ctx, cfg)
		if err != nil {
			return err
		}
		defer inspector.Shutdown(ctx)

		if replayInitFile != "" {
			file, err := os.Open(replayInitFile)
			if err != nil {
				return fmt.Errorf("failed to open init dump: %w", err)
			}
			changes, err := data.LoadInitData(file)
			file.Close()
			if err != nil {
				return err
			}

			if err := inspector.Initialize(ctx, changes); err != nil {
				return err
			}
			common.Logger.WithField("changes", len(changes)).Info("initialized pipeline")
		}

		file, err := os.Open(replayExecFile)
		if err != nil {
			return fmt.Errorf("failed to open execution dump: %w", err)
		}
		steps, err := data.LoadExecutionData(file)
		file.Close()
		if err != nil {
			return err
		}

		for i, step := range steps {
			if err := inspector.Update(ctx, step); err != nil {
				return err
			}
			if (i+1)%1000 == 0 {
				common.Logger.Infof("replayed %s of %s steps",
					humanize.Comma(int64(i+1)), humanize.Comma(int64(len(steps))))
			}
		}

		common.Logger.WithField("steps", len(steps)).Info("replay complete")
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInitFile, "init", "", "init dump file (one change record per line)")
	replayCmd.Flags().StringVar(&replayExecFile, "exec", "", "execution dump file (one debug step per line)")
	replayCmd.MarkFlagRequired("exec")

	RootCmd.AddCommand(replayCmd)
}
