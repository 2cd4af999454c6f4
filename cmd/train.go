package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetpool/app"
	"github.com/kilianp07/fleetpool/core/prediction"
)

var (
	trainOut   string
	trainRidge float64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the linear CO2 predictor on the dataset",
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "co2_model.json", "model output file")
	trainCmd.Flags().Float64Var(&trainRidge, "ridge", prediction.DefaultRidge, "L2 penalty")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		js, err := svc.Journeys(ctx)
		if err != nil {
			return err
		}
		m, err := prediction.TrainLinear(js, trainRidge)
		if err != nil {
			return err
		}
		if err := m.Save(trainOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model trained on %d journeys, saved to %s\n", len(js), trainOut)
		fmt.Fprintf(cmd.OutOrStdout(), "Set prediction.type=linear and prediction.conf.path=%s to use it\n", trainOut)
		return nil
	})
}
