package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NJ2612/ev-charge-optimizer/config"
	"github.com/NJ2612/ev-charge-optimizer/core/prediction"
	"github.com/NJ2612/ev-charge-optimizer/infra/logger"
	"github.com/NJ2612/ev-charge-optimizer/infra/regression"
	"github.com/NJ2612/ev-charge-optimizer/infra/store"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the load predictor from the usage history and persist it",
	RunE:  runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("train")

	st, err := store.NewSQLiteStore(cfg.Network.DBPath)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() { _ = st.Close() }()

	history, err := st.UsageHistory(context.Background())
	if err != nil {
		return fmt.Errorf("read usage history: %w", err)
	}
	logg.Infof("fitting on %d usage samples", len(history))

	feed := prediction.NewFeed(func() prediction.Regressor {
		return regression.NewLinear(cfg.Predictor.Ridge)
	})
	if err := feed.Fit(history); err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	if err := feed.Save(cfg.Predictor.ModelPath); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	logg.Infof("model saved to %s", cfg.Predictor.ModelPath)
	return nil
}
