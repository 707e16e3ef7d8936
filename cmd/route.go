package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/NJ2612/ev-charge-optimizer/app"
	"github.com/NJ2612/ev-charge-optimizer/config"
	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

var (
	routeStart      int
	routeEnd        int
	routeBattery    float64
	routeCharge     float64
	routeEfficiency float64
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Compute a charging route between two stations",
	RunE:  runRoute,
}

func init() {
	routeCmd.Flags().IntVar(&routeStart, "from", 0, "start station id")
	routeCmd.Flags().IntVar(&routeEnd, "to", 0, "destination station id")
	routeCmd.Flags().Float64Var(&routeBattery, "battery", 75, "battery capacity in kWh")
	routeCmd.Flags().Float64Var(&routeCharge, "charge", 100, "current charge in percent")
	routeCmd.Flags().Float64Var(&routeEfficiency, "efficiency", 0.2, "consumption in kWh/km")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	vehicle := model.VehicleState{
		BatteryKWh:    routeBattery,
		CurrentCharge: routeCharge,
		Efficiency:    routeEfficiency,
	}
	if err := vehicle.Validate(); err != nil {
		return err
	}

	var predicted map[int]float64
	if svc.Feed.Trained() {
		predicted, err = svc.Feed.PredictLoadsForRoute(svc.Network.StationIDs(), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("predict loads: %w", err)
		}
	}

	res := svc.Router.FindRoute(routeStart, routeEnd, vehicle, predicted)
	if !res.Found() {
		fmt.Printf("no feasible route from %d to %d\n", routeStart, routeEnd)
		return nil
	}
	ids := make([]string, len(res.Path))
	for i, id := range res.Path {
		ids[i] = fmt.Sprintf("%d", id)
	}
	fmt.Printf("route: %s\ntotal distance: %.1f km\n", strings.Join(ids, " -> "), res.TotalDistance)
	return nil
}
