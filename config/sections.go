package config

import (
	"fmt"

	"github.com/NJ2612/ev-charge-optimizer/core/routing"
)

// HTTPConfig defines the API listener settings.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// NetworkConfig locates the station record store.
type NetworkConfig struct {
	// DBPath is the SQLite database holding stations, connections and
	// usage history.
	DBPath string `json:"db_path"`
}

// SetDefaults applies sane defaults.
func (c *NetworkConfig) SetDefaults() {
	if c.DBPath == "" {
		c.DBPath = "ev_charger.db"
	}
}

// RoutingConfig tunes the route search.
type RoutingConfig struct {
	// BatteryPolicy selects the single-hop energy check:
	// "initial-charge" (default) or "recharge-en-route".
	BatteryPolicy string `json:"battery_policy"`
}

// Policy converts the configured string to a routing.BatteryPolicy.
func (c RoutingConfig) Policy() routing.BatteryPolicy {
	if c.BatteryPolicy == string(routing.PolicyRechargeEnRoute) {
		return routing.PolicyRechargeEnRoute
	}
	return routing.PolicyInitialCharge
}

// Validate checks the policy value.
func (c RoutingConfig) Validate() error {
	switch c.BatteryPolicy {
	case "", string(routing.PolicyInitialCharge), string(routing.PolicyRechargeEnRoute):
		return nil
	}
	return fmt.Errorf("unknown battery policy %q", c.BatteryPolicy)
}

// PredictorConfig tunes the load feed.
type PredictorConfig struct {
	// ModelPath is the snapshot file of the fitted model. When present at
	// startup the feed is restored from it instead of refitting.
	ModelPath string `json:"model_path"`
	// Ridge is the damping factor of the linear backend.
	Ridge float64 `json:"ridge"`
}

// SetDefaults applies sane defaults.
func (c *PredictorConfig) SetDefaults() {
	if c.ModelPath == "" {
		c.ModelPath = "load_predictor.json"
	}
	if c.Ridge <= 0 {
		c.Ridge = 1e-6
	}
}
