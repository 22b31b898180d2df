// Package config loads SellerPulse configuration.
//
// Values are layered, later sources winning:
//
//  1. Default()
//  2. a YAML file (SELLERPULSE_CONFIG_FILE, or config.yaml / configs/config.yaml)
//  3. environment variables prefixed SELLERPULSE_, e.g.
//     SELLERPULSE_SERVER_PORT=9090
//     SELLERPULSE_REPORT_MODE=ads_adjusted
//     SELLERPULSE_REPORT_CONSTANTS_COST_OF_GOODS_SOLD=-4000
//
// The result is checked with validator struct tags. Report constants are not
// required at load time because a request may supply them; the calculator
// rejects a report whose mode needs a constant that is still unset.
//
// Relative directories under paths are resolved against the executable
// directory.
package config
