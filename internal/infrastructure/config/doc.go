// Package config provides configuration loading for the Edgelink device core.
//
// Configuration is loaded from a YAML file with hardcoded defaults and
// environment variable overrides (EDGELINK_* prefix). Values loaded here are
// the lowest-precedence layer of MQTT provisioning: settings persisted via
// the REST gateway override them at runtime.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
