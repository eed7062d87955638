// Package config provides configuration parsing for vfiber hosts.
//
// The configuration is stored in vfiber.json (or vfiber.yaml) in the
// working directory, or at the path given with --config. This package
// handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "scheduler": {
//	    "frameInterval": "16ms",
//	    "frameBudget": "8ms",
//	    "minRemaining": "1ms"
//	  },
//	  "engine": {
//	    "validateHooks": true,
//	    "opLogLimit": 1024
//	  },
//	  "inspector": {
//	    "addr": "127.0.0.1:7070",
//	    "app": "counter"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "vfiber"
//	  },
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  }
//	}
//
// The YAML form uses the same keys.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Inspector.Addr)
package config
