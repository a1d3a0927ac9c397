// Package config loads yui project configuration.
//
// The configuration lives in yui.json (or yui.yaml / yui.yml) at the
// project root. FindProjectRoot walks up from a directory to find it.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "readTimeout": "15s",
//	    "writeTimeout": "15s"
//	  },
//	  "engine": {"root": "root"},
//	  "store": {"path": ".yui/prefs.db"},
//	  "themes": {"dir": "themes", "default": "dark"},
//	  "log": {"level": "info", "format": "text"},
//	  "metrics": {"enabled": true, "namespace": "yui"},
//	  "tracing": {"enabled": false, "tracerName": "yui"},
//	  "s3": {"region": "us-east-1", "endpoint": ""}
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
