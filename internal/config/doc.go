// Package config loads reflow.yaml, the configuration of the reflow command.
//
// # Configuration File Structure
//
//	server:
//	  address: ":8080"
//	  live_path: /live
//	  title: Counter
//	  max_sessions: 1000
//	  shutdown_timeout: 30s
//	session:
//	  read_timeout: 60s
//	  write_timeout: 10s
//	  idle_timeout: 5m
//	  heartbeat: 30s
//	  max_message_size: 65536
//	  max_event_queue: 256
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  path: /metrics
//	tracing:
//	  enabled: false
//
// Every field is optional. Unknown fields are rejected.
//
// # Usage
//
//	cfg, err := config.LoadFile("reflow.yaml")
//	if err != nil {
//	    errors.Print(os.Stderr, err)
//	    os.Exit(1)
//	}
//	srv := server.New(prog, cfg.ServerConfig())
package config
