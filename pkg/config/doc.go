// Package config loads the proxy configuration.
//
// A configuration file is JSON or YAML (chosen by extension) describing the
// listener, upstream call limits, logging and the proxy routes:
//
//	port: 3000
//	upstreamTimeout: 30s
//	logLevel: info
//	mocks:
//	  - mocks/**/*.yaml
//	proxies:
//	  - name: users
//	    route: /api
//	    base: http://localhost:8080
//
// ${VAR} and ${VAR:-default} references are expanded from the environment
// before parsing. Seed mock files named by the mocks globs hold one mock
// registration or a list of them, in the same shape accepted by POST /mocks.
package config
