// Package config defines and loads recordsd configuration.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults (Defaults)
//  2. a YAML file, either given explicitly or recordsd.yaml in the working directory
//  3. environment variables prefixed RECORDSD_, dots replaced by underscores
//     (RECORDSD_SITE_ADDR, RECORDSD_QUERY_METHODNOTALLOWEDSTATUS)
//  4. bound command-line flags
//
// A minimal file:
//
//	site:
//	  addr: 127.0.0.1:3000
//	  baseURL: http://localhost:3000
//	collections:
//	  - name: people
//	    path: /api/getPeople
//	    aliases: [/records]
//	    server: site
//	    filters: [country, livesIn]
//	    seed: builtin:people
//
// Load validates the result; a Config returned without error is ready to use.
package config
