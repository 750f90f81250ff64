// Package config provides configuration management for svcseq.
//
// This package implements a layered configuration system. Configuration is
// loaded from multiple sources and merged in a specific order, with later
// sources overriding earlier ones.
//
// # Configuration Layers
//
//  1. Default Configuration (embedded in binary)
//     - Transport sc, poll every 5s, start timeout 90s, wait timeout 60s
//     - No services
//
//  2. User Configuration (~/.config/svcseq/config.yaml)
//     - Personal defaults such as the transport or SSH jump host
//
//  3. Project Configuration (./.svcseq/config.yaml)
//     - The startup plan of an environment, shared via version control
//
//  4. Explicit file (--config)
//
// # Configuration Structure
//
//	transport:
//	  type: powershell        # sc | powershell | scm | ssh
//	  commandTimeout: 30s
//	  ssh:
//	    host: jump.example:22
//	    user: admin
//	    keyFile: ~/.ssh/id_ed25519
//	    dialRetries: 3
//	    dialRetryInterval: 2s
//	timing:
//	  pollInterval: 5s
//	  startTimeout: 90s
//	  waitTimeout: 60s
//	onFailure: abort          # continue | abort
//	services:
//	  - server: ADFS-SERVER
//	    service: adfssrv
//	  - server: FORTIFY-SERVER
//	    service: FortifyTomcat9
//	    startTimeout: 3m
//	  - server: SONAR-SERVER
//	    service: SonarQube
//
// # Merge Strategy
//
// Scalar settings in an overlay replace the base value when set. A
// non-empty services list replaces the whole list: the order of the list
// is the startup order, so merging entries by name would silently reorder
// it.
package config
