// Command esd-campaign provisions retire campaigns on an ESD server.
//
// Password can be provided via:
//   - --password flag (least secure, visible in process list)
//   - ESD_PASSWORD environment variable (recommended)
//   - stdin prompt (if neither flag nor env var is set)
//
// Every flag can also be set through the environment as ESD_<FLAG>, with
// dashes replaced by underscores (ESD_FLEXERA_ID, ESD_LOG_LEVEL).
//
// Usage:
//
//	esd-campaign retire --domain https://esd.example.com --username CORP\\svc-esd \
//	    --flexera-id PKG-42 --group-id "CN=Retire,OU=Groups,DC=corp,DC=example,DC=com"
//
//	esd-campaign devices --endpoint https://esd.example.com/esd/api/Devices \
//	    --username svc-esd --auth basic --flexera-id PKG-42
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
