// Package esd provisions software retire campaigns on an ESD
// (enterprise software deployment) server.
//
// A retire campaign is set up in two calls against the same server: the
// package is registered for retirement through the server's SOAP (ASMX)
// integration service, and the campaign is associated with a directory
// group through its JSON REST interface. Both calls share one NTLM
// authenticated session.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────┐
//	│  cmd/esd-campaign  Command-line tool                    │
//	├─────────────────────────────────────────────────────────┤
//	│  campaign/         Orchestrator, Outcome, audit events  │
//	├─────────────────────────────────────────────────────────┤
//	│  esdapi/           Session, WSDL discovery, SOAP, REST  │
//	├─────────────────────────────────────────────────────────┤
//	│  esdapi/transport  HTTP, TLS, proxies                   │
//	│  esdapi/auth       NTLM and Basic                       │
//	└─────────────────────────────────────────────────────────┘
//
// # Quick Start
//
//	cfg := campaign.DefaultConfig()
//	cfg.Username = `CORP\svc-esd`
//	cfg.Password = os.Getenv("ESD_PASSWORD")
//
//	out, err := campaign.Run(ctx, cfg, campaign.Request{
//	    Domain:    "https://esd.example.com",
//	    FlexeraID: "PKG-42",
//	    GroupID:   "CN=Retire,OU=Groups,DC=corp,DC=example,DC=com",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := out.Err(); err != nil {
//	    log.Printf("provisioning incomplete: %v", err)
//	}
//
// # Failure semantics
//
// The two steps are independent. The SOAP step fails without touching
// the REST step and vice versa; [campaign.Outcome] keeps both results.
// Nothing is retried. Errors are typed ([esdapi.TransportError],
// [esdapi.HTTPStatusError], [esdapi.DiscoveryError], [esdapi.InvokeError])
// and classified with [esdapi.Classify].
package esd
