// Package campaign provisions ESD retire campaigns.
//
// A provisioning run registers a package for retirement through the
// server's SOAP interface and associates the campaign with a directory
// group through its REST interface. Both calls share one authenticated
// session. Either step may fail without affecting the other, and the
// returned [Outcome] records each step separately.
//
// # Basic Usage
//
//	cfg := campaign.DefaultConfig()
//	cfg.Username = "svc-esd"
//	cfg.Password = password
//	cfg.Domain = "CORP"
//
//	out, err := campaign.Run(ctx, cfg, campaign.Request{
//	    Domain:    "https://esd.example.com",
//	    FlexeraID: "PKG-42",
//	    GroupID:   "CN=Retire,OU=Groups,DC=corp,DC=example,DC=com",
//	})
//	if err != nil {
//	    return err // invalid config or request
//	}
//	fmt.Println(out.XML)
//	fmt.Println(out.JSON)
//
// # Failure handling
//
// No step is retried. A transport failure while fetching the service
// description skips the SOAP call. An HTTP error status from the
// description endpoint is recorded as a [esdapi.DiscoveryError] in the
// XML slot. The REST call always runs.
package campaign
