package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smnsjas/go-esd/campaign"
)

func newRetireCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retire",
		Short: "Register a package for retirement and target it at a group",
		Long: `Registers the package for retirement through the server's SOAP
interface, then associates the retire campaign with a directory group
through its REST interface. Both results are printed. The exit status is
non-zero unless both steps succeed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRetire(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("domain", "", "Base URL of the ESD server, e.g. https://esd.example.com")
	flags.String("flexera-id", "", "Flexera ID of the package to retire")
	flags.String("group-id", "", "Directory group targeted by the campaign")
	flags.Bool("parallel", false, "Run the SOAP and REST steps concurrently")

	annotateEnv(flags)

	return cmd
}

func (a *app) runRetire(cmd *cobra.Command) error {
	defer a.teardown()

	vals, err := a.require("domain", "flexera-id", "group-id")
	if err != nil {
		return err
	}
	username, password, err := a.credentials(cmd)
	if err != nil {
		return err
	}
	tlsCfg, err := a.tlsConfig()
	if err != nil {
		return err
	}

	cfg := campaign.DefaultConfig()
	cfg.Username = username
	cfg.Password = password
	cfg.Domain = a.v.GetString("ntlm-domain")
	cfg.Proxies = campaign.ResolveProxies(a.v.GetString("proxies"), a.logger)
	cfg.VerifyTLS = a.v.GetBool("verify-tls")
	cfg.TLSConfig = tlsCfg
	cfg.Timeout = a.v.GetDuration("timeout")
	cfg.Parallel = a.v.GetBool("parallel")
	cfg.Logger = a.logger

	req := campaign.Request{Domain: vals[0], FlexeraID: vals[1], GroupID: vals[2]}

	a.logger.Debug("execution begin", "domain", req.Domain, "flexera_id", req.FlexeraID)
	out, err := campaign.Run(cmd.Context(), cfg, req)
	if err != nil {
		return err
	}
	a.logger.Debug("execution end", "run_id", out.RunID)

	printOutcome(cmd.OutOrStdout(), out)
	return out.Err()
}

func printOutcome(w io.Writer, out *campaign.Outcome) {
	fmt.Fprintf(w, "run:  %s\n", out.RunID)
	fmt.Fprintf(w, "xml:  %s\n", out.XML)
	fmt.Fprintf(w, "json: %s\n", out.JSON)
}
