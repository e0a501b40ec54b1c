package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smnsjas/go-esd/campaign"
	"github.com/smnsjas/go-esd/esdapi"
	"github.com/smnsjas/go-esd/esdapi/auth"
)

func newDevicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List devices that have a package installed",
		Long: `Queries the device endpoint for the devices reporting the package and
prints one JSON object per device.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDevices(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("endpoint", "", "Device endpoint URL")
	flags.String("flexera-id", "", "Flexera ID of the package")
	flags.String("auth", "ntlm", "Authentication scheme: ntlm or basic")

	annotateEnv(flags)

	return cmd
}

func (a *app) runDevices(cmd *cobra.Command) error {
	defer a.teardown()

	vals, err := a.require("endpoint", "flexera-id")
	if err != nil {
		return err
	}
	scheme, err := auth.ParseScheme(a.v.GetString("auth"))
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

	session := esdapi.NewSession(esdapi.SessionConfig{
		Username:   username,
		Password:   password,
		Domain:     a.v.GetString("ntlm-domain"),
		AuthScheme: scheme,
		Proxies:    campaign.ResolveProxies(a.v.GetString("proxies"), a.logger),
		VerifyTLS:  a.v.GetBool("verify-tls"),
		TLSConfig:  tlsCfg,
		Timeout:    a.v.GetDuration("timeout"),
		Logger:     a.logger,
	})
	defer session.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	count := 0
	for device, err := range session.Devices(cmd.Context(), vals[0], vals[1]) {
		if err != nil {
			return fmt.Errorf("list devices: %w", err)
		}
		if err := enc.Encode(device); err != nil {
			return err
		}
		count++
	}
	a.logger.Info("devices listed", "flexera_id", vals[1], "count", count)
	return nil
}
