package cmd

import (
	"crypto/ed25519"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DerWahreMirakulix/metor/internal/errors"
	"github.com/DerWahreMirakulix/metor/internal/identity"
)

func newAddressCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Manage the onion identity",
	}
	cmd.AddCommand(newAddressShowCmd(load), newAddressGenerateCmd(load))
	return cmd
}

func newAddressShowCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the onion address of the stored identity key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			key, err := identity.LoadOrCreateKey(cfg.KeyFile())
			if err != nil {
				return err
			}
			addr := identity.FromPublicKey(key.Public().(ed25519.PublicKey))
			fmt.Fprintf(cmd.OutOrStdout(), "Current onion address: %s\n", addr)
			return nil
		},
	}
}

func newAddressGenerateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Rotate the identity key and print the new onion address",
		Long: `Replace the stored identity key with a fresh one.  The old onion
address stops working; peers must be given the new one.  Refused while
a chat session is running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			if cfg.ChatRunning() {
				return errors.New("changing the address is not possible while a chat is running")
			}
			key, err := identity.GenerateKey(cfg.KeyFile())
			if err != nil {
				return err
			}
			addr := identity.FromPublicKey(key.Public().(ed25519.PublicKey))
			fmt.Fprintf(cmd.OutOrStdout(), "New onion address generated: %s\n", addr)
			return nil
		},
	}
}
