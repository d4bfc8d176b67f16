package main

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/mailio/go-mailio-identity/types"
	"github.com/mailio/go-mailio-identity/util"
	"github.com/spf13/cobra"
)

var (
	keyFile            string
	authenticationPath string
	provisioningPath   string
)

func init() {
	declarationCmd.Flags().StringVarP(&keyFile, "keyFile", "f", "", "json file with the server keys")
	declarationCmd.Flags().StringVarP(&authenticationPath, "authentication", "a", "/sign_in", "authentication path")
	declarationCmd.Flags().StringVarP(&provisioningPath, "provisioning", "p", "/provision", "provisioning path")
	declarationCmd.MarkFlagRequired("keyFile")
	rootCmd.AddCommand(declarationCmd)
}

// declarationCmd prints a /.well-known/browserid document for the given keys,
// e.g. to be served by an identity provider or used as a shimmed primary
var declarationCmd = &cobra.Command{
	Use:   "declaration",
	Short: "Generate a declaration of support",
	Long:  "Generate a /.well-known/browserid declaration of support for the public key in a server keys file",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, _, err := util.LoadServerKeys(keyFile)
		check(err)
		publicKey, err := json.Marshal(util.PublicJWK(privateKey.Public().(ed25519.PublicKey)))
		check(err)
		doc := types.WellKnownDocument{
			PublicKey:      publicKey,
			Authentication: authenticationPath,
			Provisioning:   provisioningPath,
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		check(err)
		fmt.Printf("%s\n", string(out))
	},
}
