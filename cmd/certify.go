package main

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mailio/go-mailio-identity/util"
	"github.com/spf13/cobra"
)

var (
	certifyKeyFile  string
	certifyIssuer   string
	certifyEmail    string
	certifyAudience string
	certifyValidFor time.Duration
)

func init() {
	certifyCmd.Flags().StringVarP(&certifyKeyFile, "keyFile", "f", "", "json file with the issuer keys")
	certifyCmd.Flags().StringVarP(&certifyIssuer, "issuer", "i", "", "issuer domain")
	certifyCmd.Flags().StringVarP(&certifyEmail, "email", "e", "", "email to certify")
	certifyCmd.Flags().StringVarP(&certifyAudience, "audience", "a", "", "audience (origin of the verifying server)")
	certifyCmd.Flags().DurationVarP(&certifyValidFor, "validFor", "v", 10*time.Minute, "validity of the certificate and assertion")
	certifyCmd.MarkFlagRequired("keyFile")
	certifyCmd.MarkFlagRequired("issuer")
	certifyCmd.MarkFlagRequired("email")
	certifyCmd.MarkFlagRequired("audience")
	rootCmd.AddCommand(certifyCmd)
}

// certifyCmd issues a certificate with a fresh user key and a matching assertion (local development only)
var certifyCmd = &cobra.Command{
	Use:   "certify",
	Short: "Issue a test backed assertion",
	Long:  "Sign a certificate for an email with the issuer keys and print a backed assertion for the audience",
	Run: func(cmd *cobra.Command, args []string) {
		issuerKey, _, err := util.LoadServerKeys(certifyKeyFile)
		check(err)
		userPub, userPriv, err := ed25519.GenerateKey(nil)
		check(err)

		now := time.Now()
		cert, err := util.CreateCertificate(certifyIssuer, issuerKey, util.PublicJWK(userPub), certifyEmail, now, now.Add(certifyValidFor))
		check(err)
		assertion, err := util.CreateAssertion(userPriv, certifyAudience, now.Add(certifyValidFor))
		check(err)
		fmt.Printf("%s\n", util.BundleOf([]string{cert}, assertion))
	},
}
