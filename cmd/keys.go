package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mailio/go-mailio-identity/types"
	"github.com/mailio/go-mailio-identity/util"
	"github.com/spf13/cobra"
)

var outputFile string

func init() {
	keysCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default is stdout)")
	rootCmd.AddCommand(keysCmd)
}

// keysCmd generates the ed25519 keys the server signs and verifies its own certificates with
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate ed25519 keys",
	Long:  "Generate ed25519 server keys (federation.serverKeysPath)",
	Run: func(cmd *cobra.Command, args []string) {
		public, private, err := util.GenerateEd25519KeyPair()
		check(err)
		keys := types.ServerKeys{
			Type:       types.ServerKeysType,
			PublicKey:  *public,
			PrivateKey: *private,
			Created:    time.Now().UnixMilli(),
		}
		fileBytes, err := json.MarshalIndent(keys, "", "  ")
		check(err)
		if outputFile != "" {
			// fail if file already exists
			if _, err := os.Stat(outputFile); !errors.Is(err, os.ErrNotExist) {
				fmt.Printf("File already exists: %s\n", outputFile)
				os.Exit(1)
			}
			err = os.WriteFile(outputFile, fileBytes, 0600)
			check(err)
			fmt.Printf("Output file: %s\n", outputFile)
		} else {
			fmt.Printf("\n%s\n", string(fileBytes))
		}
	},
}
