package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mailio/go-mailio-identity/services"
	"github.com/mailio/go-mailio-identity/util"
	"github.com/spf13/cobra"
)

var (
	resolveTimeout   time.Duration
	resolveShims     string
	resolveProxyHost string
	resolveProxyPort int
)

func init() {
	resolveCmd.Flags().DurationVarP(&resolveTimeout, "timeout", "t", services.DefaultDiscoveryTimeout, "discovery request timeout")
	resolveCmd.Flags().StringVarP(&resolveShims, "shims", "s", os.Getenv("SHIMMED_PRIMARIES"), "shimmed primaries (domain|origin|path,...)")
	resolveCmd.Flags().StringVar(&resolveProxyHost, "proxyHost", "", "forward proxy host")
	resolveCmd.Flags().IntVar(&resolveProxyPort, "proxyPort", 0, "forward proxy port")
	rootCmd.AddCommand(resolveCmd)
}

// resolveCmd runs discovery for a domain and prints the trusted authority
var resolveCmd = &cobra.Command{
	Use:   "resolve <domain>",
	Short: "Discover the identity authority of a domain",
	Long:  "Fetch and follow the /.well-known/browserid declarations of a domain and print the resolved authority",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		domain, err := util.NormalizeDomain(args[0])
		check(err)
		shims, err := services.ParseShims(resolveShims, nil)
		check(err)
		resolver := services.NewWellKnownResolver(services.ResolverConfig{
			Shims:     shims,
			Timeout:   resolveTimeout,
			ProxyHost: resolveProxyHost,
			ProxyPort: resolveProxyPort,
		}, nil)

		authority, err := resolver.Resolve(context.Background(), domain, domain)
		check(err)
		out, err := json.MarshalIndent(authority, "", "  ")
		check(err)
		fmt.Printf("%s\n", string(out))
	},
}
