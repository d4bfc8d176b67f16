package main

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/repository"
	"github.com/mailio/go-mailio-identity/services"
	"github.com/mailio/go-mailio-identity/util"
)

// env variable overriding federation.shimmedPrimaries (local development and integration tests)
const envShimmedPrimaries = "SHIMMED_PRIMARIES"

// Configure the account repository: CouchDB or (development only) in memory
func ConfigAccountRepository(conf *global.Config) repository.AccountRepository {
	if conf.CouchDB.InMemory {
		global.Logger.Log("warning", "using in-memory account store, data is lost on restart")
		return repository.NewMemoryAccountStore()
	}
	repoUrl := conf.CouchDB.Scheme + "://" + conf.CouchDB.Host + ":" + strconv.Itoa(conf.CouchDB.Port)
	emailRepo, emailErr := repository.NewCouchDBRepository(repoUrl, repository.Emails, conf.CouchDB.Username, conf.CouchDB.Password, false)
	authorityRepo, authorityErr := repository.NewCouchDBRepository(repoUrl, repository.Authorities, conf.CouchDB.Username, conf.CouchDB.Password, false)

	repoErr := errors.Join(emailErr, authorityErr)
	if repoErr != nil {
		global.Logger.Log("error", "Failed to create repositories", "error", repoErr.Error())
		panic(repoErr)
	}

	// REPOSITORY definitions
	dbSelector := repository.NewCouchDBSelector()
	dbSelector.AddDB(emailRepo)
	dbSelector.AddDB(authorityRepo)

	store, err := repository.NewCouchAccountStore(dbSelector)
	if err != nil {
		panic(err)
	}
	return store
}

// Load the shim table from SHIMMED_PRIMARIES or the configuration file
func ConfigShims(conf *global.Config) *services.ShimStore {
	shims := conf.Federation.ShimmedPrimaries
	if env := os.Getenv(envShimmedPrimaries); env != "" {
		shims = env
	}
	store, err := services.ParseShims(shims, nil)
	if err != nil {
		global.Logger.Log("error", "Failed to load shimmed primaries", "error", err.Error())
		panic(err)
	}
	return store
}

func ResolverConfig(conf *global.Config, shims *services.ShimStore) services.ResolverConfig {
	return services.ResolverConfig{
		Shims:          shims,
		ProxyIdps:      conf.Federation.ProxyIdps,
		Timeout:        time.Duration(conf.Federation.DiscoveryTimeoutMs) * time.Millisecond,
		ProxyHost:      conf.Federation.HttpProxy.Host,
		ProxyPort:      conf.Federation.HttpProxy.Port,
		MaxDelegations: conf.Federation.MaxDelegations,
		Disabled:       conf.Federation.DisablePrimarySupport,
	}
}

func VerifierConfig(conf *global.Config, ownKey *jose.JSONWebKey) services.VerifierConfig {
	return services.VerifierConfig{
		PublicURL: conf.Federation.PublicURL,
		OwnKey:    ownKey,
		Disabled:  conf.Federation.DisablePrimarySupport,
	}
}

func AddressInfoConfig(conf *global.Config) services.AddressInfoConfig {
	hostname, err := util.Hostname(conf.Federation.PublicURL)
	if err != nil {
		panic(err)
	}
	return services.AddressInfoConfig{
		Hostname:           hostname,
		OfflineGracePeriod: time.Duration(conf.Federation.IdpOfflineGracePeriodMs) * time.Millisecond,
	}
}
