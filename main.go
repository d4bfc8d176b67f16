package main

import (
	"context"
	"crypto/ed25519"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/mailio/go-mailio-identity/api"
	"github.com/mailio/go-mailio-identity/api/interceptors"
	"github.com/mailio/go-mailio-identity/apiroutes"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/services"
	"github.com/mailio/go-mailio-identity/util"
	cfg "github.com/mailio/go-web3-kit/config"
	w3srv "github.com/mailio/go-web3-kit/gingonic"
	"github.com/redis/go-redis/v9"
)

// in-memory limiter size when redis is not configured
const memoryLimiterSize = 10000

// initRateLimiter returns a redis backed limiter shared between instances,
// or an in-memory one when redis is not configured
func initRateLimiter(conf global.Config) (interceptors.Limiter, *redis.Client) {
	if !conf.RateLimit.Enabled {
		return nil, nil
	}
	if conf.Redis.Host == "" {
		return interceptors.NewMemoryLimiter(memoryLimiterSize), nil
	}
	redisRateLimitClient := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Host + ":" + strconv.Itoa(conf.Redis.Port),
		Username: conf.Redis.Username,
		Password: conf.Redis.Password,
		DB:       1,
	})

	// clears all data in the Redis database associated with the 'redisRateLimitClient' ignoring potential errors
	rCtx, rCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer rCancel()

	_ = redisRateLimitClient.FlushDB(rCtx).Err()

	return interceptors.NewRedisLimiter(redis_rate.NewLimiter(redisRateLimitClient)), redisRateLimitClient
}

// @title Identity Federation API
// @version 1.0
// @description Resolves email addresses to their identity authority and verifies backed assertions
func main() {
	var (
		configFile string
	)
	// configuration file optional path. Default:  current dir with  filename conf.yaml
	flag.StringVar(&configFile, "c", "conf.yaml", "Configuration file path.")
	flag.StringVar(&configFile, "config", "conf.yaml", "Configuration file path.")
	flag.Usage = usage
	flag.Parse()

	// loading configuration file
	err := cfg.NewYamlConfig(configFile, &global.Conf)
	if err != nil {
		global.Logger.Log(err, "conf.yaml failed to load")
		panic("Failed to load conf.yaml")
	}

	// server keys sign certificates for proxied domains and verify them again
	privateKey, _, err := util.LoadServerKeys(global.Conf.Federation.ServerKeysPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load server keys: %v", err))
	}
	ownKey := util.PublicJWK(privateKey.Public().(ed25519.PublicKey))

	limiter, rrClient := initRateLimiter(global.Conf)
	if rrClient != nil {
		defer rrClient.Close()
	}

	// server wait to shutdown monitoring channels
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, os.Interrupt)

	// init routing (for RESTful API endpoints)
	router := w3srv.NewAPIRouter(&global.Conf.YamlConfig)

	accounts := ConfigAccountRepository(&global.Conf)
	shims := ConfigShims(&global.Conf)

	// SERVICE definitions
	resolver := services.NewWellKnownResolver(ResolverConfig(&global.Conf, shims), nil)
	verifier, err := services.NewAssertionVerifier(VerifierConfig(&global.Conf, ownKey), resolver, nil)
	if err != nil {
		panic(err)
	}
	addressInfoService := services.NewAddressInfoService(AddressInfoConfig(&global.Conf), resolver, accounts)
	transitionService := services.NewTransitionService(verifier, accounts)

	wellKnownApi, err := api.NewWellKnownApi(ownKey, global.Conf.Federation.AuthenticationPath, global.Conf.Federation.ProvisioningPath)
	if err != nil {
		panic(err)
	}

	// configure routes
	router = apiroutes.ConfigRoutes(router, addressInfoService, transitionService, wellKnownApi, limiter)

	// start server
	srv := w3srv.Start(&global.Conf.YamlConfig, router)
	// wait for server shutdown
	go w3srv.Shutdown(srv, quit, done)

	global.Logger.Log("Server is ready to handle requests at", global.Conf.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("%v\n", err))
	}

	<-done

}

// usage will print out the flag options for the server.
func usage() {
	usageStr := `Usage: identity [options]
	Server Options:
	-c, --config <file>              Configuration file path
`
	fmt.Printf("%s\n", usageStr)
	os.Exit(0)
}
