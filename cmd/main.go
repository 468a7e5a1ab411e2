package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/lamassuiot/ca-material-validator/pkg/depot"
	depotfile "github.com/lamassuiot/ca-material-validator/pkg/depot/file"
	"github.com/lamassuiot/ca-material-validator/pkg/depot/relational"
	"github.com/lamassuiot/ca-material-validator/pkg/discovery"
	"github.com/lamassuiot/ca-material-validator/pkg/discovery/consul"
	"github.com/lamassuiot/ca-material-validator/pkg/engine"
	"github.com/lamassuiot/ca-material-validator/pkg/secrets/material"
	"github.com/lamassuiot/ca-material-validator/pkg/secrets/material/file"
	"github.com/lamassuiot/ca-material-validator/pkg/secrets/material/vault"
	"github.com/lamassuiot/ca-material-validator/pkg/validator"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	jaegercfg "github.com/uber/jaeger-client-go/config"

	_ "github.com/lib/pq"
)

func main() {
	var (
		flOneshot = flag.Bool("oneshot", envBool("VALIDATOR_ONESHOT"), "validate once and exit with 0 or 1")
		flBundle  = flag.String("bundle", envString("VALIDATOR_BUNDLE", ""), "certificate bundle file, leaf first")
		flKey     = flag.String("key", envString("VALIDATOR_KEY", ""), "private key file")
		flCrl     = flag.String("crl", envString("VALIDATOR_CRL", ""), "CRL chain file (optional)")

		flVaultAddress  = flag.String("vaultAddress", envString("VALIDATOR_VAULT_ADDRESS", ""), "Vault address")
		flVaultRoleId   = flag.String("vaultRoleId", envString("VALIDATOR_VAULT_ROLEID", ""), "Vault role ID")
		flVaultSecretId = flag.String("vaultSecretId", envString("VALIDATOR_VAULT_SECRETID", ""), "Vault secret ID")
		flVaultCa       = flag.String("vaultCa", envString("VALIDATOR_VAULT_CA", ""), "Vault CA file")
		flVaultPath     = flag.String("vaultPath", envString("VALIDATOR_VAULT_PATH", ""), "Vault secret path holding the key material")

		flDepotJournal  = flag.String("journal", envString("VALIDATOR_JOURNAL", ""), "run journal file (file depot)")
		flDepotDBName   = flag.String("dbname", envString("VALIDATOR_DB_NAME", ""), "DB name")
		flDepotDBUser   = flag.String("dbuser", envString("VALIDATOR_DB_USER", ""), "DB username")
		flDepotPassword = flag.String("dbpassword", envString("VALIDATOR_DB_PASSWORD", ""), "DB password")
		flDepotHost     = flag.String("dbhost", envString("VALIDATOR_DB_HOST", ""), "DB host")
		flDepotPort     = flag.String("dbport", envString("VALIDATOR_DB_PORT", ""), "DB port")

		flConsulProtocol = flag.String("consulprotocol", envString("VALIDATOR_CONSUL_PROTOCOL", ""), "Consul protocol")
		flConsulHost     = flag.String("consulhost", envString("VALIDATOR_CONSUL_HOST", ""), "Consul host")
		flConsulPort     = flag.String("consulport", envString("VALIDATOR_CONSUL_PORT", ""), "Consul port")
		flConsulCA       = flag.String("consulca", envString("VALIDATOR_CONSUL_CA", ""), "Consul CA path")

		flAddress = flag.String("bind", envString("VALIDATOR_ADDRESS", ""), "bind address")
		flPort    = flag.String("port", envString("VALIDATOR_PORT", "8080"), "listening port")
	)
	flag.Parse()

	var logger log.Logger
	{
		logger = log.NewJSONLogger(os.Stdout)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	if *flOneshot {
		os.Exit(runOneshot(logger, *flBundle, *flKey, *flCrl))
	}

	jcfg, err := jaegercfg.FromEnv()
	if err != nil {
		level.Error(logger).Log("err", err, "msg", "Could not load Jaeger configuration values fron environment")
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "Jaeger configuration values loaded")
	tracer, closer, err := jcfg.NewTracer()
	if err != nil {
		level.Error(logger).Log("err", err, "msg", "Could not start Jaeger tracer")
		os.Exit(1)
	}
	defer closer.Close()
	level.Info(logger).Log("msg", "Jaeger tracer started")

	var secrets material.Secrets
	if *flVaultAddress != "" {
		secrets, err = vault.NewVaultSecrets(*flVaultAddress, *flVaultRoleId, *flVaultSecretId, *flVaultCa, *flVaultPath, logger)
		if err != nil {
			level.Error(logger).Log("err", err, "msg", "Could not create Vault secrets backend")
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "Vault secrets backend ready")
	} else if *flBundle != "" {
		secrets = file.NewFile(*flBundle, *flKey, *flCrl, logger)
		level.Info(logger).Log("msg", "File secrets backend ready")
	} else {
		level.Warn(logger).Log("msg", "No secrets backend configured; only inline validation available")
	}

	var runDepot depot.Depot
	if *flDepotHost != "" {
		dataSourceName := "dbname=" + *flDepotDBName + " user=" + *flDepotDBUser + " password=" + *flDepotPassword + " host=" + *flDepotHost + " port=" + *flDepotPort + " sslmode=disable"
		runDepot, err = relational.NewDB("postgres", dataSourceName, logger)
		if err != nil {
			level.Error(logger).Log("err", err, "msg", "Could not connect to validation runs database")
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "Connection established with validation runs database")
	} else if *flDepotJournal != "" {
		runDepot = depotfile.NewFile(*flDepotJournal, logger)
		level.Info(logger).Log("msg", "Run journal ready", "path", *flDepotJournal)
	} else {
		level.Warn(logger).Log("msg", "No run depot configured; validation runs will not be recorded")
	}

	fieldKeys := []string{"method", "error"}
	var svc validator.Service
	{
		svc = validator.NewService(secrets, runDepot, logger)
		svc = validator.LoggingMiddleware(logger)(svc)
		svc = validator.NewInstrumentingMiddleware(
			kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: "ca_material_validator",
				Subsystem: "validator",
				Name:      "request_count",
				Help:      "Number of requests received.",
			}, fieldKeys),
			kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
				Namespace: "ca_material_validator",
				Subsystem: "validator",
				Name:      "request_latency_microseconds",
				Help:      "Total duration of requests in microseconds.",
			}, fieldKeys),
		)(svc)
	}

	h := validator.MakeHTTPHandler(svc, log.With(logger, "component", "HTTP"), tracer)
	http.Handle("/metrics", promhttp.Handler())

	errs := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	var consulsd discovery.Service
	if *flConsulHost != "" {
		consulsd, err = consul.NewServiceDiscovery(*flConsulProtocol, *flConsulHost, *flConsulPort, *flConsulCA, logger)
		if err != nil {
			level.Error(logger).Log("err", err, "msg", "Could not start connection with Consul Service Discovery")
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "Connection established with Consul Service Discovery")
		consulsd.Register("http", *flAddress, *flPort)
	}

	go func() {
		level.Info(logger).Log("transport", "HTTP", "address", *flAddress+":"+*flPort, "msg", "listening")
		errs <- http.ListenAndServe(*flAddress+":"+*flPort, h)
	}()
	level.Info(logger).Log("exit", <-errs)
	if consulsd != nil {
		consulsd.Deregister()
	}
}

// runOneshot validates the given files once and maps the report to the
// process exit code: 0 when no error-severity issue was collected, 1
// otherwise. Warnings are printed but never fail the run.
func runOneshot(logger log.Logger, bundle string, key string, crl string) int {
	secrets := file.NewFile(bundle, key, crl, logger)
	eng := engine.NewEngine(logger)
	report := eng.Validate(secrets.GetBundle(), secrets.GetKey(), secrets.GetCRLChain())
	for _, issue := range report.Issues {
		if issue.Severity == engine.SeverityError {
			level.Error(logger).Log("path", issue.Path, "msg", issue.Message)
		} else {
			level.Warn(logger).Log("path", issue.Path, "msg", issue.Message)
		}
	}
	if !report.Valid() {
		return 1
	}
	level.Info(logger).Log("msg", "CA key material is valid", "subject", report.Subject)
	return 0
}

func envString(key, def string) string {
	if env := os.Getenv(key); env != "" {
		return env
	}
	return def
}

func envBool(key string) bool {
	if env := os.Getenv(key); env == "true" {
		return true
	}
	return false
}
