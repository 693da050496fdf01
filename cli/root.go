// Package cli provides the command-line interface of the ProvInspector
// provenance service. It wires configuration, the graph-store adapters, and
// the translator into the replay, listen, and serve commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	provinspector "github.com/dbis-ilm/streamvizzard-provinspector"
	"github.com/dbis-ilm/streamvizzard-provinspector/common"
	"github.com/dbis-ilm/streamvizzard-provinspector/config"
	"github.com/dbis-ilm/streamvizzard-provinspector/storage"
)

// cfgFile holds the path to the configuration file specified via the
// --config flag. When empty, .provinspector.yaml is searched in the current
// and home directories.
var cfgFile string

// RootCmd is the main CLI command of the provenance service.
var RootCmd = &cobra.Command{
	Use:   "provinspector",
	Short: "reconstruct a W3C PROV provenance graph from StreamVizzard debugger events",
	Long: `ProvInspector

ProvInspector ingests the event stream of the StreamVizzard pipeline
debugger and reconstructs a full W3C PROV provenance graph recording how a
data-processing pipeline evolved and executed over time. The graph is stored
in a Bolt-reachable property graph database (Neo4J or Memgraph) and can be
queried with Cypher.

Commands:
- replay: feed recorded init and execution dump files into the graph
- listen: consume debug events from a RabbitMQ queue
- serve:  expose event ingestion and the query surface over HTTP
- version: print build information

Configuration can be provided via --config, a .provinspector.yaml file, or
PROVINSPECTOR_* environment variables.`,
}

// Execute runs the root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .provinspector.yaml)")
	RootCmd.PersistentFlags().String("adapter", "", "graph store adapter: neo4j or memgraph")
	RootCmd.PersistentFlags().String("bolt-uri", "", "Bolt endpoint of the backing store")
	RootCmd.PersistentFlags().Bool("use-docker", false, "launch the bundled store container")
	RootCmd.PersistentFlags().String("http-address", "", "listen address of the HTTP API")
	RootCmd.PersistentFlags().String("amqp-url", "", "RabbitMQ connection URL")
	RootCmd.PersistentFlags().String("queue-name", "", "RabbitMQ queue name")
}

// loadConfig reads the service configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.ServiceConfig, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		value, _ := flags.GetString("adapter")
		cfg.Adapter = config.AdapterType(value)
	}
	if flags.Changed("bolt-uri") {
		cfg.BoltURI, _ = flags.GetString("bolt-uri")
	}
	if flags.Changed("use-docker") {
		cfg.UseDocker, _ = flags.GetBool("use-docker")
	}
	if flags.Changed("http-address") {
		cfg.HTTPAddress, _ = flags.GetString("http-address")
	}
	if flags.Changed("amqp-url") {
		cfg.AMQPURL, _ = flags.GetString("amqp-url")
	}
	if flags.Changed("queue-name") {
		cfg.QueueName, _ = flags.GetString("queue-name")
	}

	configureLogging(cfg)
	return cfg, nil
}

// configureLogging applies the configured level and format to the global
// logger.
func configureLogging(cfg *config.ServiceConfig) {
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		common.Logger.SetLevel(level)
	}
	if cfg.LogFormat == "json" {
		common.Logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

// newAdapter constructs the configured graph-store adapter.
func newAdapter(ctx context.Context, cfg *config.ServiceConfig) (storage.Adapter, error) {
	switch cfg.Adapter {
	case config.AdapterNeo4J:
		adapterConfig := storage.DefaultNeo4JAdapterConfig()
		adapterConfig.URI = cfg.BoltURI
		adapterConfig.Username = cfg.Username
		adapterConfig.Password = cfg.Password
		adapterConfig.DatabaseName = cfg.DatabaseName
		adapterConfig.UseDocker = cfg.UseDocker
		adapterConfig.DockerSocket = cfg.DockerSocket
		adapterConfig.ConnectRetries = cfg.ConnectRetries
		return storage.NewNeo4JAdapter(ctx, adapterConfig)
	case config.AdapterMemgraph:
		adapterConfig := storage.DefaultMemgraphAdapterConfig()
		adapterConfig.URI = cfg.BoltURI
		adapterConfig.DatabaseName = cfg.DatabaseName
		adapterConfig.UseDocker = cfg.UseDocker
		adapterConfig.DockerSocket = cfg.DockerSocket
		adapterConfig.ConnectRetries = cfg.ConnectRetries
		return storage.NewMemgraphAdapter(ctx, adapterConfig)
	}
	return nil, fmt.Errorf("unknown adapter type %q", cfg.Adapter)
}

// newInspector builds the translator over the configured store.
func newInspector(ctx context.Context, cfg *config.ServiceConfig) (*provinspector.ProvInspector, error) {
	adapter, err := newAdapter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	database, err := storage.NewProvGraphDatabase(ctx, adapter)
	if err != nil {
		adapter.Shutdown(ctx)
		return nil, err
	}

	return provinspector.New(database), nil
}
