/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/mrapps/appdaloja/pkg/config"
	"github.com/mrapps/appdaloja/pkg/identity"
	"github.com/mrapps/appdaloja/pkg/logger"
	"github.com/mrapps/appdaloja/pkg/session"
	"github.com/mrapps/appdaloja/pkg/telemetry"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"

	meterName = "github.com/mrapps/appdaloja/session"
)

// cli holds the state shared by every subcommand
type cli struct {
	configFile string
	output     string

	cfg *config.AppConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:               "sessionctl",
		Short:             "Inspect and edit an appdaloja session store",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return telemetry.Shutdown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $APPDALOJA_CONFIG_FILE)")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", outputYAML, "output format: yaml or json")

	root.AddCommand(
		c.newUniqueIDCmd(),
		c.newGetCmd(),
		c.newSetCmd(),
		c.newAdsCmd(),
		c.newSnapshotCmd(),
		c.newServeCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if c.output != outputYAML && c.output != outputJSON {
		return fmt.Errorf("unsupported output format %q", c.output)
	}

	path := c.configFile
	if path == "" {
		path = os.Getenv("APPDALOJA_CONFIG_FILE")
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cmd.SetContext(logger.WithLogger(cmd.Context(), logger.Logger(cmd.Context()).WithField("command", cmd.Name())))

	if err := telemetry.Init(cmd.Context(), cfg.Telemetry); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if err := telemetry.InitStoreMetrics(telemetry.GetMeter(meterName)); err != nil {
		return fmt.Errorf("failed to initialize store metrics: %w", err)
	}
	return nil
}

// withSession opens the configured session, runs fn and closes the session
func (c *cli) withSession(ctx context.Context, platform identity.Platform, fn func(*session.Session) error) error {
	if platform == nil {
		platform = identity.NewHostPlatform()
	}
	sess, err := session.Open(ctx, c.cfg, platform)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Logger(ctx).WithError(err).Warn("failed to close session store")
		}
	}()

	return fn(sess)
}

func (c *cli) print(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	switch c.output {
	case outputJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
