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
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mrapps/appdaloja/internal/httpapi/server"
	"github.com/mrapps/appdaloja/pkg/codec"
	"github.com/mrapps/appdaloja/pkg/identity"
	"github.com/mrapps/appdaloja/pkg/keys"
	"github.com/mrapps/appdaloja/pkg/session"
	"github.com/mrapps/appdaloja/pkg/store"
)

func (c *cli) newUniqueIDCmd() *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "uniqueid",
		Short: "Resolve the device identifier, creating it on first use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var platform identity.Platform
			if deviceID != "" {
				platform = identity.StaticPlatform{ID: deviceID}
			}
			return c.withSession(cmd.Context(), platform, func(sess *session.Session) error {
				id, err := sess.UniqueID(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), map[string]string{"uniqueId": id})
			})
		},
	}
	cmd.Flags().StringVar(&deviceID, "device-id", "", "platform identifier to use instead of the host machine id")
	return cmd
}

func (c *cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <domain>",
		Short:     "Print a whole-value domain",
		Args:      cobra.ExactArgs(1),
		ValidArgs: domainNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), nil, func(sess *session.Session) error {
				blob, err := blobFor(sess, args[0])
				if err != nil {
					return err
				}
				res := blob.Lookup(cmd.Context())
				if err := resultError(res, args[0]); err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), res.Value)
			})
		},
	}
}

func (c *cli) newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <domain> <json>",
		Short:     "Replace a whole-value domain",
		Args:      cobra.ExactArgs(2),
		ValidArgs: domainNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseJSON(args[1])
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), nil, func(sess *session.Session) error {
				blob, err := blobFor(sess, args[0])
				if err != nil {
					return err
				}
				return blob.Set(cmd.Context(), value)
			})
		},
	}
}

func (c *cli) newAdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ads",
		Short: "Manage the per-store ads cache",
	}

	get := &cobra.Command{
		Use:   "get <store-id>",
		Short: "Print the cached ads of a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), nil, func(sess *session.Session) error {
				id := args[0]
				res := sess.Store().Ads.Lookup(cmd.Context(), id)
				if err := resultError(res, "ads for "+id); err != nil {
					return err
				}
				entry := session.AdsSnapshot{Ads: res.Value}
				if at, ok := sess.GetAdsUpdatedAt(cmd.Context(), id); ok {
					entry.UpdatedAt = &at
				}
				return c.print(cmd.OutOrStdout(), entry)
			})
		},
	}

	var touch bool
	set := &cobra.Command{
		Use:   "set <store-id> <json>",
		Short: "Replace the cached ads of a store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ads, err := parseJSON(args[1])
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), nil, func(sess *session.Session) error {
				if touch {
					return sess.Store().Ads.Refresh(cmd.Context(), args[0], ads, time.Now())
				}
				return sess.SetAds(cmd.Context(), args[0], ads)
			})
		},
	}
	set.Flags().BoolVar(&touch, "touch", false, "also record the current time as the refresh time")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the stores with cached ads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), nil, func(sess *session.Session) error {
				ids, err := sess.Store().Ads.IDs(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), ids)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <store-id>",
		Short: "Drop the cached ads and refresh time of a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), nil, func(sess *session.Session) error {
				return sess.Store().Ads.Delete(cmd.Context(), args[0])
			})
		},
	}

	cmd.AddCommand(get, set, list, del)
	return cmd
}

func (c *cli) newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print every domain of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), nil, func(sess *session.Session) error {
				snap, err := sess.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), snap)
			})
		},
	}
}

func (c *cli) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only inspection API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), nil, func(sess *session.Session) error {
				return server.NewAPIServer(c.cfg, sess).Start(cmd.Context())
			})
		},
	}
}

func domainNames() []string {
	domains := store.BlobDomains()
	names := make([]string, 0, len(domains))
	for _, d := range domains {
		names = append(names, string(d))
	}
	return names
}

func blobFor(sess *session.Session, name string) (store.BlobStoreInterface, error) {
	blob, ok := sess.Store().Blob(keys.Domain(name))
	if !ok {
		return nil, fmt.Errorf("unknown domain %q, expected one of %v", name, domainNames())
	}
	return blob, nil
}

func parseJSON(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON value: %w", err)
	}
	return v, nil
}

var errNotFound = errors.New("not found")

func resultError(res codec.Result, what string) error {
	switch {
	case res.OK():
		return nil
	case res.Status == codec.Corrupt:
		return fmt.Errorf("%s is corrupt: %w", what, res.Err)
	case res.Err != nil:
		return res.Err
	default:
		return fmt.Errorf("%s: %w", what, errNotFound)
	}
}
