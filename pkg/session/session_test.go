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

package session_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/cache/inmemory"
	"github.com/mrapps/appdaloja/pkg/cache/sqlite"
	"github.com/mrapps/appdaloja/pkg/config"
	"github.com/mrapps/appdaloja/pkg/identity"
	"github.com/mrapps/appdaloja/pkg/keys"
	"github.com/mrapps/appdaloja/pkg/session"
)

var _ = Describe("Session", func() {
	var (
		ctx context.Context
		c   cache.Cache
		s   *session.Session
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		c, err = inmemory.NewCache(&inmemory.Config{DefaultExpiration: 0, CleanupInterval: 600})
		Expect(err).NotTo(HaveOccurred())

		s = session.New(c, session.WithPlatform(identity.StaticPlatform{ID: "device-1"}))
		DeferCleanup(func() {
			Expect(s.Close()).To(Succeed())
		})
	})

	Context("whole-value domains", func() {
		type pair struct {
			set func(context.Context, any) error
			get func(context.Context) any
		}

		domains := []struct {
			name      string
			accessors func() pair
		}{
			{"global", func() pair { return pair{s.SetGlobal, s.GetGlobal} }},
			{"store", func() pair { return pair{s.SetStore, s.GetStore} }},
			{"profile", func() pair { return pair{s.SetProfile, s.GetProfile} }},
			{"tempProfile", func() pair { return pair{s.SetTempProfile, s.GetTempProfile} }},
			{"config", func() pair { return pair{s.SetConfig, s.GetConfig} }},
		}

		for _, d := range domains {
			name, accessors := d.name, d.accessors

			It("round-trips the "+name+" blob", func() {
				p := accessors()
				value := map[string]any{"name": "Loja", "tags": []any{"a", "b"}, "count": float64(3)}
				Expect(p.set(ctx, value)).To(Succeed())
				Expect(p.get(ctx)).To(Equal(value))
			})

			It("replaces the "+name+" blob as a whole", func() {
				p := accessors()
				Expect(p.set(ctx, map[string]any{"a": float64(1)})).To(Succeed())
				Expect(p.set(ctx, map[string]any{"b": float64(2)})).To(Succeed())
				Expect(p.get(ctx)).To(Equal(map[string]any{"b": float64(2)}))
			})

			It("reads a missing "+name+" blob as nil", func() {
				Expect(accessors().get(ctx)).To(BeNil())
			})
		}

		It("reads a corrupt value as nil", func() {
			Expect(c.Set(ctx, "com.mrapps.appdaloja:global", "{broken", cache.NoExpiration)).To(Succeed())
			Expect(s.GetGlobal(ctx)).To(BeNil())
		})

		It("rejects values that cannot be serialized", func() {
			err := s.SetConfig(ctx, map[string]any{"fn": func() {}})
			Expect(err).To(MatchError(ContainSubstring("failed to marshal config")))
		})
	})

	Context("device identity", func() {
		It("persists the platform identifier", func() {
			id, err := s.UniqueID(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("device-1"))
			Expect(s.Store().Device.GetUniqueID(ctx)).To(Equal("device-1"))
		})

		It("never regenerates a persisted identifier", func() {
			Expect(s.Store().Device.SetUniqueID(ctx, "persisted")).To(Succeed())

			for i := 0; i < 3; i++ {
				id, err := s.UniqueID(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(id).To(Equal("persisted"))
			}
		})

		It("generates an identifier when the platform has none", func() {
			other := session.New(c,
				session.WithRegistry(mustRegistry("com.example.generated")),
				session.WithPlatform(identity.StaticPlatform{}),
				session.WithIdentityOptions(identity.WithGenerator(func() string { return "generated" })),
			)

			Expect(other.EnsureUniqueID(ctx)).To(Succeed())
			id, err := other.UniqueID(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("generated"))
		})
	})

	Context("ads cache", func() {
		It("keeps partitions isolated", func() {
			Expect(s.SetAds(ctx, "A", []any{"x"})).To(Succeed())
			Expect(s.SetAds(ctx, "B", []any{"y"})).To(Succeed())
			Expect(s.GetAds(ctx, "A")).To(Equal([]any{"x"}))
		})

		It("resolves the default identifier from the store profile", func() {
			Expect(s.SetStore(ctx, map[string]any{"_id": "Z", "name": "Loja Z"})).To(Succeed())
			Expect(s.SetAds(ctx, "Z", []any{"ad"})).To(Succeed())

			Expect(s.GetActiveStoreAds(ctx)).To(Equal(s.GetAds(ctx, "Z")))
			Expect(s.GetActiveStoreAds(ctx)).To(Equal([]any{"ad"}))
		})

		It("has no default identifier without a store profile", func() {
			_, ok := s.ActiveStoreID(ctx)
			Expect(ok).To(BeFalse())
			Expect(s.GetActiveStoreAds(ctx)).To(BeNil())
		})

		It("formats numeric store identifiers", func() {
			Expect(s.SetStore(ctx, map[string]any{"_id": 42})).To(Succeed())
			id, ok := s.ActiveStoreID(ctx)
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal("42"))
		})

		It("writes content and freshness independently", func() {
			Expect(s.SetAds(ctx, "A", []any{"x"})).To(Succeed())

			_, ok := s.GetAdsUpdatedAt(ctx, "A")
			Expect(ok).To(BeFalse())
			Expect(s.GetAds(ctx, "A")).To(Equal([]any{"x"}))

			at := time.Date(2024, 3, 5, 17, 7, 9, 0, time.UTC)
			Expect(s.SetAdsUpdatedAt(ctx, "A", at)).To(Succeed())
			got, ok := s.GetAdsUpdatedAt(ctx, "A")
			Expect(ok).To(BeTrue())
			Expect(got).To(BeTemporally("==", at))
		})
	})

	Context("snapshot", func() {
		It("collects every domain without creating an identifier", func() {
			at := time.Date(2024, 3, 5, 17, 7, 9, 0, time.UTC)
			Expect(s.SetGlobal(ctx, map[string]any{"theme": "dark"})).To(Succeed())
			Expect(s.Store().Ads.Refresh(ctx, "A", []any{"x"}, at)).To(Succeed())
			Expect(s.SetAds(ctx, "B", []any{"y"})).To(Succeed())

			snap, err := s.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(snap.Namespace).To(Equal(keys.DefaultNamespace))
			Expect(snap.UniqueID).To(BeEmpty())
			Expect(snap.Blobs).To(HaveKeyWithValue(keys.Global, map[string]any{"theme": "dark"}))
			Expect(snap.Blobs).NotTo(HaveKey(keys.Config))
			Expect(snap.Ads).To(HaveLen(2))
			Expect(snap.Ads["A"].UpdatedAt).NotTo(BeNil())
			Expect(*snap.Ads["A"].UpdatedAt).To(BeTemporally("==", at))
			Expect(snap.Ads["B"].UpdatedAt).To(BeNil())
		})
	})
})

var _ = Describe("Open", func() {
	It("opens a durable store from configuration", func() {
		ctx := context.Background()
		path := filepath.Join(GinkgoT().TempDir(), "session.db")

		cfg := &config.AppConfig{
			Session: config.SessionConfig{Namespace: keys.DefaultNamespace},
			Cache: cache.Config{
				Driver: cache.DriverSQLite,
				SQLite: &sqlite.Config{Path: path, BusyTimeout: time.Second},
			},
		}

		s, err := session.Open(ctx, cfg, identity.StaticPlatform{ID: "device-1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.SetConfig(ctx, map[string]any{"v": float64(1)})).To(Succeed())
		id, err := s.UniqueID(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())

		// a second session sees the same state
		reopened, err := session.Open(ctx, cfg, identity.StaticPlatform{ID: "other-device"})
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		Expect(reopened.GetConfig(ctx)).To(Equal(map[string]any{"v": float64(1)}))
		again, err := reopened.UniqueID(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(id))
	})

	It("rejects an empty namespace", func() {
		_, err := session.Open(context.Background(), &config.AppConfig{}, nil)
		Expect(err).To(MatchError(keys.ErrEmptyNamespace))
	})
})

func mustRegistry(namespace string) keys.Registry {
	r, err := keys.New(namespace)
	Expect(err).NotTo(HaveOccurred())
	return r
}
