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
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrapps/appdaloja/pkg/codec"
	"github.com/mrapps/appdaloja/pkg/keys"
	"github.com/mrapps/appdaloja/pkg/logger"
	"github.com/mrapps/appdaloja/pkg/session"
)

type Handlers struct {
	session *session.Session
}

func NewHandlers(sess *session.Session) *Handlers {
	return &Handlers{
		session: sess,
	}
}

// DeviceResponse represents the device identity endpoint response
type DeviceResponse struct {
	UniqueID string `json:"uniqueId"`
}

// BlobResponse represents a whole-value domain
type BlobResponse struct {
	Domain keys.Domain `json:"domain"`
	Key    string      `json:"key"`
	Value  any         `json:"value"`
}

// AdsResponse represents the cached ads of one store
type AdsResponse struct {
	ID        string     `json:"id"`
	Ads       any        `json:"ads"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// AdsListResponse lists the stores with cached ads
type AdsListResponse struct {
	IDs []string `json:"ids"`
}

func (h *Handlers) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "appdaloja-session",
		"status":    "running",
		"namespace": h.session.Registry().Namespace(),
	})
}

// GetDevice returns the persisted device identifier. It never creates one.
func (h *Handlers) GetDevice(c *gin.Context) {
	res := h.session.Store().Device.Lookup(c.Request.Context())
	if !respondMissing(c, res, string(keys.UniqueID)) {
		return
	}

	id, _ := res.Value.(string)
	c.JSON(http.StatusOK, DeviceResponse{UniqueID: id})
}

func (h *Handlers) GetBlob(c *gin.Context) {
	domain := keys.Domain(c.Param("domain"))

	blob, ok := h.session.Store().Blob(domain)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown domain " + string(domain)})
		return
	}

	res := blob.Lookup(c.Request.Context())
	if !respondMissing(c, res, string(domain)) {
		return
	}

	c.JSON(http.StatusOK, BlobResponse{
		Domain: domain,
		Key:    blob.Key(),
		Value:  res.Value,
	})
}

func (h *Handlers) ListAds(c *gin.Context) {
	ids, err := h.session.Store().Ads.IDs(c.Request.Context())
	if err != nil {
		logger.Logger(c.Request.Context()).WithError(err).Error("failed to list cached ads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list cached ads"})
		return
	}

	c.JSON(http.StatusOK, AdsListResponse{IDs: ids})
}

func (h *Handlers) GetAds(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	res := h.session.Store().Ads.Lookup(ctx, id)
	if !respondMissing(c, res, "ads for "+id) {
		return
	}

	response := AdsResponse{ID: id, Ads: res.Value}
	if at, ok := h.session.GetAdsUpdatedAt(ctx, id); ok {
		response.UpdatedAt = &at
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handlers) GetSnapshot(c *gin.Context) {
	snap, err := h.session.Snapshot(c.Request.Context())
	if err != nil {
		logger.Logger(c.Request.Context()).WithError(err).Error("failed to snapshot session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to snapshot session"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// respondMissing writes the error response for a value that could not be read
// and reports whether the handler should continue
func respondMissing(c *gin.Context, res codec.Result, what string) bool {
	switch {
	case res.OK():
		return true
	case res.Status == codec.Corrupt:
		c.JSON(http.StatusNotFound, gin.H{"error": what + " is corrupt"})
	case res.Err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read " + what})
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	}
	return false
}
