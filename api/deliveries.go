/*
Copyright 2025 Orderchain Authors.

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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/vertis-systems/orderchain/api/model"
)

func (a Api) ListDeliveries(c *gin.Context) {
	resp, err := a.chain.ListDeliveries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ListPendingApproval(c *gin.Context) {
	resp, err := a.chain.ListPendingApproval(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ListToShip(c *gin.Context) {
	resp, err := a.chain.ListToShip(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) SubmitDeliveryProof(c *gin.Context) {
	var proof model2.SubmitDeliveryProof
	if err := c.ShouldBindJSON(&proof); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := proof.ValidateSubmitDeliveryProof(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	document, err := proof.DocumentBytes()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	txid, err := a.chain.SubmitDeliveryProof(c.Request.Context(), proof.DeliveryID, document)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"txid": txid})
}

func (a Api) ApproveDelivery(c *gin.Context) {
	var approval model2.ApproveDelivery
	if err := c.ShouldBindJSON(&approval); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := approval.ValidateApproveDelivery(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := a.chain.ApproveDelivery(c.Request.Context(), approval.DeliveryID, approval.Reviewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Confirmado"})
}

func (a Api) ViewDeliveryDocument(c *gin.Context) {
	hash, passed := c.Params.Get("hash")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hash is required. pass hash in the route /:hash"})
		return
	}

	document, err := a.chain.DeliveryDocument(c.Request.Context(), hash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", document)
}
