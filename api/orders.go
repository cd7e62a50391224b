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

func (a Api) SubmitOrder(c *gin.Context) {
	var newOrder model2.SubmitOrder
	if err := c.ShouldBindJSON(&newOrder); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newOrder.ValidateSubmitOrder(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	signature, err := newOrder.SignatureBytes()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.chain.SubmitOrder(c.Request.Context(), newOrder.ToSubmitOrderInput(c.ClientIP(), signature))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) ListOrders(c *gin.Context) {
	resp, err := a.chain.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ReviewOrder(c *gin.Context) {
	var review model2.ReviewOrder
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := review.ValidateReviewOrder(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := a.chain.ReviewOrder(c.Request.Context(), review.OrderTxID, review.Decision, review.Reviewer, review.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_txid": review.OrderTxID, "decision": review.Decision})
}

func (a Api) ViewOrderDocument(c *gin.Context) {
	hash, passed := c.Params.Get("hash")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hash is required. pass hash in the route /:hash"})
		return
	}

	document, err := a.chain.OrderDocument(c.Request.Context(), hash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", document)
}
