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

func (a Api) ListInstallments(c *gin.Context) {
	resp, err := a.chain.ReconcileInstallments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ListAlerts(c *gin.Context) {
	resp, err := a.chain.ListAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ListNotes(c *gin.Context) {
	resp, err := a.chain.ListNotes(c.Request.Context(), c.Query("target_role"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ContractStatus(c *gin.Context) {
	resp, err := a.chain.ContractStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ViewContract(c *gin.Context) {
	document, err := a.chain.ContractDocument(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/pdf", document)
}

func (a Api) PersonDetails(c *gin.Context) {
	var lookup model2.PersonDetails
	if err := c.ShouldBindJSON(&lookup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := lookup.ValidatePersonDetails(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp := a.chain.PersonDetails(c.Request.Context(), lookup.ClientID, lookup.RepID)
	c.JSON(http.StatusOK, resp)
}
