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
	"github.com/gin-gonic/gin"

	"github.com/vertis-systems/orderchain"
	"github.com/vertis-systems/orderchain/api/middleware"
	"github.com/vertis-systems/orderchain/config"
	"github.com/vertis-systems/orderchain/internal/apierror"
)

type Api struct {
	chain  *orderchain.Orderchain
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/api/order/submit", a.SubmitOrder)
	router.GET("/api/orders/list", a.ListOrders)
	router.POST("/api/order/review", a.ReviewOrder)
	router.GET("/api/orders/view/:hash", a.ViewOrderDocument)

	router.GET("/api/deliveries/list", a.ListDeliveries)
	router.GET("/api/deliveries/pending-approval", a.ListPendingApproval)
	router.GET("/api/deliveries/to-ship", a.ListToShip)
	router.GET("/api/deliveries/view/:hash", a.ViewDeliveryDocument)
	router.POST("/api/delivery/submit", a.SubmitDeliveryProof)
	router.POST("/api/delivery/approve", a.ApproveDelivery)

	router.GET("/api/installments", a.ListInstallments)
	router.GET("/api/alerts", a.ListAlerts)
	router.GET("/api/notes", a.ListNotes)

	router.GET("/api/contract/status", a.ContractStatus)
	router.GET("/api/contract/view", a.ViewContract)
	router.POST("/api/person-details", a.PersonDetails)

	return a.router
}

func NewAPI(chain *orderchain.Orderchain) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{chain: chain, router: r}
}

// respondError maps a workflow error to its HTTP status. Typed failures keep
// their status through wrapping; anything untyped is a 500.
func respondError(c *gin.Context, err error) {
	c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
}
