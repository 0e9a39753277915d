package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	api := s.router.Group("/api/v1")

	api.POST("/credentials/verify", s.verifyCredentials)
	api.GET("/verification", s.verificationState)
	api.DELETE("/credentials", s.logout)

	api.GET("/balance/account", s.accountBalance)
	api.GET("/balance/customer", s.customerBalance)

	api.POST("/payments", s.createPayment)
	api.GET("/payments", s.listPayments)
	api.POST("/payments/:id/refresh", s.refreshPayment)
	api.POST("/history/refresh", s.refreshHistory)

	api.GET("/products", s.listProducts)
	api.POST("/products", s.addProduct)
	api.PUT("/products/:id", s.updateProduct)
	api.DELETE("/products/:id", s.deleteProduct)
	api.POST("/products/import", s.importProducts)

	api.POST("/withdrawals", s.requestWithdrawal)

	api.GET("/rates", s.exchangeRates)
}
