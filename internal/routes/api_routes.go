// internal/routes/api_routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kouadiojose/hopefund-sub000/internal/handlers"
	"github.com/kouadiojose/hopefund-sub000/internal/middleware"
)

// RegisterAPIRoutes enregistre tous les itinéraires de l'API, derrière
// l'authentification. Les droits fins sont portés par PermissionMiddleware.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		// --- MEMBRES ---
		clients := apiGroup.Group("/clients")
		{
			clients.GET("", middleware.PermissionMiddleware("clients_view"), handlers.ListClientsHandler)
			clients.POST("", middleware.PermissionMiddleware("clients_create"), handlers.CreateClientHandler)
			clients.GET("/:id", middleware.PermissionMiddleware("clients_view"), handlers.GetClientHandler)
			clients.PUT("/:id", middleware.PermissionMiddleware("clients_edit"), handlers.UpdateClientHandler)
			clients.DELETE("/:id", middleware.PermissionMiddleware("clients_delete"), handlers.DeleteClientHandler)
		}

		// --- COMPTES ---
		accounts := apiGroup.Group("/comptes")
		{
			accounts.GET("", middleware.PermissionMiddleware("accounts_view"), handlers.ListAccountsHandler)
			accounts.POST("", middleware.PermissionMiddleware("accounts_create"), handlers.CreateAccountHandler)
			accounts.GET("/:id", middleware.PermissionMiddleware("accounts_view"), handlers.GetAccountHandler)
			accounts.PUT("/:id", middleware.PermissionMiddleware("accounts_edit"), handlers.UpdateAccountHandler)
			accounts.GET("/:id/operations", middleware.PermissionMiddleware("accounts_view"), handlers.ListAccountOperationsHandler)
			accounts.POST("/:id/depot", middleware.PermissionMiddleware("accounts_operate"), handlers.DepositHandler)
			accounts.POST("/:id/retrait", middleware.PermissionMiddleware("accounts_operate"), handlers.WithdrawalHandler)
			accounts.POST("/virements", middleware.PermissionMiddleware("accounts_operate"), handlers.TransferHandler)
		}

		// --- CAISSES ---
		caisses := apiGroup.Group("/caisses")
		{
			caisses.GET("", middleware.PermissionMiddleware("caisses_view"), handlers.ListCaissesHandler)
			caisses.POST("", middleware.PermissionMiddleware("caisses_manage"), handlers.CreateCaisseHandler)
			caisses.POST("/:id/ouverture", middleware.PermissionMiddleware("caisses_operate"), handlers.OpenCaisseHandler)
			caisses.POST("/:id/fermeture", middleware.PermissionMiddleware("caisses_operate"), handlers.CloseCaisseHandler)
			caisses.POST("/:id/approvisionnement", middleware.PermissionMiddleware("caisses_manage"), handlers.FundCaisseHandler)
			caisses.POST("/:id/reversement", middleware.PermissionMiddleware("caisses_manage"), handlers.ReturnCaisseHandler)
			caisses.GET("/:id/mouvements", middleware.PermissionMiddleware("caisses_view"), handlers.ListCaisseMovementsHandler)
		}

		// --- CRÉDITS ---
		loans := apiGroup.Group("/prets")
		{
			loans.GET("", middleware.PermissionMiddleware("loans_view"), handlers.ListLoansHandler)
			loans.POST("", middleware.PermissionMiddleware("loans_create"), handlers.CreateLoanHandler)
			loans.POST("/simulation", middleware.PermissionMiddleware("loans_view"), handlers.SimulateScheduleHandler)
			loans.GET("/:id", middleware.PermissionMiddleware("loans_view"), handlers.GetLoanHandler)
			loans.POST("/:id/examen", middleware.PermissionMiddleware("loans_review"), handlers.ReviewLoanHandler)
			loans.POST("/:id/approbation", middleware.PermissionMiddleware("loans_approve"), handlers.ApproveLoanHandler)
			loans.POST("/:id/rejet", middleware.PermissionMiddleware("loans_approve"), handlers.RejectLoanHandler)
			loans.POST("/:id/annulation", middleware.PermissionMiddleware("loans_approve"), handlers.CancelLoanHandler)
			loans.POST("/:id/deboursement", middleware.PermissionMiddleware("loans_disburse"), handlers.DisburseLoanHandler)
			loans.GET("/:id/echeancier", middleware.PermissionMiddleware("loans_view"), handlers.GetScheduleHandler)
			loans.GET("/:id/situation", middleware.PermissionMiddleware("loans_view"), handlers.GetLoanStatusHandler)
			loans.GET("/:id/remboursements", middleware.PermissionMiddleware("loans_view"), handlers.ListRepaymentsHandler)
			loans.POST("/:id/remboursements", middleware.PermissionMiddleware("loans_repay"), handlers.CreateRepaymentHandler)
			loans.POST("/:id/remboursements/:repaymentId/extourne", middleware.PermissionMiddleware("loans_reverse"), handlers.ReverseRepaymentHandler)
		}

		// --- PRODUITS DE CRÉDIT ---
		products := apiGroup.Group("/produits")
		{
			products.GET("", middleware.PermissionMiddleware("products_view"), handlers.ListLoanProductsHandler)
			products.POST("", middleware.PermissionMiddleware("products_manage"), handlers.CreateLoanProductHandler)
			products.GET("/:id", middleware.PermissionMiddleware("products_view"), handlers.GetLoanProductHandler)
			products.PUT("/:id", middleware.PermissionMiddleware("products_manage"), handlers.UpdateLoanProductHandler)
		}

		// --- RAPPORTS ---
		reports := apiGroup.Group("/rapports")
		{
			reports.GET("/portefeuille", middleware.PermissionMiddleware("reports_view"), handlers.PortfolioReportHandler)
			reports.GET("/retards", middleware.PermissionMiddleware("reports_view"), handlers.DelinquencyReportHandler)
			reports.GET("/retards/export", middleware.PermissionMiddleware("reports_export"), handlers.ExportDelinquencyHandler)
		}

		// --- JOURNAL COMPTABLE ---
		journal := apiGroup.Group("/journal")
		{
			// Flux temps réel des écritures.
			journal.GET("/ws", func(c *gin.Context) {
				handlers.JournalWSEndpoint(c)
			})
			journal.GET("", middleware.PermissionMiddleware("journal_view"), handlers.ListJournalHandler)
			journal.GET("/:reference", middleware.PermissionMiddleware("journal_view"), handlers.GetJournalEntryHandler)
			journal.GET("/:reference/recu", middleware.PermissionMiddleware("journal_view"), handlers.GetReceiptHandler)
		}

		// --- AGENCES ---
		branches := apiGroup.Group("/agences")
		{
			branches.GET("", handlers.ListBranchesHandler)
			branches.POST("", middleware.PermissionMiddleware("branches_manage"), handlers.CreateBranchHandler)
			branches.GET("/:id", handlers.GetBranchHandler)
			branches.PUT("/:id", middleware.PermissionMiddleware("branches_manage"), handlers.UpdateBranchHandler)
		}

		// --- ADMINISTRATION ---
		admin := apiGroup.Group("/admin")
		{
			admin.GET("/users", middleware.PermissionMiddleware("users_view"), handlers.ListUsersHandler)
			admin.POST("/users", middleware.PermissionMiddleware("users_manage"), handlers.CreateUserHandler)
			admin.GET("/users/:id", middleware.PermissionMiddleware("users_view"), handlers.GetUserHandler)
			admin.PUT("/users/:id", middleware.PermissionMiddleware("users_manage"), handlers.UpdateUserHandler)
			admin.DELETE("/users/:id", middleware.PermissionMiddleware("users_manage"), handlers.DeleteUserHandler)

			admin.GET("/roles", middleware.PermissionMiddleware("roles_view"), handlers.ListRolesHandler)
			admin.POST("/roles", middleware.PermissionMiddleware("roles_manage"), handlers.CreateRoleHandler)
			admin.GET("/roles/:id", middleware.PermissionMiddleware("roles_view"), handlers.GetRoleHandler)
			admin.PUT("/roles/:id", middleware.PermissionMiddleware("roles_manage"), handlers.UpdateRoleHandler)
			admin.DELETE("/roles/:id", middleware.PermissionMiddleware("roles_manage"), handlers.DeleteRoleHandler)

			admin.GET("/permissions", middleware.PermissionMiddleware("roles_view"), handlers.ListPermissionsHandler)
		}

		// Droits de l'agent connecté, pour construire le menu côté client.
		apiGroup.GET("/me/permissions", handlers.MyPermissionsHandler)
	}
}
