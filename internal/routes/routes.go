package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"accountant-backend/internal/config"
	handler "accountant-backend/internal/handlers"
	"accountant-backend/internal/repository"
	"accountant-backend/internal/services/analysis"
	"accountant-backend/internal/services/extraction"
	"accountant-backend/internal/services/fiken"
	"accountant-backend/internal/services/folio"
	"accountant-backend/internal/services/matching"
	"accountant-backend/internal/services/openai"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, logger *slog.Logger) {
	receiptRepo := repository.NewReceiptRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	entryRepo := repository.NewAccountingEntryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	reconStore := repository.NewReconciliationStore(db)

	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	visionLLM := openai.NewClient(cfg.OpenAIAPIKey, cfg.VisionModel)
	folioClient := folio.NewClient(cfg.FolioBaseURL, cfg.FolioSessionCookie, cfg.FolioOrgNumber, logger)
	fikenClient := fiken.NewClient(cfg.FikenAPIURL, cfg.FikenToken, cfg.FikenCompanyID)

	processor := extraction.NewProcessor(visionLLM, receiptRepo, logger)
	syncer := folio.NewSyncer(folioClient, paymentRepo, transactionRepo)
	adjudicator := matching.NewAIAdjudicator(llm)
	engine := matching.NewEngine(reconStore, adjudicator, folioClient, logger)
	fikenService := fiken.NewService(fikenClient, receiptRepo, entryRepo, logger)
	analysisService := analysis.NewService(llm, transactionRepo, cfg.OpenAIModel, logger)

	receiptHandler := handler.NewReceiptHandler(receiptRepo, processor, cfg.UploadFolder, cfg.MaxFileSize, logger)
	paymentHandler := handler.NewPaymentHandler(paymentRepo, syncer, logger)
	matchHandler := handler.NewMatchHandler(engine, reconStore, folioClient)
	accountingHandler := handler.NewAccountingHandler(fikenService, entryRepo, logger)
	analysisHandler := handler.NewAnalysisHandler(analysisService, transactionRepo)
	statusHandler := handler.NewStatusHandler(receiptRepo, paymentRepo, entryRepo, folioClient, fikenClient)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	api.GET("/status", statusHandler.Status)

	receipts := api.Group("/receipts")
	receipts.POST("/upload", receiptHandler.Upload)
	receipts.GET("", receiptHandler.List)
	receipts.GET("/:id", receiptHandler.Get)
	receipts.POST("/:id/process", receiptHandler.Process)

	payments := api.Group("/payments")
	payments.POST("/sync", paymentHandler.Sync)
	payments.GET("", paymentHandler.List)

	match := api.Group("/match")
	match.POST("/auto", matchHandler.AutoMatch)
	match.POST("/manual", matchHandler.ManualMatch)

	api.GET("/matches", matchHandler.ListMatches)

	expenses := api.Group("/expenses")
	expenses.POST("/match-receipts", matchHandler.ExpenseMatch)
	expenses.GET("/unmatched", matchHandler.UnmatchedExpenses)

	accounting := api.Group("/accounting")
	accounting.POST("/sync/:receiptId", accountingHandler.SyncReceipt)
	accounting.POST("/sync-all", accountingHandler.SyncAll)
	accounting.GET("/entries", accountingHandler.ListEntries)

	analysisGroup := api.Group("/analysis")
	analysisGroup.POST("/deep", analysisHandler.RunDeep)
	analysisGroup.GET("/reports", analysisHandler.ListReports)
}
