// internal/handlers/account_handler.go
//
// Comptes d'épargne et opérations de guichet : dépôt, retrait, virement.
// Chaque mutation de solde est une transaction GORM avec verrouillage de
// ligne ; la concurrence entre requêtes est entièrement déléguée au moteur
// de base de données.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/accounting"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListAccountsHandler retourne la liste paginée des comptes.
func ListAccountsHandler(c *gin.Context) {
	var accounts []models.Account
	var totalRows int64

	query := config.DB.Model(&models.Account{}).Preload("Client").Order("id asc")
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de compter les comptes"})
		return
	}
	if err := query.Scopes(Paginate(c)).Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les comptes"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, accounts, totalRows))
}

// CreateAccountInput porte les paramètres d'ouverture d'un compte.
type CreateAccountInput struct {
	Number   string  `json:"number" binding:"required"`
	ClientID uint    `json:"clientId" binding:"required"`
	BranchID uint    `json:"branchId" binding:"required"`
	Minimum  float64 `json:"minimum"`
	Currency string  `json:"currency"`
}

// CreateAccountHandler ouvre un compte d'épargne pour un membre.
func CreateAccountHandler(c *gin.Context) {
	var input CreateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	var client models.Client
	if err := config.DB.First(&client, input.ClientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Membre introuvable"})
		return
	}

	account := models.Account{
		Number:   input.Number,
		ClientID: input.ClientID,
		BranchID: input.BranchID,
		Minimum:  input.Minimum,
		Currency: input.Currency,
		Status:   models.AccountActive,
	}
	if account.Currency == "" {
		account.Currency = "XOF"
	}

	if err := config.DB.Create(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'ouvrir le compte"})
		return
	}
	c.JSON(http.StatusCreated, account)
}

// GetAccountHandler retourne un compte avec son disponible.
func GetAccountHandler(c *gin.Context) {
	var account models.Account
	if err := config.DB.Preload("Client").Preload("Branch").First(&account, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Compte introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement du compte"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":   account,
		"available": account.Available(),
	})
}

// UpdateAccountInput porte la modification des paramètres d'un compte.
type UpdateAccountInput struct {
	Minimum   *float64 `json:"minimum"`
	Blocked   *float64 `json:"blocked"`
	Overdraft *float64 `json:"overdraft"`
	Status    *string  `json:"status"`
}

// UpdateAccountHandler modifie les paramètres d'un compte. La clôture exige
// un solde nul.
func UpdateAccountHandler(c *gin.Context) {
	var account models.Account
	if err := config.DB.First(&account, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Compte introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	var input UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	if input.Minimum != nil {
		account.Minimum = *input.Minimum
	}
	if input.Blocked != nil {
		account.Blocked = *input.Blocked
	}
	if input.Overdraft != nil {
		account.Overdraft = *input.Overdraft
	}
	if input.Status != nil {
		if *input.Status == models.AccountClosed && account.Balance != 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Un compte ne peut être clôturé qu'avec un solde nul",
				"balance": account.Balance,
			})
			return
		}
		account.Status = *input.Status
	}

	if err := config.DB.Save(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour le compte"})
		return
	}
	c.JSON(http.StatusOK, account)
}

// CashOperationRequest porte un dépôt ou un retrait au guichet.
type CashOperationRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	CaisseID *uint   `json:"caisseId"`
	Comment  string  `json:"comment"`
}

// DepositHandler encaisse un dépôt d'espèces sur un compte membre.
func DepositHandler(c *gin.Context) {
	var req CashOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	var account models.Account
	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'ouvrir la transaction"})
		return
	}

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, c.Param("id")).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Compte introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche du compte"})
		return
	}

	if account.Status != models.AccountActive {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le compte n'est pas actif"})
		return
	}

	if err := creditCaisse(tx, req.CaisseID, req.Amount); err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Model(&account).Update("balance", gorm.Expr("balance + ?", req.Amount)).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créditer le compte"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de valider la transaction"})
		return
	}

	entry := postAccountEntry(c, "depot",
		fmt.Sprintf("Dépôt espèces sur compte %s", account.Number),
		&account.BranchID, &account.ID, accounting.DepositLegs(req.Amount))

	c.JSON(http.StatusOK, gin.H{
		"message":    "Dépôt enregistré",
		"newBalance": account.Balance + req.Amount,
		"reference":  entryReference(entry),
	})
}

// WithdrawalHandler décaisse un retrait, sous condition de disponible :
// solde - bloqué - minimum + découvert >= montant. Un disponible insuffisant
// est une erreur utilisateur, jamais réessayée.
func WithdrawalHandler(c *gin.Context) {
	var req CashOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	var account models.Account
	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'ouvrir la transaction"})
		return
	}

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, c.Param("id")).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Compte introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche du compte"})
		return
	}

	if account.Status != models.AccountActive {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le compte n'est pas actif"})
		return
	}

	if account.Available() < req.Amount {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Solde disponible insuffisant",
			"available": account.Available(),
		})
		return
	}

	if err := debitCaisse(tx, req.CaisseID, req.Amount); err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Model(&account).Update("balance", gorm.Expr("balance - ?", req.Amount)).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de débiter le compte"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de valider la transaction"})
		return
	}

	entry := postAccountEntry(c, "retrait",
		fmt.Sprintf("Retrait espèces sur compte %s", account.Number),
		&account.BranchID, &account.ID, accounting.WithdrawalLegs(req.Amount))

	c.JSON(http.StatusOK, gin.H{
		"message":    "Retrait enregistré",
		"newBalance": account.Balance - req.Amount,
		"reference":  entryReference(entry),
	})
}

// TransferRequest porte un virement interne entre deux comptes membres.
type TransferRequest struct {
	FromAccountID uint    `json:"fromAccountId" binding:"required"`
	ToAccountID   uint    `json:"toAccountId" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Comment       string  `json:"comment"`
}

// TransferHandler exécute un virement interne : rejeté si les deux comptes
// sont identiques, si l'un des deux est inactif ou si le disponible de
// l'origine est insuffisant.
func TransferHandler(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	if req.FromAccountID == req.ToAccountID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les comptes d'origine et de destination sont identiques"})
		return
	}

	var source, dest models.Account
	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'ouvrir la transaction"})
		return
	}

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&source, req.FromAccountID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Compte d'origine introuvable"})
		return
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&dest, req.ToAccountID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Compte de destination introuvable"})
		return
	}

	if source.Status != models.AccountActive || dest.Status != models.AccountActive {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les deux comptes doivent être actifs"})
		return
	}

	if source.Available() < req.Amount {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Solde disponible insuffisant sur le compte d'origine",
			"available": source.Available(),
		})
		return
	}

	if err := tx.Model(&source).Update("balance", gorm.Expr("balance - ?", req.Amount)).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de débiter le compte d'origine"})
		return
	}
	if err := tx.Model(&dest).Update("balance", gorm.Expr("balance + ?", req.Amount)).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créditer le compte de destination"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de valider la transaction"})
		return
	}

	// Rattachée au compte d'origine ; la destination apparaît dans le libellé.
	entry := postAccountEntry(c, "virement",
		fmt.Sprintf("Virement de %s vers %s", source.Number, dest.Number),
		&source.BranchID, &source.ID, accounting.TransferLegs(req.Amount))

	c.JSON(http.StatusOK, gin.H{
		"message":   "Virement exécuté",
		"reference": entryReference(entry),
	})
}

// ListAccountOperationsHandler retourne l'historique des opérations d'un
// compte : les écritures comptables qui lui sont rattachées, récentes d'abord.
func ListAccountOperationsHandler(c *gin.Context) {
	var entries []models.AccountingEntry
	var totalRows int64

	query := config.DB.Model(&models.AccountingEntry{}).Preload("Lines").
		Where("account_id = ?", c.Param("id")).
		Order("date desc, id desc")

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de compter les opérations"})
		return
	}
	if err := query.Scopes(Paginate(c)).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les opérations"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, entries, totalRows))
}

// entryReference retourne la référence d'écriture, ou une chaîne vide quand
// la passation comptable a échoué (l'opération principale reste acquise).
func entryReference(entry *models.AccountingEntry) string {
	if entry == nil {
		return ""
	}
	return entry.Reference
}

// creditCaisse alimente la caisse du guichetier lors d'un encaissement.
func creditCaisse(tx *gorm.DB, caisseID *uint, amount float64) error {
	if caisseID == nil {
		return nil
	}
	var caisse models.Caisse
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&caisse, *caisseID).Error; err != nil {
		return errors.New("Caisse introuvable")
	}
	if caisse.Status != models.CaisseOpen {
		return errors.New("La caisse n'est pas ouverte")
	}
	return tx.Model(&caisse).Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// debitCaisse prélève la caisse du guichetier lors d'un décaissement.
func debitCaisse(tx *gorm.DB, caisseID *uint, amount float64) error {
	if caisseID == nil {
		return nil
	}
	var caisse models.Caisse
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&caisse, *caisseID).Error; err != nil {
		return errors.New("Caisse introuvable")
	}
	if caisse.Status != models.CaisseOpen {
		return errors.New("La caisse n'est pas ouverte")
	}
	if caisse.Balance < amount {
		return errors.New("Encaisse insuffisante dans la caisse")
	}
	return tx.Model(&caisse).Update("balance", gorm.Expr("balance - ?", amount)).Error
}
