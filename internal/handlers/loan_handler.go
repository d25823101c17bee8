// internal/handlers/loan_handler.go
//
// Cycle de vie des crédits : demande, examen, approbation, déboursement,
// remboursement. Les transitions sont uniquement des changements de statut,
// un dossier n'est jamais supprimé.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/accounting"
	"github.com/kouadiojose/hopefund-sub000/internal/finance"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListLoansHandler retourne la liste paginée des crédits.
func ListLoansHandler(c *gin.Context) {
	var loans []models.Loan
	var totalRows int64

	query := config.DB.Model(&models.Loan{}).Preload("Client").Preload("Product").Order("id desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de compter les crédits"})
		return
	}
	if err := query.Scopes(Paginate(c)).Find(&loans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les crédits"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, loans, totalRows))
}

// CreateLoanInput porte une demande de crédit.
type CreateLoanInput struct {
	ClientID   uint    `json:"clientId" binding:"required"`
	BranchID   uint    `json:"branchId" binding:"required"`
	ProductID  *uint   `json:"productId"`
	AccountID  *uint   `json:"accountId"`
	Principal  float64 `json:"principal" binding:"required,gt=0"`
	AnnualRate float64 `json:"annualRate"`
	TermMonths int     `json:"termMonths" binding:"required,gt=0"`
	Purpose    string  `json:"purpose"`
}

// CreateLoanHandler enregistre une demande de crédit.
func CreateLoanHandler(c *gin.Context) {
	var input CreateLoanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	var client models.Client
	if err := config.DB.First(&client, input.ClientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Membre introuvable"})
		return
	}

	loan := models.Loan{
		Number:      loanNumber(),
		ClientID:    input.ClientID,
		BranchID:    input.BranchID,
		ProductID:   input.ProductID,
		AccountID:   input.AccountID,
		Principal:   input.Principal,
		AnnualRate:  input.AnnualRate,
		TermMonths:  input.TermMonths,
		Purpose:     input.Purpose,
		Status:      models.LoanRequested,
		RequestDate: time.Now(),
	}

	// Les bornes du produit encadrent la demande.
	if input.ProductID != nil {
		var product models.LoanProduct
		if err := config.DB.First(&product, *input.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit de crédit introuvable"})
			return
		}
		if loan.AnnualRate == 0 {
			loan.AnnualRate = product.DefaultRate
		}
		if err := checkProductBounds(&product, &loan); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := config.DB.Create(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'enregistrer la demande"})
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// GetLoanHandler retourne un dossier de crédit complet.
func GetLoanHandler(c *gin.Context) {
	var loan models.Loan
	if err := config.DB.Preload("Client").Preload("Product").Preload("Account").
		First(&loan, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Crédit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement du crédit"})
		return
	}
	c.JSON(http.StatusOK, loan)
}

// ReviewLoanHandler passe une demande en examen.
func ReviewLoanHandler(c *gin.Context) {
	transitionLoan(c, []string{models.LoanRequested}, models.LoanUnderReview, "Dossier mis en examen")
}

// ApproveLoanHandler approuve un dossier en examen.
func ApproveLoanHandler(c *gin.Context) {
	loan := transitionLoan(c, []string{models.LoanRequested, models.LoanUnderReview}, models.LoanApproved, "Crédit approuvé")
	if loan != nil {
		now := time.Now()
		config.DB.Model(loan).Update("approval_date", now)
	}
}

// RejectLoanHandler rejette un dossier.
func RejectLoanHandler(c *gin.Context) {
	transitionLoan(c, []string{models.LoanRequested, models.LoanUnderReview}, models.LoanRejected, "Crédit rejeté")
}

// CancelLoanHandler annule un dossier avant déboursement.
func CancelLoanHandler(c *gin.Context) {
	transitionLoan(c, []string{models.LoanRequested, models.LoanUnderReview, models.LoanApproved}, models.LoanCancelled, "Crédit annulé")
}

// transitionLoan applique une transition de statut si l'état courant le permet.
func transitionLoan(c *gin.Context, from []string, to, message string) *models.Loan {
	var loan models.Loan
	if err := config.DB.First(&loan, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Crédit introuvable"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return nil
	}

	allowed := false
	for _, s := range from {
		if loan.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Transition impossible depuis le statut %q", loan.Status),
		})
		return nil
	}

	if err := config.DB.Model(&loan).Update("status", to).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de changer le statut"})
		return nil
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "status": to})
	return &loan
}

// DisburseLoanRequest porte le déboursement d'un crédit approuvé.
type DisburseLoanRequest struct {
	AccountID *uint  `json:"accountId"`
	Date      string `json:"date"` // défaut : aujourd'hui
}

// DisburseLoanHandler débloque les fonds d'un crédit approuvé : crédite le
// compte de déboursement du net (frais et assurance retenus via les formules
// du produit), fige la date de déboursement et persiste l'échéancier généré.
// Le déboursement démarre l'horloge de remboursement.
func DisburseLoanHandler(c *gin.Context) {
	// Le corps est optionnel : sans corps on débourse aujourd'hui sur le
	// compte déjà rattaché au dossier.
	var req DisburseLoanRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
			return
		}
	}

	disbursementDate := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide. Utilisez YYYY-MM-DD."})
			return
		}
		disbursementDate = parsed
	}

	var loan models.Loan
	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'ouvrir la transaction"})
		return
	}

	if err := tx.Preload("Product").Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, c.Param("id")).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Crédit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche du crédit"})
		return
	}

	if loan.Status != models.LoanApproved {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seul un crédit approuvé peut être déboursé"})
		return
	}

	if req.AccountID != nil {
		loan.AccountID = req.AccountID
	}
	if loan.AccountID == nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun compte de déboursement n'est renseigné"})
		return
	}

	var account models.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, *loan.AccountID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Compte de déboursement introuvable"})
		return
	}
	if account.Status != models.AccountActive {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le compte de déboursement n'est pas actif"})
		return
	}

	// Frais de dossier et assurance d'après les formules du produit.
	var fees, insurance float64
	if loan.Product != nil {
		var err error
		if fees, err = evaluateFormula(loan.Product.FeeFormula, loan.Principal, loan.TermMonths); err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Formule de frais invalide : " + err.Error()})
			return
		}
		if insurance, err = evaluateFormula(loan.Product.InsuranceFormula, loan.Principal, loan.TermMonths); err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Formule d'assurance invalide : " + err.Error()})
			return
		}
	}

	net := loan.Principal - fees - insurance
	if net <= 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les retenues excèdent le montant du crédit"})
		return
	}

	if err := tx.Model(&account).Update("balance", gorm.Expr("balance + ?", net)).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créditer le compte de déboursement"})
		return
	}

	updates := map[string]interface{}{
		"status":            models.LoanActive,
		"disbursement_date": disbursementDate,
		"account_id":        *loan.AccountID,
		"fees":              fees,
		"insurance":         insurance,
	}
	if err := tx.Model(&loan).Updates(updates).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour le crédit"})
		return
	}

	// L'échéancier est persisté au déboursement ; il reste recomputable à
	// l'identique depuis les paramètres du crédit.
	schedule := finance.GenerateSchedule(loan.Principal, loan.AnnualRate, loan.TermMonths, disbursementDate)
	installments := make([]models.Installment, 0, len(schedule))
	for _, line := range schedule {
		installments = append(installments, models.Installment{
			LoanID:             loan.ID,
			Number:             line.Number,
			DueDate:            line.DueDate,
			PrincipalDue:       line.Principal,
			InterestDue:        line.Interest,
			PrincipalRemaining: line.Principal,
			InterestRemaining:  line.Interest,
			Status:             models.InstallmentPending,
		})
	}
	if len(installments) > 0 {
		if err := tx.Create(&installments).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'enregistrer l'échéancier"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de valider la transaction"})
		return
	}

	entry := postAccountEntry(c, "deboursement",
		fmt.Sprintf("Déboursement crédit %s", loan.Number),
		&loan.BranchID, loan.AccountID, accounting.DisbursementLegs(loan.Principal, fees, insurance))

	c.JSON(http.StatusOK, gin.H{
		"message":      "Crédit déboursé",
		"net":          net,
		"fees":         fees,
		"insurance":    insurance,
		"installments": len(installments),
		"reference":    entryReference(entry),
	})
}

// RepaymentRequest porte un remboursement encaissé au guichet.
type RepaymentRequest struct {
	Principal float64 `json:"principal" binding:"min=0"`
	Interest  float64 `json:"interest" binding:"min=0"`
	Penalty   float64 `json:"penalty" binding:"min=0"`
	Date      string  `json:"date"`
	CaisseID  *uint   `json:"caisseId"`
	Comment   string  `json:"comment"`
}

// CreateRepaymentHandler encaisse un remboursement, l'impute aux échéances
// dans l'ordre chronologique puis met à jour le statut du crédit.
func CreateRepaymentHandler(c *gin.Context) {
	var req RepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}
	if req.Principal+req.Interest+req.Penalty <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le montant du remboursement doit être positif"})
		return
	}

	paymentDate := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide. Utilisez YYYY-MM-DD."})
			return
		}
		paymentDate = parsed
	}

	var loan models.Loan
	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'ouvrir la transaction"})
		return
	}

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&loan, c.Param("id")).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Crédit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche du crédit"})
		return
	}

	if loan.Status != models.LoanActive && loan.Status != models.LoanDelinquent {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le crédit n'est pas en cours de remboursement"})
		return
	}

	if err := creditCaisse(tx, req.CaisseID, req.Principal+req.Interest+req.Penalty); err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repayment := models.Repayment{
		LoanID:    loan.ID,
		Date:      paymentDate,
		Principal: req.Principal,
		Interest:  req.Interest,
		Penalty:   req.Penalty,
		CaisseID:  req.CaisseID,
		UserID:    currentUserID(c),
		Reference: uuid.New().String(),
		Comment:   req.Comment,
	}
	if err := tx.Create(&repayment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'enregistrer le remboursement"})
		return
	}

	if err := applyToInstallments(tx, loan.ID, req.Principal, req.Interest, paymentDate); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'imputer le remboursement"})
		return
	}

	settled, err := refreshLoanStatus(tx, &loan)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour le statut du crédit"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de valider la transaction"})
		return
	}

	entry := postEntry(c, "remboursement",
		fmt.Sprintf("Remboursement crédit %s", loan.Number),
		&loan.BranchID, accounting.RepaymentLegs(req.Principal, req.Interest, req.Penalty))

	c.JSON(http.StatusOK, gin.H{
		"message":   "Remboursement enregistré",
		"settled":   settled,
		"reference": entryReference(entry),
	})
}

// applyToInstallments impute capital et intérêts aux échéances dans l'ordre,
// en décrémentant les restes dus et en soldant les lignes couvertes.
func applyToInstallments(tx *gorm.DB, loanID uint, principal, interest float64, paymentDate time.Time) error {
	var installments []models.Installment
	if err := tx.Where("loan_id = ? AND status = ?", loanID, models.InstallmentPending).
		Order("number asc").Find(&installments).Error; err != nil {
		return err
	}

	for i := range installments {
		line := &installments[i]
		if principal <= 0 && interest <= 0 {
			break
		}

		appliedPrincipal := minf(principal, line.PrincipalRemaining)
		appliedInterest := minf(interest, line.InterestRemaining)
		principal -= appliedPrincipal
		interest -= appliedInterest

		line.PrincipalRemaining -= appliedPrincipal
		line.InterestRemaining -= appliedInterest
		line.AmountPaid += appliedPrincipal + appliedInterest
		if line.PrincipalRemaining <= 0 && line.InterestRemaining <= 0 {
			line.Status = models.InstallmentPaid
			d := paymentDate
			line.PaidDate = &d
		}

		if err := tx.Save(line).Error; err != nil {
			return err
		}
	}
	return nil
}

// refreshLoanStatus recalcule le statut du crédit après imputation :
// soldé quand plus aucune échéance n'est en attente.
func refreshLoanStatus(tx *gorm.DB, loan *models.Loan) (bool, error) {
	var pending int64
	if err := tx.Model(&models.Installment{}).
		Where("loan_id = ? AND status = ?", loan.ID, models.InstallmentPending).
		Count(&pending).Error; err != nil {
		return false, err
	}

	if pending == 0 {
		now := time.Now()
		return true, tx.Model(loan).Updates(map[string]interface{}{
			"status":       models.LoanSettled,
			"settled_date": now,
		}).Error
	}
	if loan.Status == models.LoanDelinquent {
		// Le passage éventuel retard -> actif est réévalué par l'analyse de
		// situation ; ici on ne rétrograde jamais automatiquement.
		return false, nil
	}
	return false, nil
}

// ReverseRepaymentHandler extourne un remboursement : le flag est posé et
// l'écriture inverse est passée. L'analyse de situation exclut d'office les
// remboursements extournés.
func ReverseRepaymentHandler(c *gin.Context) {
	var repayment models.Repayment
	if err := config.DB.First(&repayment, c.Param("repaymentId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Remboursement introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}
	if repayment.Reversed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Remboursement déjà extourné"})
		return
	}

	var loan models.Loan
	if err := config.DB.First(&loan, repayment.LoanID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Crédit du remboursement introuvable"})
		return
	}

	if err := config.DB.Model(&repayment).Update("reversed", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'extourner le remboursement"})
		return
	}

	// Écriture inverse : on rétablit l'encours et on annule les produits.
	legs := []accounting.Leg{
		{Direction: models.Debit, AccountCode: models.ChartLoansOutstanding, Label: models.ChartAccountName[models.ChartLoansOutstanding], Amount: repayment.Principal},
	}
	if repayment.Interest > 0 {
		legs = append(legs, accounting.Leg{Direction: models.Debit, AccountCode: models.ChartInterestIncome, Label: models.ChartAccountName[models.ChartInterestIncome], Amount: repayment.Interest})
	}
	if repayment.Penalty > 0 {
		legs = append(legs, accounting.Leg{Direction: models.Debit, AccountCode: models.ChartFeeIncome, Label: models.ChartAccountName[models.ChartFeeIncome], Amount: repayment.Penalty})
	}
	legs = append(legs, accounting.Leg{Direction: models.Credit, AccountCode: models.ChartTill, Label: models.ChartAccountName[models.ChartTill], Amount: repayment.Total()})

	entry := postEntry(c, "extourne",
		fmt.Sprintf("Extourne remboursement %s", repayment.Reference),
		&loan.BranchID, legs)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Remboursement extourné",
		"reference": entryReference(entry),
	})
}

// ListRepaymentsHandler retourne les remboursements d'un crédit.
func ListRepaymentsHandler(c *gin.Context) {
	var repayments []models.Repayment
	if err := config.DB.Where("loan_id = ?", c.Param("id")).
		Order("date asc").Find(&repayments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les remboursements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": repayments})
}

// loanNumber fabrique un numéro de dossier lisible et unique.
func loanNumber() string {
	return fmt.Sprintf("CR-%s", strings.ToUpper(uuid.New().String()[:8]))
}

// checkProductBounds vérifie qu'une demande respecte les bornes du produit.
func checkProductBounds(product *models.LoanProduct, loan *models.Loan) error {
	if !product.Active {
		return errors.New("le produit de crédit n'est plus commercialisé")
	}
	if product.MinAmount > 0 && loan.Principal < product.MinAmount {
		return fmt.Errorf("montant inférieur au minimum du produit (%.0f)", product.MinAmount)
	}
	if product.MaxAmount > 0 && loan.Principal > product.MaxAmount {
		return fmt.Errorf("montant supérieur au maximum du produit (%.0f)", product.MaxAmount)
	}
	if loan.TermMonths < product.MinTermMonths {
		return fmt.Errorf("durée inférieure au minimum du produit (%d mois)", product.MinTermMonths)
	}
	if product.MaxTermMonths > 0 && loan.TermMonths > product.MaxTermMonths {
		return fmt.Errorf("durée supérieure au maximum du produit (%d mois)", product.MaxTermMonths)
	}
	if product.MinRate > 0 && loan.AnnualRate < product.MinRate {
		return fmt.Errorf("taux inférieur au minimum du produit (%.2f %%)", product.MinRate)
	}
	if product.MaxRate > 0 && loan.AnnualRate > product.MaxRate {
		return fmt.Errorf("taux supérieur au maximum du produit (%.2f %%)", product.MaxRate)
	}
	return nil
}

// evaluateFormula évalue une formule tarifaire du produit avec les variables
// Montant et Duree. Une formule vide vaut zéro.
func evaluateFormula(formula string, amount float64, termMonths int) (float64, error) {
	if formula == "" {
		return 0, nil
	}

	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return 0, err
	}

	parameters := make(map[string]interface{})
	parameters["Montant"] = amount
	parameters["Duree"] = float64(termMonths)

	result, err := expr.Evaluate(parameters)
	if err != nil {
		return 0, err
	}

	value, ok := result.(float64)
	if !ok {
		return 0, errors.New("le résultat de la formule n'est pas un nombre")
	}
	return value, nil
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
