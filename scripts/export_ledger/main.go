package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/albamarket/alba/internal/models"
)

// Exports the ALBA ledger to an xlsx workbook for offline admin review.
// One sheet of transactions, newest first.
func main() {
	userID := flag.Uint("user", 0, "limit the export to one user id (0 = all users)")
	out := flag.String("out", "ledger_export.xlsx", "output file path")
	limit := flag.Int("limit", 10000, "maximum number of rows")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}

	query := db.Model(&models.AlbaTransaction{}).Order("created_at DESC, id DESC").Limit(*limit)
	if *userID != 0 {
		query = query.Where("user_id = ?", *userID)
	}

	var transactions []models.AlbaTransaction
	if err := query.Find(&transactions).Error; err != nil {
		log.Fatal("failed to load transactions:", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Ledger"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "UserID", "Amount", "Type", "Reason", "RelatedUserID", "EventID", "CreatedAt"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, tx := range transactions {
		values := []interface{}{
			tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Reason, nil, tx.EventID,
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if tx.RelatedUserID != nil {
			values[5] = *tx.RelatedUserID
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SaveAs(*out); err != nil {
		log.Fatal("failed to save workbook:", err)
	}
	fmt.Printf("exported %d transactions to %s\n", len(transactions), *out)
}
