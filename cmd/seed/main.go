package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/verdantia/storefront-backend/config"
	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Expected sheet columns, in order
const (
	colName = iota
	colDescription
	colPrice
	colWeight
	colPresentation
	colCategory
	colStock
	colImage
	minColumns = colStock + 1
)

var categories = map[string]model.ProductCategory{
	"hierbas":     model.CategoryHerbs,
	"herbs":       model.CategoryHerbs,
	"tes":         model.CategoryTeas,
	"tés":         model.CategoryTeas,
	"teas":        model.CategoryTeas,
	"suplementos": model.CategorySupplements,
	"supplements": model.CategorySupplements,
	"aceites":     model.CategoryOils,
	"oils":        model.CategoryOils,
	"despensa":    model.CategoryPantry,
	"pantry":      model.CategoryPantry,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Without a workbook, seed the starter catalog and coupons
	if len(os.Args) < 2 {
		if err := db.Seed(); err != nil {
			log.Fatal("Failed to seed database:", err)
		}
		fmt.Println("Starter catalog seeded.")
		fmt.Println("Usage to import a catalog: go run cmd/seed/main.go <xlsx_file_path>")
		return
	}

	filePath := os.Args[1]
	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import: %d (skipped rows: %d)\n", len(products), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		product, ok := parseProductRow(row)
		if !ok {
			skipped++
			continue
		}

		key := strings.ToLower(product.Name + "|" + product.Presentation)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true
		products = append(products, product)
	}

	return products, skipped, nil
}

func parseProductRow(row []string) (model.Product, bool) {
	if len(row) < minColumns {
		return model.Product{}, false
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	name := cell(colName)
	price, err := strconv.ParseFloat(strings.ReplaceAll(cell(colPrice), ",", ""), 64)
	if name == "" || err != nil || price < 0 {
		return model.Product{}, false
	}

	category, ok := categories[strings.ToLower(cell(colCategory))]
	if !ok {
		return model.Product{}, false
	}

	stock, err := strconv.Atoi(cell(colStock))
	if err != nil || stock < 0 {
		stock = 0
	}
	weight, err := strconv.ParseFloat(cell(colWeight), 64)
	if err != nil || weight < 0 {
		weight = 0
	}

	return model.Product{
		Name:          name,
		Description:   cell(colDescription),
		Price:         price,
		Weight:        weight,
		Presentation:  cell(colPresentation),
		Category:      category,
		StockQuantity: stock,
		ImageURL:      cell(colImage),
	}, true
}
