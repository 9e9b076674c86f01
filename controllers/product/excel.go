package productcontroller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// GET /admin/products/export-excel
func ExportProductsToExcel(repo ProductProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repo.All()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		// Header row
		headers := []string{
			"SKU", "Name", "Brand", "Description", "Price", "ComparePrice",
			"Stock", "LowStockThreshold", "TrackQuantity", "Status",
			"Featured", "Image", "CategoryID", "Tags",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		// Data rows
		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.SKU)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Brand)
			row.AddCell().SetValue(p.Description)
			row.AddCell().SetValue(p.Price.StringFixed(2))
			row.AddCell().SetValue(p.ComparePrice.StringFixed(2))
			row.AddCell().SetValue(p.Inventory.Quantity)
			row.AddCell().SetValue(p.Inventory.LowStockThreshold)
			row.AddCell().SetValue(strconv.FormatBool(p.Inventory.TrackQuantity))
			row.AddCell().SetValue(string(p.Status))
			row.AddCell().SetValue(strconv.FormatBool(p.Featured))
			row.AddCell().SetValue(p.Image)
			if p.CategoryID != nil {
				row.AddCell().SetValue(int(*p.CategoryID))
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(strings.Join(p.Tags, ","))
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}

// POST /admin/products/import-excel
// Rows are upserted by SKU: existing products are updated, unknown SKUs
// create new products.
func ImportProductsFromExcel(repo ProductProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			sku := get(0)
			name := get(1)
			brand := get(2)
			description := get(3)
			price, err1 := decimal.NewFromString(get(4))
			comparePrice, _ := decimal.NewFromString(get(5))
			stock, _ := strconv.Atoi(get(6))
			lowStock, _ := strconv.Atoi(get(7))
			trackQuantity := get(8) == "true"
			status := get(9)
			featured := get(10) == "true"
			image := get(11)

			if sku == "" || name == "" || err1 != nil {
				skippedCount++
				continue
			}

			var categoryID *uint
			if catStr := get(12); catStr != "" {
				if id, err := strconv.Atoi(catStr); err == nil {
					cid := uint(id)
					categoryID = &cid
				}
			}
			var tags []string
			if tagStr := get(13); tagStr != "" {
				tags = strings.Split(tagStr, ",")
			}

			apply := func(p *models.Product) {
				p.SKU = sku
				p.Name = name
				p.Brand = brand
				p.Description = description
				p.Price = price
				p.ComparePrice = comparePrice
				p.Inventory.Quantity = stock
				p.Inventory.LowStockThreshold = lowStock
				p.Inventory.TrackQuantity = trackQuantity
				if s, ok := parseStatus(status); ok {
					p.Status = s
				}
				p.Featured = featured
				p.Image = image
				p.CategoryID = categoryID
				p.Tags = tags
			}

			existing, err := repo.FindBySKU(sku)
			if err == nil {
				apply(existing)
				if err := repo.Update(existing); err != nil {
					skippedCount++
					continue
				}
				updatedCount++
				continue
			}
			if !errors.Is(err, models.ErrProductNotFound) {
				skippedCount++
				continue
			}

			var product models.Product
			product.Status = models.ProductStatusDraft
			apply(&product)
			if err := repo.Create(&product); err != nil {
				skippedCount++
				continue
			}
			createdCount++
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}

func parseStatus(s string) (models.ProductStatus, bool) {
	switch models.ProductStatus(s) {
	case models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusDraft:
		return models.ProductStatus(s), true
	}
	return "", false
}
