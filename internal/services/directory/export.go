package directory

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/indago/pkg/models"
)

const exportSheet = "Companies"

// ExportXLSX writes the scraped companies to a spreadsheet with a header row
// and one row per company.
func ExportXLSX(companies []models.DirectoryCompany, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name export sheet: %w", err)
	}

	headers := []string{"name", "website", "location", "categories", "source_page"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for rowIdx, company := range companies {
		values := []string{
			company.Name,
			company.Website,
			company.Location,
			strings.Join(company.Categories, ", "),
			company.SourcePage,
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to address row cell: %w", err)
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet %s: %w", path, err)
	}
	return nil
}

type seedsExport struct {
	Companies []seedEntry `yaml:"companies"`
}

type seedEntry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ExportSeeds writes the scraped companies in the seeds YAML format, so a
// directory crawl can feed a discovery run directly. Rows without a website
// are dropped.
func ExportSeeds(companies []models.DirectoryCompany, path string) error {
	export := seedsExport{}
	for _, company := range companies {
		if company.Website == "" {
			continue
		}
		name := company.Name
		if name == "" {
			name = company.Website
		}
		export.Companies = append(export.Companies, seedEntry{Name: name, URL: company.Website})
	}

	data, err := yaml.Marshal(&export)
	if err != nil {
		return fmt.Errorf("failed to marshal seeds export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write seeds file %s: %w", path, err)
	}
	return nil
}
