package report

import (
	"bytes"
	"fmt"

	"factoring-backend/internal/app/ds"

	"github.com/xuri/excelize/v2"
)

// RegistryExcel формирует выгрузку реестра в формате xlsx: шапка с
// реквизитами, таблица поставок и итоговая сумма.
func RegistryExcel(registry *ds.Registry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Реестр"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// Шапка реестра
	header := [][]interface{}{
		{"Реестр №", registry.Number},
		{"Дата", registry.Date.Format("02.01.2006")},
		{"Продавец", registry.Contract.Seller.ShortName},
		{"Покупатель", registry.Contract.Buyer.ShortName},
		{"Схема финансирования", string(registry.FinanceType)},
		{"Статус", string(registry.Status)},
		{"Статус подписания", string(registry.SignStatus)},
	}
	if registry.Bank != nil {
		header = append(header, []interface{}{"Банк", registry.Bank.ShortName})
	}
	for i, row := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	// Таблица поставок
	tableStart := len(header) + 2
	columns := []interface{}{"№", "Номер поставки", "Дата", "Тип", "Сумма"}
	cell, _ := excelize.CoordinatesToCellName(1, tableStart)
	if err := f.SetSheetRow(sheet, cell, &columns); err != nil {
		return nil, fmt.Errorf("failed to write table header: %w", err)
	}

	for i, supply := range registry.Supplies {
		row := []interface{}{
			i + 1,
			supply.Number,
			supply.Date.Format("02.01.2006"),
			string(supply.Type),
			supply.Amount,
		}
		cell, _ = excelize.CoordinatesToCellName(1, tableStart+1+i)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write supply row: %w", err)
		}
	}

	// Итоговая строка
	totalRow := []interface{}{"", "", "", "Итого", registry.Amount}
	cell, _ = excelize.CoordinatesToCellName(1, tableStart+1+len(registry.Supplies))
	if err := f.SetSheetRow(sheet, cell, &totalRow); err != nil {
		return nil, fmt.Errorf("failed to write total row: %w", err)
	}

	// Ширина колонок под содержимое
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "E", 18); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
