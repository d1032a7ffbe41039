// internal/app/system/csvutil/contracts.go
package csvutil

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vendaops/contratohub/internal/domain/models"
)

// MaxExportRows caps one CSV export. The export endpoint pages through
// the store with this limit so a huge scope cannot buffer unbounded rows.
const MaxExportRows = 50000

var contractHeader = []string{
	"Contrato", "Cliente", "CPF", "Status", "Data", "Valor",
	"Promotora", "Tabela", "Tipo Empresa", "Cidade", "Estado", "Região",
}

// WriteContracts renders contracts as CSV with a UTF-8 BOM so spreadsheet
// applications pick up the accented strings correctly.
func WriteContracts(w io.Writer, contracts []models.Contract) error {
	if _, err := w.Write([]byte("\xef\xbb\xbf")); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(contractHeader); err != nil {
		return err
	}

	for _, c := range contracts {
		id := c.ExternalID
		if id == "" {
			id = c.ID.Hex()
		}
		row := []string{
			id,
			c.ClientName,
			c.ClientCPF,
			c.Status,
			c.Date.Format("2006-01-02"),
			strconv.FormatFloat(c.Value, 'f', 2, 64),
			c.Promotora,
			c.Tabela,
			c.TipoEmpresa,
			c.City,
			c.State,
			c.Region,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
