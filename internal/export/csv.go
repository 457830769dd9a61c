package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dgallion1/oimdp/internal/openiti"
)

var entityHeader = []string{"item", "kind", "prefix", "extent", "text", "volume", "page"}

// CSVExporter writes the named-entity index, one row per mention.
type CSVExporter struct{}

func (e *CSVExporter) Export(w io.Writer, doc *openiti.Document, title string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(entityHeader); err != nil {
		return err
	}
	for _, m := range doc.Entities() {
		row := []string{
			strconv.Itoa(m.Item),
			m.Kind.String(),
			strconv.Itoa(m.Prefix),
			strconv.Itoa(m.Extent),
			m.Text,
			m.Volume,
			m.Page,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
