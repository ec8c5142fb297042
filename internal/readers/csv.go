package readers

import (
	"encoding/csv"
	"io"

	"github.com/dataload-go/dataload/pkg/dataload"
)

// CSV returns a reader producing [][]string records. The comma rune selects
// the field delimiter, so CSV(',') and CSV('\t') cover .csv and .tsv files.
func CSV(comma rune) dataload.Reader {
	return func(r io.Reader) (any, error) {
		cr := csv.NewReader(r)
		cr.Comma = comma
		cr.FieldsPerRecord = -1
		records, err := cr.ReadAll()
		if err != nil {
			return nil, err
		}
		return records, nil
	}
}
